package domain

// Role identifies the kind of account making a request.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleReceptionist Role = "receptionist"
	RoleGuest        Role = "guest"
	RoleCleaner      Role = "cleaner"
)

// IsValid returns true if the role is recognized.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleReceptionist, RoleGuest, RoleCleaner:
		return true
	}
	return false
}

// IsStaff returns true for roles that operate the front desk.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleReceptionist
}
