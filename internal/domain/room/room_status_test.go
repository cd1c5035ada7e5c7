package room

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harborview/hotel-backend/internal/domain"
)

func TestStatusTransitionTable(t *testing.T) {
	all := []Status{
		StatusAvailable, StatusOccupied, StatusMaintenance,
		StatusDirty, StatusCleaning,
	}

	allowed := map[Status]map[Status]bool{
		StatusAvailable:   {StatusOccupied: true, StatusMaintenance: true, StatusDirty: true},
		StatusOccupied:    {StatusAvailable: true, StatusDirty: true},
		StatusMaintenance: {StatusAvailable: true},
		StatusDirty:       {StatusCleaning: true, StatusAvailable: true},
		StatusCleaning:    {StatusAvailable: true, StatusDirty: true},
	}

	for _, from := range all {
		for _, to := range all {
			want := from == to || allowed[from][to]
			assert.Equalf(t, want, from.CanTransitionTo(to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestStatusRolePermissions(t *testing.T) {
	all := []Status{
		StatusAvailable, StatusOccupied, StatusMaintenance,
		StatusDirty, StatusCleaning,
	}

	// Cleaners work the dirty/cleaning/available loop only.
	assert.False(t, StatusOccupied.IsAllowedForRole(domain.RoleCleaner))
	assert.False(t, StatusMaintenance.IsAllowedForRole(domain.RoleCleaner))
	assert.True(t, StatusAvailable.IsAllowedForRole(domain.RoleCleaner))
	assert.True(t, StatusDirty.IsAllowedForRole(domain.RoleCleaner))
	assert.True(t, StatusCleaning.IsAllowedForRole(domain.RoleCleaner))

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleReceptionist, domain.RoleGuest} {
		for _, s := range all {
			assert.Truef(t, s.IsAllowedForRole(role), "%s should be allowed for %s", s, role)
		}
	}
}

func TestStatusUnknownIsRejected(t *testing.T) {
	bogus := Status("flooded")
	assert.False(t, bogus.IsValid())
	assert.False(t, bogus.CanTransitionTo(StatusAvailable))
	assert.False(t, bogus.CanTransitionTo(bogus))
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("cleaning")
	assert.NoError(t, err)
	assert.Equal(t, StatusCleaning, status)

	_, err = ParseStatus("sparkling")
	assert.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}
