package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harborview/hotel-backend/internal/domain"
)

func TestStatusTransitionTable(t *testing.T) {
	all := []Status{
		StatusUpcoming, StatusCheckedIn, StatusCheckedOut,
		StatusCancelled, StatusNoShow, StatusOverstay,
	}

	allowed := map[Status]map[Status]bool{
		StatusUpcoming:   {StatusCheckedIn: true, StatusCancelled: true, StatusNoShow: true},
		StatusCheckedIn:  {StatusCheckedOut: true, StatusOverstay: true},
		StatusCheckedOut: {},
		StatusCancelled:  {},
		StatusNoShow:     {StatusCheckedIn: true, StatusCancelled: true},
		StatusOverstay:   {StatusCheckedOut: true},
	}

	for _, from := range all {
		for _, to := range all {
			want := from == to || allowed[from][to]
			assert.Equalf(t, want, from.CanTransitionTo(to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestStatusClassification(t *testing.T) {
	assert.True(t, StatusCheckedOut.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusUpcoming.IsTerminal())
	assert.False(t, StatusNoShow.IsTerminal())
	assert.False(t, StatusOverstay.IsTerminal())

	assert.True(t, StatusCheckedIn.IsActive())
	assert.True(t, StatusOverstay.IsActive())
	assert.False(t, StatusUpcoming.IsActive())
	assert.False(t, StatusNoShow.IsActive())

	assert.True(t, StatusUpcoming.BlocksAvailability())
	assert.True(t, StatusCheckedIn.BlocksAvailability())
	assert.True(t, StatusOverstay.BlocksAvailability())
	assert.False(t, StatusCheckedOut.BlocksAvailability())
	assert.False(t, StatusCancelled.BlocksAvailability())
	assert.False(t, StatusNoShow.BlocksAvailability())

	assert.ElementsMatch(t,
		[]Status{StatusUpcoming, StatusCheckedIn, StatusOverstay},
		BlockingStatuses())
}

func TestStatusUnknownIsRejected(t *testing.T) {
	bogus := Status("teleported")
	assert.False(t, bogus.IsValid())
	assert.False(t, bogus.CanTransitionTo(StatusCheckedIn))
	assert.False(t, bogus.CanTransitionTo(bogus))
	assert.True(t, bogus.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("checked_in")
	assert.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, status)

	_, err = ParseStatus("CheckedIn")
	assert.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = ParseStatus("")
	assert.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}
