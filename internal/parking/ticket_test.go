package parking

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wednesday = time.Date(2024, time.January, 3, 10, 0, 0, 0, time.UTC)

func TestTicketClose(t *testing.T) {
	ticket := NewTicket("DHA-5678", wednesday)
	assert.False(t, ticket.Closed())
	assert.Len(t, ticket.ID, 8)

	require.NoError(t, ticket.Close(wednesday.Add(time.Hour)))
	assert.True(t, ticket.Closed())
	assert.Equal(t, wednesday.Add(time.Hour), *ticket.ExitTime)

	err := ticket.Close(wednesday.Add(2 * time.Hour))
	assert.True(t, errors.Is(err, ErrTicketClosed))
	assert.Equal(t, wednesday.Add(time.Hour), *ticket.ExitTime, "exit time changed by second close")
}

func TestTicketCloseBeforeEntry(t *testing.T) {
	ticket := NewTicket("DHA-5678", wednesday)

	err := ticket.Close(wednesday.Add(-time.Second))
	assert.True(t, errors.Is(err, ErrInvalidTime))
	assert.False(t, ticket.Closed())
}

func TestTicketCloseAtEntry(t *testing.T) {
	ticket := NewTicket("DHA-5678", wednesday)

	require.NoError(t, ticket.Close(wednesday))

	hours, err := ticket.CeilingHours()
	require.NoError(t, err)
	assert.Equal(t, 1, hours)
}

func TestTicketCeilingHoursOpen(t *testing.T) {
	ticket := NewTicket("DHA-5678", wednesday)

	_, err := ticket.CeilingHours()
	assert.True(t, errors.Is(err, ErrTicketOpen))

	_, err = ticket.Duration()
	assert.True(t, errors.Is(err, ErrTicketOpen))
}

func TestCeilingHours(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     int
	}{
		{"zero", 0, 1},
		{"one second", time.Second, 1},
		{"fifty nine minutes", 59 * time.Minute, 1},
		{"exactly one hour", time.Hour, 1},
		{"one hour one second", time.Hour + time.Second, 2},
		{"two hours ten minutes", 2*time.Hour + 10*time.Minute, 3},
		{"one day", 24 * time.Hour, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CeilingHours(wednesday, wednesday.Add(tt.duration)))
		})
	}
}

func TestCeilingHoursMonotonic(t *testing.T) {
	prev := CeilingHours(wednesday, wednesday)
	for d := time.Duration(0); d <= 6*time.Hour; d += 7 * time.Minute {
		got := CeilingHours(wednesday, wednesday.Add(d))
		assert.GreaterOrEqual(t, got, prev, "duration %s", d)
		assert.GreaterOrEqual(t, got, 1)
		prev = got
	}
}

func TestTicketClone(t *testing.T) {
	ticket := NewTicket("DHA-5678", wednesday)
	open := ticket.Clone()
	require.NoError(t, ticket.Close(wednesday.Add(time.Hour)))

	assert.False(t, open.Closed())
	assert.Equal(t, ticket.ID, open.ID)

	closed := ticket.Clone()
	require.True(t, closed.Closed())
	assert.NotSame(t, ticket.ExitTime, closed.ExitTime)
	assert.Equal(t, *ticket.ExitTime, *closed.ExitTime)
}
