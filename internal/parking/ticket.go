package parking

import (
	"math"
	"time"

	"github.com/cockroachdb/errors"
)

// Ticket is the admission receipt for a vehicle entering without a pass.
type Ticket struct {
	ID        string
	Plate     string
	EntryTime time.Time
	ExitTime  *time.Time
}

func NewTicket(plate string, entryTime time.Time) *Ticket {
	return &Ticket{
		ID:        NewID(),
		Plate:     plate,
		EntryTime: entryTime,
	}
}

// Clone returns a copy that shares no state with t.
func (t *Ticket) Clone() *Ticket {
	c := *t
	if t.ExitTime != nil {
		exit := *t.ExitTime
		c.ExitTime = &exit
	}
	return &c
}

func (t *Ticket) Closed() bool {
	return t.ExitTime != nil
}

// Close stamps the exit time. A ticket closes exactly once.
func (t *Ticket) Close(exitTime time.Time) error {
	if t.Closed() {
		return errors.Wrapf(ErrTicketClosed, "ticket %s", t.ID)
	}
	if exitTime.Before(t.EntryTime) {
		return errors.Wrapf(ErrInvalidTime, "ticket %s: exit %s before entry %s",
			t.ID, exitTime.Format(time.RFC3339), t.EntryTime.Format(time.RFC3339))
	}
	t.ExitTime = &exitTime
	return nil
}

// Duration is the time between entry and exit of a closed ticket.
func (t *Ticket) Duration() (time.Duration, error) {
	if !t.Closed() {
		return 0, errors.Wrapf(ErrTicketOpen, "ticket %s", t.ID)
	}
	return t.ExitTime.Sub(t.EntryTime), nil
}

func (t *Ticket) CeilingHours() (int, error) {
	if !t.Closed() {
		return 0, errors.Wrapf(ErrTicketOpen, "ticket %s", t.ID)
	}
	return CeilingHours(t.EntryTime, *t.ExitTime), nil
}

// CeilingHours rounds the elapsed time up to whole hours. Any stay bills at
// least one hour.
func CeilingHours(entry, exit time.Time) int {
	hours := int(math.Ceil(exit.Sub(entry).Seconds() / 3600))
	if hours < 1 {
		return 1
	}
	return hours
}
