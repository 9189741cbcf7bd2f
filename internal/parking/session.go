package parking

import "time"

// Session is a vehicle's current occupancy of the lot. Gates set exactly
// one of Ticket or Pass.
type Session struct {
	Vehicle   Vehicle
	StartedAt time.Time
	Ticket    *Ticket
	Pass      *Pass
}

func NewTicketSession(vehicle Vehicle, ticket *Ticket) *Session {
	return &Session{
		Vehicle:   vehicle,
		StartedAt: ticket.EntryTime,
		Ticket:    ticket,
	}
}

func NewPassSession(vehicle Vehicle, startedAt time.Time, pass *Pass) *Session {
	return &Session{
		Vehicle:   vehicle,
		StartedAt: startedAt,
		Pass:      pass,
	}
}

// Clone copies the session and its ticket. The pass stays shared.
func (s *Session) Clone() *Session {
	c := *s
	if s.Ticket != nil {
		c.Ticket = s.Ticket.Clone()
	}
	return &c
}

func (s *Session) Plate() string {
	return s.Vehicle.Plate
}

func (s *Session) PassBased() bool {
	return s.Pass != nil
}
