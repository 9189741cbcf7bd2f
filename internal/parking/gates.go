package parking

import (
	"time"

	"github.com/cockroachdb/errors"
)

// EntryGate admits vehicles into a registry.
type EntryGate struct {
	registry *Registry
	clock    Clock
}

func NewEntryGate(registry *Registry, clock Clock) *EntryGate {
	if clock == nil {
		clock = time.Now
	}
	return &EntryGate{registry: registry, clock: clock}
}

// Enter admits vehicle. With a nil pass it opens and returns a ticket;
// pass holders get no ticket.
func (g *EntryGate) Enter(vehicle Vehicle, pass *Pass) (*Ticket, error) {
	var ticket *Ticket
	err := g.registry.Exclusive(func() error {
		var err error
		ticket, err = g.enter(vehicle, pass)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (g *EntryGate) enter(vehicle Vehicle, pass *Pass) (*Ticket, error) {
	now := g.clock()

	if !g.registry.HasSpace() {
		return nil, errors.Wrapf(ErrFull, "plate %s", vehicle.Plate)
	}
	if _, err := g.registry.Get(vehicle.Plate); err == nil {
		return nil, errors.Wrapf(ErrDuplicateOccupant, "plate %s", vehicle.Plate)
	}

	if pass == nil {
		ticket := NewTicket(vehicle.Plate, now)
		if err := g.registry.Add(NewTicketSession(vehicle, ticket)); err != nil {
			return nil, err
		}
		return ticket, nil
	}

	if pass.Plate != vehicle.Plate {
		return nil, errors.Wrapf(ErrPassMismatch, "pass %s is bound to %s, vehicle is %s",
			pass.ID, pass.Plate, vehicle.Plate)
	}

	switch pass.Kind {
	case PassRecurring:
		if !pass.Valid(now) {
			return nil, errors.Wrapf(ErrPassExpired, "recurring pass %s", pass.ID)
		}
	case PassSingleUse:
		if !pass.Usable(now) {
			return nil, errors.Wrapf(ErrPassExpired, "single-use pass %s", pass.ID)
		}
		// Consumed before insertion. Space and uniqueness were checked above
		// under the operation lock, so Add cannot fail afterwards.
		pass.MarkUsed()
	default:
		if !pass.Valid(now) {
			return nil, errors.Wrapf(ErrPassExpired, "pass %s", pass.ID)
		}
	}

	if err := g.registry.Add(NewPassSession(vehicle, now, pass)); err != nil {
		return nil, err
	}
	return nil, nil
}

// ExitGate releases vehicles and settles ticket fees.
type ExitGate struct {
	registry *Registry
	pricing  *PricingEngine
	clock    Clock
}

func NewExitGate(registry *Registry, pricing *PricingEngine, clock Clock) *ExitGate {
	if clock == nil {
		clock = time.Now
	}
	return &ExitGate{registry: registry, pricing: pricing, clock: clock}
}

// Exit releases plate. It returns a payment only when a ticket fee above
// zero was owed; pass holders never pay.
func (g *ExitGate) Exit(plate, method string) (*Payment, error) {
	var payment *Payment
	err := g.registry.Exclusive(func() error {
		var err error
		payment, err = g.exit(plate, method)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (g *ExitGate) exit(plate, method string) (*Payment, error) {
	now := g.clock()

	session, err := g.registry.Get(plate)
	if err != nil {
		return nil, err
	}

	if session.PassBased() {
		if session.Pass == nil || !session.Pass.Valid(now) {
			return nil, errors.Wrapf(ErrInvalidPass, "plate %s", plate)
		}
		if _, err := g.registry.Remove(plate); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if session.Ticket == nil {
		return nil, errors.Wrapf(ErrBrokenSession, "plate %s", plate)
	}

	if err := session.Ticket.Close(now); err != nil {
		return nil, err
	}

	amount, err := g.pricing.Fee(session.Vehicle, session.Ticket)
	if err != nil {
		session.Ticket.ExitTime = nil
		return nil, err
	}

	var payment *Payment
	if amount > 0 {
		p := NewPayment(amount, method, now)
		payment = &p
		g.registry.RecordPayment(now, plate, p)
	}

	if _, err := g.registry.Remove(plate); err != nil {
		return nil, err
	}
	return payment, nil
}
