package parking

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// ManualClock is a settable clock for scripted runs and tests.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// RunDemo plays the reference scenario: a ticketed car, a bike on a
// recurring pass and a truck on a single-use pass.
func RunDemo(ctx context.Context, out io.Writer, facility *InstrumentedFacility, clock *ManualClock) error {
	registry := facility.Registry

	fmt.Fprintln(out, "Urban City Parking system is running.")
	fmt.Fprintf(out, "Spaces available: %d / %d\n\n", registry.Available(), registry.Capacity())

	car := NewVehicle("DHA-5678", KindCar)
	ticket, err := facility.Enter(ctx, car, "")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Entry approved for %s. Ticket: %s\n", car.Plate, ticket.ID)

	clock.Advance(2*time.Hour + 10*time.Minute)

	payment, err := facility.Exit(ctx, car.Plate, "card")
	if err != nil {
		return err
	}
	if payment != nil {
		fmt.Fprintf(out, "Exit done for %s. Paid: %.2f (%s)\n\n", car.Plate, payment.Amount, payment.Method)
	}

	bike := NewVehicle("SYL-1111", KindBike)
	monthly := NewRecurringPass("MP-001", bike.Plate, clock.Now().Add(30*24*time.Hour))
	if err := facility.IssuePass(ctx, monthly); err != nil {
		return err
	}
	if _, err := facility.Enter(ctx, bike, monthly.ID); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s entered using recurring pass %s.\n", bike.Plate, monthly.ID)
	if _, err := facility.Exit(ctx, bike.Plate, DefaultPaymentMethod); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s exited. No payment needed.\n\n", bike.Plate)

	truck := NewVehicle("CTG-9090", KindTruck)
	single := NewSingleUsePass("SP-009", truck.Plate, clock.Now().Add(24*time.Hour))
	if err := facility.IssuePass(ctx, single); err != nil {
		return err
	}
	if _, err := facility.Enter(ctx, truck, single.ID); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s entered using single-use pass %s (now used=%t).\n", truck.Plate, single.ID, single.Used())
	if _, err := facility.Exit(ctx, truck.Plate, DefaultPaymentMethod); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s exited. Pass session completed.\n\n", truck.Plate)

	fmt.Fprintf(out, "Spaces available now: %d / %d\n", registry.Available(), registry.Capacity())
	fmt.Fprintln(out, "\nRecent activity:")
	for _, line := range tail(registry.Log(), 10) {
		fmt.Fprintln(out, "  ", line)
	}
	return nil
}
