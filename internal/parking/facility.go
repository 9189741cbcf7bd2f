package parking

// Facility wires one registry to its gates, pricing and pass book.
type Facility struct {
	Registry *Registry
	Pricing  *PricingEngine
	Passes   *PassBook
	Entry    *EntryGate
	Exit     *ExitGate
}

func NewFacility(capacity int, pricing *PricingEngine, clock Clock) *Facility {
	registry := NewRegistry(capacity, clock)
	return &Facility{
		Registry: registry,
		Pricing:  pricing,
		Passes:   NewPassBook(),
		Entry:    NewEntryGate(registry, clock),
		Exit:     NewExitGate(registry, pricing, clock),
	}
}
