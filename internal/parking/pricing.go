package parking

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Tariff is the multiplier policy chosen from the exit time.
type Tariff struct {
	name       string
	multiplier float64
}

var (
	TariffOffPeak = Tariff{name: "off_peak", multiplier: 1.0}
	TariffPeak    = Tariff{name: "peak", multiplier: 1.5}
	TariffWeekend = Tariff{name: "weekend", multiplier: 1.2}
)

func (t Tariff) Name() string        { return t.name }
func (t Tariff) Multiplier() float64 { return t.multiplier }

// Fee bills hours at rate, scaled by the tariff multiplier.
func (t Tariff) Fee(rate float64, hours int) float64 {
	return rate * float64(hours) * t.multiplier
}

// Rates maps a vehicle kind to its hourly base rate.
type Rates map[Kind]float64

func DefaultRates() Rates {
	return Rates{
		KindBike:  20.0,
		KindCar:   50.0,
		KindTruck: 80.0,
	}
}

// PeakWindow is a time-of-day range, both bounds inclusive, expressed as
// offsets from midnight.
type PeakWindow struct {
	Start time.Duration
	End   time.Duration
}

func DefaultPeakWindow() PeakWindow {
	return PeakWindow{Start: 17 * time.Hour, End: 21 * time.Hour}
}

func (w PeakWindow) Contains(t time.Time) bool {
	tod := timeOfDay(t)
	return tod >= w.Start && tod <= w.End
}

type PricingEngine struct {
	rates    Rates
	peak     PeakWindow
	location *time.Location
}

// NewPricingEngine builds an engine evaluating weekdays and peak hours in
// loc. A nil loc means UTC.
func NewPricingEngine(rates Rates, peak PeakWindow, loc *time.Location) *PricingEngine {
	if loc == nil {
		loc = time.UTC
	}
	return &PricingEngine{
		rates:    rates,
		peak:     peak,
		location: loc,
	}
}

func (pe *PricingEngine) Location() *time.Location {
	return pe.location
}

// PickTariff only looks at the exit time. entry is part of the signature
// but does not take part in the decision.
func (pe *PricingEngine) PickTariff(entry, exit time.Time) Tariff {
	local := exit.In(pe.location)

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return TariffWeekend
	}

	if pe.peak.Contains(local) {
		return TariffPeak
	}

	return TariffOffPeak
}

func (pe *PricingEngine) Fee(vehicle Vehicle, ticket *Ticket) (float64, error) {
	hours, err := ticket.CeilingHours()
	if err != nil {
		return 0, errors.Wrap(err, "close the ticket before calculating fee")
	}

	rate, ok := pe.rates[vehicle.Kind]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownKind, "no rate for kind %q", vehicle.Kind)
	}

	tariff := pe.PickTariff(ticket.EntryTime, *ticket.ExitTime)
	return tariff.Fee(rate, hours), nil
}

func timeOfDay(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
}
