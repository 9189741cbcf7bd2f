package parking

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSite(h *telemetryHarness) *Site {
	clock := NewManualClock(at(3, 10, 0, 0))
	return NewSite(func(capacity int) (*InstrumentedFacility, error) {
		return NewInstrumentedFacility(NewFacility(capacity, defaultPricing(), clock.Now), h.provider)
	})
}

func TestSiteReplaceRetiresPreviousLot(t *testing.T) {
	h := newTelemetryHarness()
	site := newTestSite(h)
	ctx := context.Background()
	assert.Nil(t, site.Current())

	first, err := site.Replace(ctx, 3)
	require.NoError(t, err)
	_, err = first.Enter(ctx, NewVehicle("A-1", KindCar), "")
	require.NoError(t, err)
	_, err = first.Enter(ctx, NewVehicle("A-2", KindBike), "")
	require.NoError(t, err)

	second, err := site.Replace(ctx, 5)
	require.NoError(t, err)
	assert.Same(t, second, site.Current())

	assert.Equal(t, 5.0, h.sum(t, "parking_lot_total_slots"))
	assert.Equal(t, 0.0, h.sum(t, "parking_lot_occupancy"))

	_, err = second.Enter(ctx, NewVehicle("B-1", KindCar), "")
	require.NoError(t, err)
	assert.Equal(t, 1.0, h.sum(t, "parking_lot_occupancy"))
	assert.Contains(t, h.spanNames(), "registry.retire")
}

func TestSiteOnReplace(t *testing.T) {
	site := newTestSite(newTelemetryHarness())
	ctx := context.Background()

	first, err := site.Replace(ctx, 2)
	require.NoError(t, err)

	var seen []*InstrumentedFacility
	site.OnReplace(func(f *InstrumentedFacility) { seen = append(seen, f) })
	require.Len(t, seen, 1)
	assert.Same(t, first, seen[0])

	second, err := site.Replace(ctx, 4)
	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Same(t, second, seen[1])
}

func TestSiteReplaceKeepsCurrentOnBuildError(t *testing.T) {
	h := newTelemetryHarness()
	fail := errors.New("no pricing")
	ok := true
	site := NewSite(func(capacity int) (*InstrumentedFacility, error) {
		if !ok {
			return nil, fail
		}
		return NewInstrumentedFacility(NewFacility(capacity, defaultPricing(), nil), h.provider)
	})

	current, err := site.Replace(context.Background(), 2)
	require.NoError(t, err)

	ok = false
	_, err = site.Replace(context.Background(), 9)
	assert.True(t, errors.Is(err, fail))
	assert.Same(t, current, site.Current())
	assert.Equal(t, 2.0, h.sum(t, "parking_lot_total_slots"))
}
