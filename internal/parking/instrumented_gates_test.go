package parking

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type telemetryHarness struct {
	provider *TelemetryProvider
	spans    *tracetest.SpanRecorder
	reader   *sdkmetric.ManualReader
}

func newTelemetryHarness() *telemetryHarness {
	spans := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()
	provider := NewTelemetryProviderFromSDK("parking-test",
		sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)),
		sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	)
	return &telemetryHarness{provider: provider, spans: spans, reader: reader}
}

func (h *telemetryHarness) sum(t *testing.T, name string) float64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, h.reader.Collect(context.Background(), &rm))

	var total float64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					total += float64(dp.Value)
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func (h *telemetryHarness) spanNames() []string {
	var names []string
	for _, s := range h.spans.Ended() {
		names = append(names, s.Name())
	}
	return names
}

func newInstrumented(t *testing.T, capacity int) (*InstrumentedFacility, *ManualClock, *telemetryHarness) {
	t.Helper()
	h := newTelemetryHarness()
	facility, clock := newTestFacility(capacity, at(3, 10, 0, 0))
	f, err := NewInstrumentedFacility(facility, h.provider)
	require.NoError(t, err)
	return f, clock, h
}

func TestInstrumentedFacilityIntegration(t *testing.T) {
	f, clock, h := newInstrumented(t, 3)
	ctx := context.Background()

	ticket, err := f.Enter(ctx, NewVehicle("DHA-5678", KindCar), "")
	require.NoError(t, err)
	require.NotNil(t, ticket)

	require.NoError(t, f.IssuePass(ctx, NewRecurringPass("MP-001", "SYL-1111", clock.Now().Add(time.Hour))))
	ticket, err = f.Enter(ctx, NewVehicle("SYL-1111", KindBike), "MP-001")
	require.NoError(t, err)
	assert.Nil(t, ticket)

	status := f.Status(ctx)
	assert.Equal(t, 2, status.Occupied)
	assert.Equal(t, 1, status.Available)

	session, err := f.FindSession(ctx, "SYL-1111")
	require.NoError(t, err)
	assert.True(t, session.PassBased())

	clock.Advance(2*time.Hour + 10*time.Minute)

	payment, err := f.Exit(ctx, "DHA-5678", "card")
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.InDelta(t, 150.0, payment.Amount, 1e-9)

	assert.Equal(t, 2.0, h.sum(t, "parking_entries_total"))
	assert.Equal(t, 1.0, h.sum(t, "parking_exits_total"))
	assert.Equal(t, 1.0, h.sum(t, "parking_lot_occupancy"))
	assert.Equal(t, 3.0, h.sum(t, "parking_lot_total_slots"))
	assert.InDelta(t, 150.0, h.sum(t, "parking_revenue_total"), 1e-9)

	assert.Subset(t, h.spanNames(), []string{
		"entry_gate.enter", "pass_book.issue", "registry.status",
		"registry.find_session", "exit_gate.exit",
	})
}

func TestInstrumentedFacilityRecordsFailures(t *testing.T) {
	f, _, h := newInstrumented(t, 1)
	ctx := context.Background()

	_, err := f.Enter(ctx, NewVehicle("A-1", KindCar), "missing-pass")
	assert.True(t, errors.Is(err, ErrPassNotFound))

	_, err = f.Exit(ctx, "GHOST", "cash")
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.Equal(t, 1.0, h.sum(t, "parking_entries_total"))
	assert.Equal(t, 0.0, h.sum(t, "parking_lot_occupancy"))

	var failed int
	for _, s := range h.spans.Ended() {
		if s.Status().Code == codes.Error {
			failed++
		}
	}
	assert.Equal(t, 2, failed)
	assert.Equal(t, 1, f.Registry.Available())
}
