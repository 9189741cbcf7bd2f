package parking

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"urban-parking/internal/logging"
)

// Snapshot is a point-in-time view of a facility.
type Snapshot struct {
	Capacity  int
	Occupied  int
	Available int
	Sessions  []*Session
}

// InstrumentedFacility traces, meters and logs every gate operation.
type InstrumentedFacility struct {
	*Facility
	telemetry *TelemetryProvider

	entryOperations   metric.Int64Counter
	exitOperations    metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	revenueCounter    metric.Float64Counter
	operationDuration metric.Float64Histogram
	totalSlotsGauge   metric.Int64UpDownCounter
}

func NewInstrumentedFacility(facility *Facility, telemetry *TelemetryProvider) (*InstrumentedFacility, error) {
	meter := telemetry.Meter()

	entryOperations, err := meter.Int64Counter("parking_entries_total",
		metric.WithDescription("Total number of entry gate operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	exitOperations, err := meter.Int64Counter("parking_exits_total",
		metric.WithDescription("Total number of exit gate operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("parking_lot_occupancy",
		metric.WithDescription("Current number of active parking sessions"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	revenueCounter, err := meter.Float64Counter("parking_revenue_total",
		metric.WithDescription("Fees collected at the exit gate"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of parking gate operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	totalSlotsGauge, err := meter.Int64UpDownCounter("parking_lot_total_slots",
		metric.WithDescription("Total capacity of the parking lot"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	f := &InstrumentedFacility{
		Facility:          facility,
		telemetry:         telemetry,
		entryOperations:   entryOperations,
		exitOperations:    exitOperations,
		occupancyGauge:    occupancyGauge,
		revenueCounter:    revenueCounter,
		operationDuration: operationDuration,
		totalSlotsGauge:   totalSlotsGauge,
	}

	totalSlotsGauge.Add(context.Background(), int64(facility.Registry.Capacity()))

	facility.Registry.Subscribe(func(rec ActivityRecord) {
		logging.Info(context.Background(), "parking activity",
			"kind", string(rec.Kind),
			"plate", rec.Plate,
			"line", rec.String(),
		)
	})

	return f, nil
}

// Enter admits vehicle, resolving passID against the pass book when set.
func (f *InstrumentedFacility) Enter(ctx context.Context, vehicle Vehicle, passID string) (*Ticket, error) {
	ctx, span := f.telemetry.Tracer().Start(ctx, "entry_gate.enter",
		trace.WithAttributes(
			attribute.String("vehicle.plate", vehicle.Plate),
			attribute.String("vehicle.kind", string(vehicle.Kind)),
			attribute.String("pass.id", passID),
		))
	defer span.End()

	start := time.Now()

	admission := "ticket"
	var pass *Pass
	var err error
	if passID != "" {
		admission = "pass"
		span.AddEvent("looking_up_pass")
		pass, err = f.Passes.Lookup(passID)
	}

	var ticket *Ticket
	if err == nil {
		ticket, err = f.Facility.Entry.Enter(vehicle, pass)
	}

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "enter"),
		attribute.String("vehicle_kind", string(vehicle.Kind)),
		attribute.String("admission", admission),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
		logging.Warn(ctx, "entry rejected", "plate", vehicle.Plate, "error", err.Error())
	} else {
		labels = append(labels, attribute.String("status", "success"))
		if ticket != nil {
			span.SetAttributes(attribute.String("ticket.id", ticket.ID))
			// The exit gate closes the stored ticket; callers get their own copy.
			_ = f.Registry.Exclusive(func() error {
				ticket = ticket.Clone()
				return nil
			})
		}
		span.AddEvent("vehicle_admitted")
		f.occupancyGauge.Add(ctx, 1)
	}

	f.entryOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	f.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}

func (f *InstrumentedFacility) Exit(ctx context.Context, plate, method string) (*Payment, error) {
	ctx, span := f.telemetry.Tracer().Start(ctx, "exit_gate.exit",
		trace.WithAttributes(
			attribute.String("vehicle.plate", plate),
			attribute.String("payment.method", method),
		))
	defer span.End()

	start := time.Now()

	labels := []attribute.KeyValue{
		attribute.String("operation", "exit"),
	}

	// Session details are read before the gate removes it. Outside the
	// operation lock only fields fixed at admission are touched.
	session, lookupErr := f.Registry.Get(plate)
	if lookupErr == nil {
		admission := "ticket"
		if session.PassBased() {
			admission = "pass"
		}
		labels = append(labels,
			attribute.String("vehicle_kind", string(session.Vehicle.Kind)),
			attribute.String("admission", admission),
		)
		span.SetAttributes(attribute.String("vehicle.kind", string(session.Vehicle.Kind)))
	}

	span.AddEvent("releasing_vehicle")

	payment, err := f.Facility.Exit.Exit(plate, method)

	duration := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
		logging.Warn(ctx, "exit rejected", "plate", plate, "error", err.Error())
	} else {
		labels = append(labels, attribute.String("status", "success"))
		if payment != nil {
			span.SetAttributes(
				attribute.String("payment.id", payment.ID),
				attribute.Float64("payment.amount", payment.Amount),
			)
			f.revenueCounter.Add(ctx, payment.Amount, metric.WithAttributes(
				attribute.String("method", payment.Method),
			))
		}
		if session != nil && session.Ticket != nil {
			_ = f.Registry.Exclusive(func() error {
				if d, err := session.Ticket.Duration(); err == nil {
					span.SetAttributes(attribute.Float64("parking.duration_hours", d.Hours()))
				}
				return nil
			})
		}
		span.AddEvent("vehicle_released")
		f.occupancyGauge.Add(ctx, -1)
	}

	f.exitOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	f.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return payment, err
}

func (f *InstrumentedFacility) IssuePass(ctx context.Context, pass *Pass) error {
	_, span := f.telemetry.Tracer().Start(ctx, "pass_book.issue",
		trace.WithAttributes(
			attribute.String("pass.id", pass.ID),
			attribute.String("pass.kind", pass.Kind.String()),
			attribute.String("pass.plate", pass.Plate),
		))
	defer span.End()

	if err := f.Passes.Issue(pass); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.AddEvent("pass_issued")
	return nil
}

func (f *InstrumentedFacility) Status(ctx context.Context) Snapshot {
	ctx, span := f.telemetry.Tracer().Start(ctx, "registry.status")
	defer span.End()

	start := time.Now()
	sessions := f.Registry.Sessions()
	capacity := f.Registry.Capacity()

	span.SetAttributes(
		attribute.Int("occupied_count", len(sessions)),
		attribute.Int("total_capacity", capacity),
	)

	f.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", "status"),
		attribute.String("status", "success"),
	))

	return Snapshot{
		Capacity:  capacity,
		Occupied:  len(sessions),
		Available: capacity - len(sessions),
		Sessions:  sessions,
	}
}

func (f *InstrumentedFacility) FindSession(ctx context.Context, plate string) (*Session, error) {
	_, span := f.telemetry.Tracer().Start(ctx, "registry.find_session",
		trace.WithAttributes(attribute.String("vehicle.plate", plate)))
	defer span.End()

	session, err := f.Registry.Find(plate)
	if err != nil {
		span.AddEvent("session_not_found")
		return nil, err
	}
	span.AddEvent("session_found")
	return session, nil
}

// Retire withdraws the lot from the slot and occupancy gauges once a
// replacement facility takes over.
func (f *InstrumentedFacility) Retire(ctx context.Context) {
	_, span := f.telemetry.Tracer().Start(ctx, "registry.retire",
		trace.WithAttributes(attribute.Int("total_capacity", f.Registry.Capacity())))
	defer span.End()

	f.totalSlotsGauge.Add(ctx, -int64(f.Registry.Capacity()))
	f.occupancyGauge.Add(ctx, -int64(f.Registry.Occupied()))
}
