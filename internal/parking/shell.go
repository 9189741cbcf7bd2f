package parking

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Shell drives a facility from line-oriented text commands.
type Shell struct {
	site      *Site
	clock     Clock
	scanner   *bufio.Scanner
	out       io.Writer
	telemetry *TelemetryProvider
}

// NewShell reads commands from in and writes replies to out. The site may
// have no facility until create_parking_lot is issued.
func NewShell(in io.Reader, out io.Writer, site *Site, clock Clock, telemetry *TelemetryProvider) *Shell {
	if clock == nil {
		clock = time.Now
	}
	return &Shell{
		site:      site,
		clock:     clock,
		scanner:   bufio.NewScanner(in),
		out:       out,
		telemetry: telemetry,
	}
}

func (s *Shell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for ctx.Err() == nil && s.scanner.Scan() {
		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))
		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	span := trace.SpanFromContext(ctx)
	command := parts[0]
	span.SetAttributes(attribute.String("command.name", command))

	switch command {
	case "create_parking_lot":
		s.handleCreateParkingLot(ctx, parts)
		return
	}

	facility := s.site.Current()
	if facility == nil {
		span.AddEvent("parking_lot_not_created")
		s.println("Parking lot not created")
		return
	}

	switch command {
	case "issue_pass":
		s.handleIssuePass(ctx, facility, parts)
	case "passes":
		s.handlePasses(facility)
	case "enter":
		s.handleEnter(ctx, facility, parts)
	case "exit":
		s.handleExit(ctx, facility, parts)
	case "status":
		s.handleStatus(ctx, facility)
	case "log":
		s.handleLog(facility, parts)
	default:
		span.AddEvent("unknown_command")
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *Shell) handleCreateParkingLot(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.println("Usage: create_parking_lot <capacity>")
		return
	}

	capacity, err := strconv.Atoi(parts[1])
	if err != nil || capacity <= 0 {
		s.println("Invalid capacity")
		return
	}

	if _, err := s.site.Replace(ctx, capacity); err != nil {
		s.printf("Error creating parking lot: %s\n", err.Error())
		return
	}

	s.printf("Created a parking lot with %d slots\n", capacity)
}

func (s *Shell) handleIssuePass(ctx context.Context, facility *InstrumentedFacility, parts []string) {
	if len(parts) != 5 {
		s.println("Usage: issue_pass <pass_id> <plate> <recurring|single_use> <valid_until|+duration>")
		return
	}

	kind, err := ParsePassKind(parts[3])
	if err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}

	validUntil, err := s.parseValidUntil(parts[4])
	if err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}

	pass := &Pass{ID: parts[1], Plate: parts[2], ValidUntil: validUntil, Kind: kind}
	if err := facility.IssuePass(ctx, pass); err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}

	s.printf("Issued %s pass %s for %s, valid until %s\n",
		kind, pass.ID, pass.Plate, validUntil.Format(time.RFC3339))
}

func (s *Shell) handlePasses(facility *InstrumentedFacility) {
	passes := facility.Passes.List()
	if len(passes) == 0 {
		s.println("No passes issued")
		return
	}
	for _, p := range passes {
		s.printf("%s\t%s\t%s\tvalid until %s\tused=%t\n",
			p.ID, p.Plate, p.Kind, p.ValidUntil.Format(time.RFC3339), p.Used())
	}
}

func (s *Shell) handleEnter(ctx context.Context, facility *InstrumentedFacility, parts []string) {
	if len(parts) != 3 && len(parts) != 4 {
		s.println("Usage: enter <plate> <bike|car|truck> [pass_id]")
		return
	}

	kind, err := ParseKind(parts[2])
	if err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}

	passID := ""
	if len(parts) == 4 {
		passID = parts[3]
	}

	vehicle := NewVehicle(parts[1], kind)
	ticket, err := facility.Enter(ctx, vehicle, passID)
	if err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}

	if ticket != nil {
		s.printf("Entry approved for %s. Ticket: %s\n", vehicle.Plate, ticket.ID)
		return
	}
	s.printf("%s entered using pass %s.\n", vehicle.Plate, passID)
}

func (s *Shell) handleExit(ctx context.Context, facility *InstrumentedFacility, parts []string) {
	if len(parts) != 2 && len(parts) != 3 {
		s.println("Usage: exit <plate> [payment_method]")
		return
	}

	method := DefaultPaymentMethod
	if len(parts) == 3 {
		method = parts[2]
	}

	payment, err := facility.Exit(ctx, parts[1], method)
	if err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}

	if payment != nil {
		s.printf("Exit done for %s. Paid: %.2f (%s)\n", parts[1], payment.Amount, payment.Method)
		return
	}
	s.printf("%s exited. No payment needed.\n", parts[1])
}

func (s *Shell) handleStatus(ctx context.Context, facility *InstrumentedFacility) {
	snapshot := facility.Status(ctx)
	s.printf("Spaces available: %d / %d\n", snapshot.Available, snapshot.Capacity)
	if len(snapshot.Sessions) == 0 {
		s.println("Parking lot is empty")
		return
	}

	s.println("Plate\t\tKind\tAdmission\tSince")
	for _, session := range snapshot.Sessions {
		var admission string
		switch {
		case session.PassBased():
			admission = "pass " + session.Pass.ID
		case session.Ticket != nil:
			admission = "ticket " + session.Ticket.ID
		}
		s.printf("%s\t%s\t%s\t%s\n", session.Plate(), session.Vehicle.Kind, admission,
			session.StartedAt.Format(time.RFC3339))
	}
}

func (s *Shell) handleLog(facility *InstrumentedFacility, parts []string) {
	lines := facility.Registry.Log()
	if len(parts) == 2 {
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 0 {
			s.println("Usage: log [count]")
			return
		}
		lines = tail(lines, n)
	}
	for _, line := range lines {
		s.println(line)
	}
}

// parseValidUntil accepts an RFC 3339 timestamp or a +duration relative to now.
func (s *Shell) parseValidUntil(v string) (time.Time, error) {
	if strings.HasPrefix(v, "+") {
		d, err := time.ParseDuration(v[1:])
		if err != nil {
			return time.Time{}, errors.Wrapf(err, "invalid duration %q", v)
		}
		return s.clock().Add(d), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid timestamp %q", v)
	}
	return t, nil
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) println(line string) {
	fmt.Fprintln(s.out, line)
}

func tail(lines []string, n int) []string {
	if n >= len(lines) {
		return lines
	}
	return lines[len(lines)-n:]
}
