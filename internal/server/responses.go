package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"urban-parking/internal/logging"
	"urban-parking/internal/parking"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type ParkingLotCreateRequest struct {
	Capacity int `json:"capacity"`
}

type IssuePassRequest struct {
	PassID     string    `json:"pass_id"`
	Plate      string    `json:"plate"`
	Kind       string    `json:"kind"`
	ValidUntil time.Time `json:"valid_until"`
}

type EnterRequest struct {
	Plate  string `json:"plate"`
	Kind   string `json:"kind"`
	PassID string `json:"pass_id,omitempty"`
}

type ExitRequest struct {
	Plate  string `json:"plate"`
	Method string `json:"method,omitempty"`
}

type TicketResponse struct {
	TicketID  string     `json:"ticket_id"`
	Plate     string     `json:"plate"`
	EntryTime time.Time  `json:"entry_time"`
	ExitTime  *time.Time `json:"exit_time,omitempty"`
}

type PaymentResponse struct {
	PaymentID string    `json:"payment_id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	PaidAt    time.Time `json:"paid_at"`
}

type PassResponse struct {
	PassID     string    `json:"pass_id"`
	Plate      string    `json:"plate"`
	Kind       string    `json:"kind"`
	ValidUntil time.Time `json:"valid_until"`
	Used       bool      `json:"used"`
}

type EnterResponse struct {
	Plate     string          `json:"plate"`
	Admission string          `json:"admission"`
	Ticket    *TicketResponse `json:"ticket"`
}

type ExitResponse struct {
	Plate   string           `json:"plate"`
	Payment *PaymentResponse `json:"payment"`
}

type SessionResponse struct {
	Plate     string          `json:"plate"`
	Kind      string          `json:"kind"`
	Admission string          `json:"admission"`
	StartedAt time.Time       `json:"started_at"`
	Ticket    *TicketResponse `json:"ticket,omitempty"`
	PassID    string          `json:"pass_id,omitempty"`
}

type StatusResponse struct {
	Capacity  int               `json:"capacity"`
	Occupied  int               `json:"occupied"`
	Available int               `json:"available"`
	Sessions  []SessionResponse `json:"sessions"`
}

type LogResponse struct {
	Lines []string `json:"lines"`
}

func newTicketResponse(t *parking.Ticket) *TicketResponse {
	if t == nil {
		return nil
	}
	return &TicketResponse{
		TicketID:  t.ID,
		Plate:     t.Plate,
		EntryTime: t.EntryTime,
		ExitTime:  t.ExitTime,
	}
}

func newPaymentResponse(p *parking.Payment) *PaymentResponse {
	if p == nil {
		return nil
	}
	return &PaymentResponse{
		PaymentID: p.ID,
		Amount:    p.Amount,
		Method:    p.Method,
		PaidAt:    p.PaidAt,
	}
}

func newPassResponse(p *parking.Pass) PassResponse {
	return PassResponse{
		PassID:     p.ID,
		Plate:      p.Plate,
		Kind:       p.Kind.String(),
		ValidUntil: p.ValidUntil,
		Used:       p.Used(),
	}
}

func newSessionResponse(s *parking.Session) SessionResponse {
	resp := SessionResponse{
		Plate:     s.Plate(),
		Kind:      string(s.Vehicle.Kind),
		Admission: "ticket",
		StartedAt: s.StartedAt,
		Ticket:    newTicketResponse(s.Ticket),
	}
	if s.PassBased() {
		resp.Admission = "pass"
		resp.PassID = s.Pass.ID
	}
	return resp
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Logger().Error("failed to encode response", "error", err.Error())
	}
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
