package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"

	"urban-parking/internal/feed"
	"urban-parking/internal/parking"
)

type Handler struct {
	serviceName string
	site        *parking.Site
	hub         *feed.Hub
}

// NewHandler serves the facility in service at site and replaces it on
// POST /api/parking-lot. hub may be nil when the feed is disabled.
func NewHandler(serviceName string, site *parking.Site, hub *feed.Hub) *Handler {
	h := &Handler{
		serviceName: serviceName,
		site:        site,
		hub:         hub,
	}
	if hub != nil {
		site.OnReplace(func(facility *parking.InstrumentedFacility) {
			facility.Registry.Subscribe(func(rec parking.ActivityRecord) {
				hub.Publish("activity", rec)
			})
		})
	}
	return h
}

func (h *Handler) current() *parking.InstrumentedFacility {
	return h.site.Current()
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": h.serviceName,
		"meta":    extractMeta(r.Context()),
	})
}

func (h *Handler) CreateParkingLot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ParkingLotCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Capacity <= 0 {
		WriteError(ctx, w, http.StatusBadRequest, "Capacity must be greater than 0")
		return
	}

	if _, err := h.site.Replace(ctx, req.Capacity); err != nil {
		WriteError(ctx, w, http.StatusInternalServerError, "Failed to create parking lot")
		return
	}

	WriteSuccess(ctx, w, "Parking lot created successfully", map[string]any{
		"capacity": req.Capacity,
	})
}

func (h *Handler) IssuePass(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facility := h.current()
	if facility == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Parking lot not created. Create parking lot first")
		return
	}

	var req IssuePassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.PassID == "" || req.Plate == "" || req.ValidUntil.IsZero() {
		WriteError(ctx, w, http.StatusBadRequest, "pass_id, plate and valid_until are required")
		return
	}

	kind, err := parking.ParsePassKind(req.Kind)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	pass := &parking.Pass{ID: req.PassID, Plate: req.Plate, ValidUntil: req.ValidUntil, Kind: kind}
	if err := facility.IssuePass(ctx, pass); err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Pass issued successfully", newPassResponse(pass))
}

func (h *Handler) ListPasses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facility := h.current()
	if facility == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Parking lot not created. Create parking lot first")
		return
	}

	passes := facility.Passes.List()
	resp := make([]PassResponse, 0, len(passes))
	for _, p := range passes {
		resp = append(resp, newPassResponse(p))
	}

	WriteSuccess(ctx, w, "Passes retrieved successfully", resp)
}

func (h *Handler) GetPass(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facility := h.current()
	if facility == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Parking lot not created. Create parking lot first")
		return
	}

	pass, err := facility.Passes.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Pass found", newPassResponse(pass))
}

func (h *Handler) Enter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facility := h.current()
	if facility == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Parking lot not created. Create parking lot first")
		return
	}

	var req EnterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Plate == "" || req.Kind == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Plate and kind are required")
		return
	}

	kind, err := parking.ParseKind(req.Kind)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	ticket, err := facility.Enter(ctx, parking.NewVehicle(req.Plate, kind), req.PassID)
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	resp := EnterResponse{Plate: req.Plate, Admission: "ticket", Ticket: newTicketResponse(ticket)}
	if ticket == nil {
		resp.Admission = "pass"
	}
	WriteSuccess(ctx, w, "Entry approved", resp)
}

func (h *Handler) Exit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facility := h.current()
	if facility == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Parking lot not created. Create parking lot first")
		return
	}

	var req ExitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Plate == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Plate is required")
		return
	}

	payment, err := facility.Exit(ctx, req.Plate, req.Method)
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Exit done", ExitResponse{Plate: req.Plate, Payment: newPaymentResponse(payment)})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facility := h.current()
	if facility == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Parking lot not created. Create parking lot first")
		return
	}

	snapshot := facility.Status(ctx)
	sessions := make([]SessionResponse, 0, len(snapshot.Sessions))
	for _, s := range snapshot.Sessions {
		sessions = append(sessions, newSessionResponse(s))
	}

	WriteSuccess(ctx, w, "Status retrieved successfully", StatusResponse{
		Capacity:  snapshot.Capacity,
		Occupied:  snapshot.Occupied,
		Available: snapshot.Available,
		Sessions:  sessions,
	})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facility := h.current()
	if facility == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Parking lot not created. Create parking lot first")
		return
	}

	session, err := facility.FindSession(ctx, chi.URLParam(r, "plate"))
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Session found", newSessionResponse(session))
}

func (h *Handler) GetLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facility := h.current()
	if facility == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Parking lot not created. Create parking lot first")
		return
	}

	lines := facility.Registry.Log()
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			WriteError(ctx, w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		if limit < len(lines) {
			lines = lines[len(lines)-limit:]
		}
	}

	WriteSuccess(ctx, w, "Activity log retrieved", LogResponse{Lines: lines})
}

func (h *Handler) ActivityFeed(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		WriteError(r.Context(), w, http.StatusNotFound, "Activity feed disabled")
		return
	}
	h.hub.ServeWS(w, r)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, parking.ErrCapacity),
		errors.Is(err, parking.ErrDuplicateOccupant),
		errors.Is(err, parking.ErrPassExists):
		return http.StatusConflict
	case errors.Is(err, parking.ErrNotFound),
		errors.Is(err, parking.ErrPassNotFound):
		return http.StatusNotFound
	case errors.Is(err, parking.ErrPassMismatch),
		errors.Is(err, parking.ErrPassExpired),
		errors.Is(err, parking.ErrInvalidPass):
		return http.StatusForbidden
	case errors.Is(err, parking.ErrUnknownKind),
		errors.Is(err, parking.ErrUnknownPassKind):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
