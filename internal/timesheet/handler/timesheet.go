package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shiftclock/shiftclock-backend/internal/timesheet/domain"
	"github.com/shiftclock/shiftclock-backend/internal/timesheet/service"
	"github.com/shiftclock/shiftclock-backend/pkg/errors"
	"github.com/shiftclock/shiftclock-backend/pkg/httputil"
	"github.com/shiftclock/shiftclock-backend/pkg/logger"
	"github.com/shiftclock/shiftclock-backend/pkg/permissions"
)

// Service is the timesheet behaviour the handler exposes
type Service interface {
	RecordEvent(ctx context.Context, in service.RecordEventInput) (*service.RecordedEvent, error)
	UpdateEvent(ctx context.Context, id string, in service.UpdateEventInput, actorID string) (*domain.TimeEvent, error)
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context, employeeID, date string) ([]domain.TimeEvent, error)
	GetWorkday(ctx context.Context, employeeID, date string) (domain.WorkdaySummary, error)
	GetDayBoard(ctx context.Context, date string) (map[string]domain.WorkdaySummary, error)
	GetPeriod(ctx context.Context, employeeID, from, to string) (domain.PeriodSummary, error)
	Today() string
}

// TimesheetHandler handles punch and workday endpoints
type TimesheetHandler struct {
	service Service
	logger  *logger.Logger
}

// NewTimesheetHandler creates a new timesheet handler
func NewTimesheetHandler(svc Service, log *logger.Logger) *TimesheetHandler {
	return &TimesheetHandler{
		service: svc,
		logger:  log,
	}
}

// Routes returns the router mounted under /api/v1/timesheet
func (h *TimesheetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Post("/", h.RecordEvent)
		r.With(permissions.Require(permissions.TimesheetManage)).Patch("/{id}", h.UpdateEvent)
		r.With(permissions.Require(permissions.TimesheetManage)).Delete("/{id}", h.DeleteEvent)
	})

	r.Route("/workdays", func(r chi.Router) {
		r.Get("/", h.GetDayBoard)
		r.Get("/{employeeId}", h.GetWorkday)
		r.Get("/{employeeId}/period", h.GetPeriod)
	})

	return r
}

// RecordEvent stores a punch
// POST /events
func (h *TimesheetHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req RecordEventRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	in := service.RecordEventInput{
		EmployeeID: req.EmployeeID,
		Type:       domain.EventType(req.Type),
		Timestamp:  req.Timestamp,
		Date:       req.Date,
		Source:     req.Source,
		DeviceID:   req.DeviceID,
		Notes:      req.Notes,
	}
	if userID := httputil.GetUserID(r.Context()); userID != "" {
		in.CreatedBy = &userID
	}

	recorded, err := h.service.RecordEvent(r.Context(), in)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, RecordEventResponse{
		Event:   recorded.Event,
		Workday: newWorkdayResponse(recorded.Workday),
	})
}

// ListEvents returns the raw punches of one employee-day
// GET /events?employee_id=&date=
func (h *TimesheetHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if err := requireUUID("employee_id", employeeID); err != nil {
		httputil.Error(w, err)
		return
	}

	events, err := h.service.ListEvents(r.Context(), employeeID, h.dateParam(r, "date"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, events, &httputil.Meta{Total: int64(len(events))})
}

// UpdateEvent corrects a punch
// PATCH /events/{id}
func (h *TimesheetHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := requireUUID("id", id); err != nil {
		httputil.Error(w, err)
		return
	}

	var req UpdateEventRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	in := service.UpdateEventInput{
		Timestamp: req.Timestamp,
		Date:      req.Date,
		Notes:     req.Notes,
	}
	if req.Type != nil {
		t := domain.EventType(*req.Type)
		in.Type = &t
	}

	event, err := h.service.UpdateEvent(r.Context(), id, in, httputil.GetUserID(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, event)
}

// DeleteEvent soft deletes a punch
// DELETE /events/{id}
func (h *TimesheetHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := requireUUID("id", id); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.DeleteEvent(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// GetDayBoard returns the workday of every employee with punches on a day
// GET /workdays?date=
func (h *TimesheetHandler) GetDayBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.GetDayBoard(r.Context(), h.dateParam(r, "date"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	resp := make(map[string]WorkdayResponse, len(board))
	for employeeID, summary := range board {
		resp[employeeID] = newWorkdayResponse(summary)
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// GetWorkday returns one employee-day
// GET /workdays/{employeeId}?date=
func (h *TimesheetHandler) GetWorkday(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if err := requireUUID("employee_id", employeeID); err != nil {
		httputil.Error(w, err)
		return
	}

	summary, err := h.service.GetWorkday(r.Context(), employeeID, h.dateParam(r, "date"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, newWorkdayResponse(summary))
}

// GetPeriod returns an employee's workdays over a date range
// GET /workdays/{employeeId}/period?from=&to=
func (h *TimesheetHandler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if err := requireUUID("employee_id", employeeID); err != nil {
		httputil.Error(w, err)
		return
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		httputil.Error(w, errors.BadRequest("from and to are required"))
		return
	}

	period, err := h.service.GetPeriod(r.Context(), employeeID, from, to)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, newPeriodResponse(period))
}

// dateParam reads a date query parameter, defaulting to today
func (h *TimesheetHandler) dateParam(r *http.Request, name string) string {
	if date := r.URL.Query().Get(name); date != "" {
		return date
	}
	return h.service.Today()
}

func requireUUID(field, value string) error {
	if value == "" {
		return errors.Validation(map[string]string{field: "this field is required"})
	}
	if _, err := uuid.Parse(value); err != nil {
		return errors.Validation(map[string]string{field: "must be a valid UUID"})
	}
	return nil
}
