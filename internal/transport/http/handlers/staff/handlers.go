package staffhandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"clinic/internal/domain/staff"
	"clinic/internal/domain/users"
	"clinic/internal/transport/http/api"
	"clinic/internal/transport/http/middleware"
	"clinic/internal/transport/http/shared"
)

type Handler struct {
	Service     *staff.Service
	Idempotency *middleware.IdempotencyStore
}

func NewHandler(service *staff.Service, idempotency *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Idempotency: idempotency}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	write := middleware.RequireRole(users.RoleAdmin)

	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.With(write).Post("/bulk", h.handleBulkCreate)
		r.Get("/medical-staff", h.handleMedicalStaff)
		r.Get("/roster.pdf", h.handleRoster)
		r.Get("/code/{employeeCode}", h.handleGetByCode)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.With(write).Put("/", h.handleUpdate)
			r.With(write).Delete("/", h.handleDelete)
		})
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload submissionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_payload", "invalid JSON body", requestID)
		return
	}

	sub, problems := payload.toSubmission()
	if len(problems) > 0 {
		api.FailWithDetails(w, http.StatusBadRequest, "bad_payload", "malformed submission", problems, requestID)
		return
	}

	result, err := h.Service.CreateEmployee(r.Context(), sub, user.Username)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	api.Created(w, result, requestID)
}

func (h *Handler) handleBulkCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_payload", "failed to read body", requestID)
		return
	}

	// retried batches replay the recorded outcome instead of onboarding twice
	idemKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash(body)
	if idemKey != "" {
		stored, found, err := h.Idempotency.Check(r.Context(), user.UserID, "bulk_employees", idemKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", requestID)
			return
		}
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
			return
		}
		if found {
			api.Success(w, stored, requestID)
			return
		}
	}

	var payload struct {
		Submissions      []submissionPayload `json:"submissions"`
		StopOnError      bool                `json:"stopOnError"`
		ValidateAllFirst bool                `json:"validateAllFirst"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_payload", "invalid JSON body", requestID)
		return
	}

	req := staff.BulkRequest{
		Submissions:      make([]staff.Submission, 0, len(payload.Submissions)),
		StopOnError:      payload.StopOnError,
		ValidateAllFirst: payload.ValidateAllFirst,
	}
	for i, item := range payload.Submissions {
		sub, problems := item.toSubmission()
		if len(problems) > 0 {
			api.FailWithDetails(w, http.StatusBadRequest, "bad_payload",
				"malformed submission at index "+strconv.Itoa(i), problems, requestID)
			return
		}
		req.Submissions = append(req.Submissions, sub)
	}

	result, err := h.Service.BulkCreate(r.Context(), req, user.Username)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if idemKey != "" {
		encoded, err := json.Marshal(result)
		if err == nil {
			if err := h.Idempotency.Save(r.Context(), user.UserID, "bulk_employees", idemKey, requestHash, encoded); err != nil {
				slog.Warn("idempotency save failed", "key", idemKey, "err", err)
			}
		}
	}

	api.Success(w, result, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	filter := staff.ListFilter{}
	page := shared.ParsePagination(r, 50, 100)
	filter.Skip = page.Offset
	filter.Limit = page.Limit

	if raw := r.URL.Query().Get("clinicId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "bad_payload", "clinicId must be a valid UUID", requestID)
			return
		}
		filter.ClinicID = &id
	}
	if raw := r.URL.Query().Get("role"); raw != "" {
		role := staff.Role(raw)
		if !role.Valid() {
			api.Fail(w, http.StatusBadRequest, "bad_payload", "unknown role", requestID)
			return
		}
		filter.Role = &role
	}
	if raw := r.URL.Query().Get("isActive"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "bad_payload", "isActive must be true or false", requestID)
			return
		}
		filter.IsActive = &active
	}

	employees, err := h.Service.ListEmployees(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, employees, requestID)
}

func (h *Handler) handleMedicalStaff(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var clinicID *uuid.UUID
	if raw := r.URL.Query().Get("clinicId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "bad_payload", "clinicId must be a valid UUID", requestID)
			return
		}
		clinicID = &id
	}

	employees, err := h.Service.MedicalStaff(r.Context(), clinicID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, employees, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEmployeeID(w, r)
	if !ok {
		return
	}

	employee, err := h.Service.GetEmployee(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, employee, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "employeeCode")

	employee, err := h.Service.GetEmployeeByCode(r.Context(), code)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, employee, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id, ok := parseEmployeeID(w, r)
	if !ok {
		return
	}

	var payload updatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_payload", "invalid JSON body", requestID)
		return
	}

	upd, problems := payload.toUpdate()
	if len(problems) > 0 {
		api.FailWithDetails(w, http.StatusBadRequest, "bad_payload", "malformed update", problems, requestID)
		return
	}

	employee, err := h.Service.UpdateEmployee(r.Context(), id, upd)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, employee, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id, ok := parseEmployeeID(w, r)
	if !ok {
		return
	}

	hard := r.URL.Query().Get("hard") == "true"
	deleted, err := h.Service.DeleteEmployee(r.Context(), id, hard)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !deleted {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, requestID)
}

func parseEmployeeID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "employeeID"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_payload", "employeeID must be a valid UUID", middleware.GetRequestID(r.Context()))
		return uuid.Nil, false
	}
	return id, true
}
