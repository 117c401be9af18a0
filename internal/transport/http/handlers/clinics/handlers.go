package clinicshandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"clinic/internal/domain/clinics"
	"clinic/internal/domain/users"
	"clinic/internal/transport/http/api"
	"clinic/internal/transport/http/middleware"
)

type Handler struct {
	Service *clinics.Service
}

func NewHandler(service *clinics.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	write := middleware.RequireRole(users.RoleAdmin)

	r.Route("/clinics", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.Get("/code/{clinicCode}", h.handleGetByCode)
		r.Route("/{clinicID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.With(write).Put("/", h.handleUpdate)
			r.With(write).Delete("/", h.handleDeactivate)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("includeInactive") == "true"

	list, err := h.Service.List(r.Context(), includeInactive)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "clinic_list_failed", "failed to list clinics", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var input clinics.ClinicInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_payload", "invalid JSON body", requestID)
		return
	}

	clinic, err := h.Service.Create(r.Context(), input)
	if err != nil {
		writeClinicError(w, err, requestID)
		return
	}
	api.Created(w, clinic, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseClinicID(w, r)
	if !ok {
		return
	}

	clinic, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeClinicError(w, err, requestID)
		return
	}
	api.Success(w, clinic, requestID)
}

func (h *Handler) handleGetByCode(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	clinic, err := h.Service.GetByCode(r.Context(), chi.URLParam(r, "clinicCode"))
	if err != nil {
		writeClinicError(w, err, requestID)
		return
	}
	api.Success(w, clinic, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseClinicID(w, r)
	if !ok {
		return
	}

	var upd clinics.ClinicUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_payload", "invalid JSON body", requestID)
		return
	}

	clinic, err := h.Service.Update(r.Context(), id, upd)
	if err != nil {
		writeClinicError(w, err, requestID)
		return
	}
	api.Success(w, clinic, requestID)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseClinicID(w, r)
	if !ok {
		return
	}

	clinic, err := h.Service.Deactivate(r.Context(), id)
	if err != nil {
		writeClinicError(w, err, requestID)
		return
	}
	api.Success(w, clinic, requestID)
}

func parseClinicID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "clinicID"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_payload", "clinicID must be a valid UUID", middleware.GetRequestID(r.Context()))
		return uuid.Nil, false
	}
	return id, true
}

func writeClinicError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, clinics.ErrInvalid):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	case errors.Is(err, clinics.ErrCodeExists):
		api.Fail(w, http.StatusConflict, "duplicate", err.Error(), requestID)
	case errors.Is(err, clinics.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
	}
}
