package personshandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"clinic/internal/domain/staff"
	"clinic/internal/transport/http/api"
	"clinic/internal/transport/http/middleware"
	"clinic/internal/transport/http/shared"
)

type Handler struct {
	Service *staff.Service
}

func NewHandler(service *staff.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/persons", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/search", h.handleSearch)
		r.Get("/without-employee", h.handleWithoutEmployee)
		r.Get("/{personID}", h.handleGet)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 100)

	persons, err := h.Service.ListPersons(r.Context(), page.Offset, page.Limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "person_list_failed", "failed to list persons", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, persons, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	firstName := r.URL.Query().Get("firstName")
	lastName := r.URL.Query().Get("lastName")

	persons, err := h.Service.SearchPersons(r.Context(), firstName, lastName)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "person_search_failed", "failed to search persons", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, persons, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleWithoutEmployee(w http.ResponseWriter, r *http.Request) {
	persons, err := h.Service.PersonsWithoutEmployee(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "person_list_failed", "failed to list persons", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, persons, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "personID"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_payload", "personID must be a valid UUID", requestID)
		return
	}

	person, err := h.Service.GetPerson(r.Context(), id)
	if err != nil {
		var nf *staff.NotFoundError
		if errors.As(err, &nf) {
			api.Fail(w, http.StatusNotFound, "not_found", nf.Error(), requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
		return
	}
	api.Success(w, person, requestID)
}
