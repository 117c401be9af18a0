package staffhandler

import (
	"errors"
	"net/http"

	"clinic/internal/domain/staff"
	"clinic/internal/transport/http/api"
	"clinic/internal/transport/http/middleware"
)

// writeDomainError maps the onboarding error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var vErr *staff.ValidationError
	if errors.As(err, &vErr) {
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "employee validation failed", vErr.Reasons, requestID)
		return
	}

	var dup *staff.DuplicateError
	if errors.As(err, &dup) {
		api.Fail(w, http.StatusConflict, "duplicate", dup.Error(), requestID)
		return
	}

	var already *staff.AlreadyEmployeeError
	if errors.As(err, &already) {
		api.Fail(w, http.StatusConflict, "already_employee", already.Error(), requestID)
		return
	}

	var nf *staff.NotFoundError
	if errors.As(err, &nf) {
		api.Fail(w, http.StatusNotFound, "not_found", nf.Error(), requestID)
		return
	}

	var txErr *staff.TransactionError
	if errors.As(err, &txErr) {
		// Error() carries only the step name, the cause stays in the logs.
		api.Fail(w, http.StatusInternalServerError, "transaction_failed", txErr.Error(), requestID)
		return
	}

	api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
}
