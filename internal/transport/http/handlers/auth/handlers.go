package authhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"clinic/internal/domain/users"
	"clinic/internal/transport/http/api"
	"clinic/internal/transport/http/middleware"
)

type Handler struct {
	Store    *users.Store
	Secret   string
	TokenTTL time.Duration
}

func NewHandler(store *users.Store, secret string, ttl time.Duration) *Handler {
	return &Handler{Store: store, Secret: secret, TokenTTL: ttl}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Get("/auth/me", h.handleMe)
	r.Post("/auth/mfa/setup", h.handleMFASetup)
	r.Post("/auth/mfa/enable", h.handleMFAEnable)
	r.Post("/auth/mfa/disable", h.handleMFADisable)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_payload", "invalid JSON body", requestID)
		return
	}

	user, err := h.Store.FindByUsername(r.Context(), payload.Username)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", requestID)
		return
	}
	// same response for unknown user and bad password
	if user == nil || !user.IsActive || users.CheckPassword(user.PasswordHash, payload.Password) != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password", requestID)
		return
	}

	if user.MFAEnabled {
		if payload.MFACode == "" {
			api.Fail(w, http.StatusUnauthorized, "mfa_required", "mfa code required", requestID)
			return
		}
		if user.MFASecret == "" || !totp.Validate(payload.MFACode, user.MFASecret) {
			api.Fail(w, http.StatusUnauthorized, "mfa_invalid", "invalid mfa code", requestID)
			return
		}
	}

	token, err := users.GenerateToken(h.Secret, users.Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Role:     user.Role,
	}, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}

	slog.Info("user logged in", "username", user.Username)
	api.Success(w, map[string]any{
		"token": token,
		"user": map[string]string{
			"id":       user.ID.String(),
			"username": user.Username,
			"role":     user.Role,
		},
	}, requestID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	api.Success(w, user, requestID)
}

func (h *Handler) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	user, userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "ClinicOS",
		AccountName: user.Username,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to generate mfa secret", requestID)
		return
	}

	if err := h.Store.SetMFASecret(r.Context(), userID, key.Secret()); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to store mfa secret", requestID)
		return
	}

	api.Success(w, map[string]string{"secret": key.Secret(), "otpauthUrl": key.URL()}, requestID)
}

func (h *Handler) handleMFAEnable(w http.ResponseWriter, r *http.Request) {
	h.toggleMFA(w, r, true)
}

func (h *Handler) handleMFADisable(w http.ResponseWriter, r *http.Request) {
	h.toggleMFA(w, r, false)
}

// toggleMFA flips the factor only after the caller proves possession of
// the current secret.
func (h *Handler) toggleMFA(w http.ResponseWriter, r *http.Request, enable bool) {
	requestID := middleware.GetRequestID(r.Context())

	user, userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var payload mfaCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_payload", "invalid JSON body", requestID)
		return
	}

	if user.MFASecret == "" {
		api.Fail(w, http.StatusBadRequest, "mfa_missing", "mfa setup required", requestID)
		return
	}
	if !totp.Validate(payload.Code, user.MFASecret) {
		api.Fail(w, http.StatusBadRequest, "mfa_invalid", "invalid mfa code", requestID)
		return
	}

	if err := h.Store.SetMFAEnabled(r.Context(), userID, enable); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_update_failed", "failed to update mfa state", requestID)
		return
	}

	status := "disabled"
	if enable {
		status = "enabled"
	}
	api.Success(w, map[string]string{"status": status}, requestID)
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*users.User, uuid.UUID, bool) {
	requestID := middleware.GetRequestID(r.Context())

	claims, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return nil, uuid.Nil, false
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return nil, uuid.Nil, false
	}
	user, err := h.Store.FindByID(r.Context(), userID)
	if err != nil || user == nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return nil, uuid.Nil, false
	}
	return user, userID, true
}
