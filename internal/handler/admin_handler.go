package handler

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"contact-service/internal/notifier"
	"contact-service/internal/service"
	"contact-service/internal/util"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminHandler serves the password-gated operator endpoints. The gate is a
// fixed shared secret passed as a query parameter; there is no session or
// token layer in front of it.
type AdminHandler struct {
	contactService *service.ContactService
	password       string
	logger         *zap.Logger
}

func NewAdminHandler(contactService *service.ContactService, password string, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		contactService: contactService,
		password:       password,
		logger:         logger,
	}
}

// RegisterRoutes registers the admin routes
func (h *AdminHandler) RegisterRoutes(router chi.Router) {
	router.Get("/spam-log", h.GetSpamLog)
	router.Post("/spam-log", h.ModifySpamLog)
	router.Get("/test-email", h.SendTestEmail)
}

// GetSpamLog returns totals, the most recent attempts, the full list and
// today's breakdown.
func (h *AdminHandler) GetSpamLog(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		h.respondUnauthorized(w, r)
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(h.contactService.SpamLogReport(), ""))
}

type spamLogAction struct {
	Action string `json:"action"`
}

// ModifySpamLog currently supports one action: clearing the log.
func (h *AdminHandler) ModifySpamLog(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		h.respondUnauthorized(w, r)
		return
	}

	var req spamLogAction
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse(err, "Invalid request body"))
		return
	}

	if req.Action != "clear" {
		err := fmt.Errorf("unknown action %q", req.Action)
		respondWithJSON(w, http.StatusBadRequest, errorResponse(err, "Invalid action"))
		return
	}

	h.contactService.ClearSpamLog()
	respondWithJSON(w, http.StatusOK, successResponse(nil, "Logs cleared"))
}

// SendTestEmail dispatches a diagnostic message through the provider.
func (h *AdminHandler) SendTestEmail(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		h.respondUnauthorized(w, r)
		return
	}

	if err := h.contactService.SendTestEmail(r.Context()); err != nil {
		var providerErr *notifier.ProviderError
		switch {
		case errors.Is(err, notifier.ErrNotConfigured):
			respondWithJSON(w, http.StatusInternalServerError, errorResponse(err, "Email service not configured"))
		case errors.As(err, &providerErr):
			msg := fmt.Sprintf("Email service error: %d", providerErr.StatusCode)
			respondWithJSON(w, http.StatusInternalServerError, Response{Success: false, Error: msg, Message: "Test email failed"})
		default:
			respondWithJSON(w, http.StatusInternalServerError, errorResponse(err, "Test email failed"))
		}
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(nil, "Test email sent successfully"))
}

// authorized compares the password query parameter against the configured
// secret. An empty configured secret fails closed.
func (h *AdminHandler) authorized(r *http.Request) bool {
	if h.password == "" {
		return false
	}
	supplied := r.URL.Query().Get("password")
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(h.password)) == 1
}

func (h *AdminHandler) respondUnauthorized(w http.ResponseWriter, r *http.Request) {
	h.logger.Warn("Unauthorized admin request",
		util.String("path", r.URL.Path),
		util.String("remote_addr", r.RemoteAddr),
	)
	respondWithJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Unauthorized"})
}
