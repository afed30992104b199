package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"contact-service/internal/model"
	"contact-service/internal/notifier"
	"contact-service/internal/service"
	"contact-service/internal/util"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ContactHandler handles the public contact-form endpoints
type ContactHandler struct {
	contactService *service.ContactService
	logger         *zap.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService *service.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger,
	}
}

// RegisterRoutes registers the public routes
func (h *ContactHandler) RegisterRoutes(router chi.Router) {
	router.Post("/contact", h.SubmitContact)
	router.Get("/limit-status", h.LimitStatus)
}

// SubmitContact handles a contact-form submission. Detected spam and bot
// traffic receives the same response as a genuine success.
func (h *ContactHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	var sub model.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse(err, "Invalid request body"))
		return
	}

	ip := clientIP(r)
	err := h.contactService.Submit(ctx, &sub, ip)
	if err != nil {
		h.respondSubmitError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(nil, "Email sent successfully"))
	h.logger.Info("Contact submission handled",
		util.String("ip", ip),
		util.Duration("duration", time.Since(startTime)),
	)
}

func (h *ContactHandler) respondSubmitError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	var providerErr *notifier.ProviderError

	switch {
	case errors.As(err, &validationErr):
		respondWithJSON(w, http.StatusBadRequest, errorResponse(err, "Validation failed"))
	case errors.Is(err, service.ErrRateLimited):
		resp := errorResponse(err, "Too many requests. Please try again later.")
		resp.Code = CodeRateLimited
		respondWithJSON(w, http.StatusTooManyRequests, resp)
	case errors.Is(err, service.ErrDailyLimit):
		resp := errorResponse(err, "Daily email limit reached. Please try again tomorrow.")
		resp.Code = CodeDailyLimitReached
		respondWithJSON(w, http.StatusTooManyRequests, resp)
	case errors.Is(err, notifier.ErrNotConfigured):
		respondWithJSON(w, http.StatusInternalServerError, errorResponse(err, "Email service not configured"))
	case errors.As(err, &providerErr):
		// Surface the provider status but not its response body
		msg := fmt.Sprintf("Email service error: %d", providerErr.StatusCode)
		respondWithJSON(w, http.StatusInternalServerError, Response{Success: false, Error: msg, Message: "Failed to send email"})
	default:
		respondWithJSON(w, http.StatusInternalServerError, errorResponse(err, "Failed to send email"))
	}
}

// LimitStatus reports the current daily count so the page can disable the
// form before the user types anything.
func (h *ContactHandler) LimitStatus(w http.ResponseWriter, r *http.Request) {
	status := h.contactService.LimitStatus()
	respondWithJSON(w, http.StatusOK, successResponse(status, ""))
}

// clientIP returns the requester's IP. middleware.RealIP has already folded
// X-Forwarded-For / X-Real-IP into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
