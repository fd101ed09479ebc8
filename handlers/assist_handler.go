package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shoplens/assistant-proxy/middleware"
	"github.com/shoplens/assistant-proxy/services"
	"github.com/shoplens/assistant-proxy/services/assist"
	"github.com/shoplens/assistant-proxy/utils"
	"go.uber.org/zap"
)

// AssistService defines the interface for the assist dispatcher
type AssistService interface {
	// Handle dispatches one envelope and returns the action-specific body
	Handle(ctx context.Context, env assist.Envelope) (interface{}, error)
}

// AssistHandler handles the assist HTTP endpoint
type AssistHandler struct {
	service AssistService
	logger  *zap.Logger
}

// NewAssistHandler creates a new AssistHandler
func NewAssistHandler(service AssistService, logger *zap.Logger) *AssistHandler {
	return &AssistHandler{
		service: service,
		logger:  logger,
	}
}

// HandleAssist handles POST /api/assist
// Thin handler: decode, dispatch, map errors
func (h *AssistHandler) HandleAssist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	// The router already restricts the route to POST; this guard keeps the
	// contract when the handler is mounted directly.
	if r.Method != http.MethodPost {
		HandleServiceError(w, services.ErrMethodNotAllowed, h.logger)
		return
	}

	var env assist.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, services.WrapInternal("malformed request body", err), h.logger)
		return
	}

	h.logger.Debug("processing assist request",
		zap.String("request_id", requestID),
		zap.String("action", string(env.Action)))

	result, err := h.service.Handle(ctx, env)
	if err != nil {
		h.logger.Error("assist request failed",
			zap.String("request_id", requestID),
			zap.String("action", string(env.Action)),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("assist request completed",
		zap.String("request_id", requestID),
		zap.String("action", string(env.Action)))

	if err := utils.WriteOK(w, result); err != nil {
		h.logger.Error("failed to write response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}
