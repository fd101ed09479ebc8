package handlers

import (
	"errors"
	"net/http"

	"github.com/shoplens/assistant-proxy/services"
	"github.com/shoplens/assistant-proxy/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses. The assist
// endpoint only ever emits 200, 400, 405 and 500: upstream failures and
// misconfiguration collapse to 500 with a generic message, and provider
// error bodies never reach the caller.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	switch {
	case services.IsMethodNotAllowedError(err):
		if err := utils.WriteMethodNotAllowed(w, "Only POST is supported"); err != nil {
			logger.Error("failed to write method not allowed response", zap.Error(err))
		}

	case services.IsInvalidActionError(err):
		if err := utils.WriteBadRequest(w, errorMessage(err), nil); err != nil {
			logger.Error("failed to write bad request response", zap.Error(err))
		}

	case services.IsMissingCredentialError(err):
		logger.Error("provider credential missing", zap.Error(err))
		if err := utils.WriteInternalServerError(w, "Server is misconfigured"); err != nil {
			logger.Error("failed to write internal error response", zap.Error(err))
		}

	case services.IsUpstreamError(err):
		// Raw provider detail was already logged at the adapter.
		if err := utils.WriteInternalServerError(w, "Upstream request failed"); err != nil {
			logger.Error("failed to write internal error response", zap.Error(err))
		}

	case services.IsInternalError(err):
		logger.Error("internal server error", zap.Error(err))
		if err := utils.WriteInternalServerError(w, errorMessage(err)); err != nil {
			logger.Error("failed to write internal error response", zap.Error(err))
		}

	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		if err := utils.WriteInternalServerError(w, "An unexpected error occurred"); err != nil {
			logger.Error("failed to write internal error response", zap.Error(err))
		}
	}
}

// errorMessage extracts the short caller-facing message of a domain error,
// dropping the wrapped cause.
func errorMessage(err error) string {
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}
