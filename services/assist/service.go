package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shoplens/assistant-proxy/services"
	"github.com/shoplens/assistant-proxy/services/providers"
	"github.com/shoplens/assistant-proxy/utils"
	"go.uber.org/zap"
)

// Service is the request-shaping and response-extraction dispatcher. It is
// stateless: every call builds a fresh provider request, performs exactly
// one outbound call, and reshapes the first candidate into the
// client-facing payload.
type Service struct {
	provider providers.Provider
	apiKey   string
	logger   *zap.Logger
}

// NewService creates a new assist service. The credential is threaded in at
// construction time rather than read from the environment mid-request.
func NewService(provider providers.Provider, apiKey string, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		apiKey:   apiKey,
		logger:   logger,
	}
}

// Handle dispatches one envelope. The returned value is the action-specific
// response body (FilterResult, SummarizeResult or SuggestResult).
func (s *Service) Handle(ctx context.Context, env Envelope) (interface{}, error) {
	if s.apiKey == "" {
		s.logger.Error("assist request rejected: provider API key not configured")
		return nil, services.ErrMissingCredential
	}

	exchangeID := uuid.New().String()
	s.logger.Debug("dispatching assist request",
		zap.String("exchange_id", exchangeID),
		zap.String("action", string(env.Action)))

	switch env.Action {
	case ActionFilter:
		return s.handleFilter(ctx, exchangeID, env.Payload)
	case ActionSummarize:
		return s.handleSummarize(ctx, exchangeID, env.Payload)
	case ActionSuggest:
		return s.handleSuggest(ctx, exchangeID, env.Payload)
	default:
		return nil, services.NewDomainError(services.ErrorTypeInvalidAction,
			fmt.Sprintf("unsupported action %q", env.Action), nil)
	}
}

func (s *Service) handleFilter(ctx context.Context, exchangeID string, raw json.RawMessage) (interface{}, error) {
	var payload FilterPayload
	if err := decodePayload(raw, &payload); err != nil {
		return nil, err
	}

	req := &providers.GenerateRequest{
		Contents: buildFilterContents(payload.ChatHistory, payload.UserMessage),
		GenerationConfig: &providers.GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   filterSchema(),
		},
	}

	resp, err := s.generate(ctx, exchangeID, req)
	if err != nil {
		return nil, err
	}

	var classification FilterClassification
	if err := json.Unmarshal([]byte(resp.FirstText()), &classification); err != nil {
		return nil, services.WrapInternal("failed to parse classification", err)
	}

	return FilterResult{
		AIResponseObject: classification,
		ModelChatMessage: confirmationMessage(classification),
	}, nil
}

func (s *Service) handleSummarize(ctx context.Context, exchangeID string, raw json.RawMessage) (interface{}, error) {
	var payload SummarizePayload
	if err := decodePayload(raw, &payload); err != nil {
		return nil, err
	}

	req := &providers.GenerateRequest{
		Contents: []providers.Content{
			providers.NewUserContent(buildSummarizePrompt(payload.Product)),
		},
	}

	resp, err := s.generate(ctx, exchangeID, req)
	if err != nil {
		return nil, err
	}

	return SummarizeResult{Summary: resp.FirstText()}, nil
}

func (s *Service) handleSuggest(ctx context.Context, exchangeID string, raw json.RawMessage) (interface{}, error) {
	var payload SuggestPayload
	if err := decodePayload(raw, &payload); err != nil {
		return nil, err
	}

	req := &providers.GenerateRequest{
		Contents: []providers.Content{
			providers.NewUserContent(buildSuggestPrompt(payload.UserInput, payload.Products)),
		},
		GenerationConfig: &providers.GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   suggestSchema(),
		},
	}

	resp, err := s.generate(ctx, exchangeID, req)
	if err != nil {
		return nil, err
	}

	var rec recommendation
	if err := json.Unmarshal([]byte(resp.FirstText()), &rec); err != nil {
		return nil, services.WrapInternal("failed to parse recommendation", err)
	}

	// Linear scan; an id outside the candidate list simply yields no
	// product, matching the observable contract.
	var result SuggestResult
	for i := range payload.Products {
		if payload.Products[i].ID == rec.RecommendedID {
			result.RecommendedProduct = &payload.Products[i]
			break
		}
	}
	if result.RecommendedProduct == nil {
		s.logger.Warn("recommended id not in candidate list",
			zap.String("exchange_id", exchangeID),
			zap.Int64("recommended_id", rec.RecommendedID))
	}

	return result, nil
}

// generate performs the single outbound call and maps provider failures to
// the domain taxonomy: non-success status or transport/timeout errors are
// upstream failures, anything else is internal.
func (s *Service) generate(ctx context.Context, exchangeID string, req *providers.GenerateRequest) (*providers.GenerateResponse, error) {
	resp, err := s.provider.GenerateContent(ctx, req)
	if err != nil {
		s.logger.Error("provider call failed",
			zap.String("exchange_id", exchangeID),
			zap.String("provider", s.provider.Name()),
			zap.Error(err))

		var provErr *providers.ProviderError
		if errors.As(err, &provErr) {
			switch provErr.Code {
			case providers.ErrCodeUpstreamStatus, providers.ErrCodeHTTP:
				return nil, services.WrapUpstream("upstream request failed", err)
			}
		}
		return nil, services.WrapInternal("provider call failed", err)
	}

	if resp.FirstText() == "" {
		return nil, services.WrapInternal("provider returned no candidates", nil)
	}

	return resp, nil
}

// decodePayload unmarshals and validates an action payload. Failures are
// internal errors: the envelope was syntactically accepted but the payload
// cannot be dispatched.
func decodePayload(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return services.WrapInternal("missing payload", nil)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return services.WrapInternal("malformed payload", err)
	}
	if err := utils.ValidateStruct(dst); err != nil {
		return services.WrapInternal("invalid payload", err)
	}
	return nil
}

// confirmationMessage re-derives the human-readable confirmation sentence
// from the parsed classification.
func confirmationMessage(c FilterClassification) string {
	if len(c.Keywords) == 0 {
		return fmt.Sprintf("Got it. Showing results for %s.", c.Category)
	}
	return fmt.Sprintf("Got it. Showing %s results matching: %s.",
		c.Category, strings.Join(c.Keywords, ", "))
}
