package providers

import (
	"context"
	"time"
)

// Provider represents a generative-language provider.
type Provider interface {
	// Name returns the provider name (e.g., "gemini")
	Name() string

	// GenerateContent performs a single content-generation request.
	// Implementations make exactly one outbound call per invocation.
	GenerateContent(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}

// GenerateRequest represents a content-generation request
type GenerateRequest struct {
	// Contents is the ordered sequence of role-tagged message parts
	Contents []Content `json:"contents"`

	// GenerationConfig constrains the output format. Nil for free text.
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Content is a single role-tagged message in the conversation
type Content struct {
	// Role can be "user" or "model"
	Role string `json:"role"`

	// Parts holds the message text fragments
	Parts []Part `json:"parts"`
}

// Part is one text fragment of a message
type Part struct {
	Text string `json:"text"`
}

// GenerationConfig requests schema-constrained JSON output
type GenerationConfig struct {
	ResponseMIMEType string  `json:"response_mime_type,omitempty"`
	ResponseSchema   *Schema `json:"response_schema,omitempty"`
}

// Schema is a JSON-schema descriptor in the provider's OpenAPI subset
type Schema struct {
	Type       string             `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

// GenerateResponse represents a content-generation response
type GenerateResponse struct {
	// Candidates contains the generated options; only the first is consumed
	Candidates []Candidate `json:"candidates"`
}

// Candidate is one generated response option
type Candidate struct {
	Content CandidateContent `json:"content"`
}

// CandidateContent holds the generated message parts
type CandidateContent struct {
	Parts []Part `json:"parts"`
}

// FirstText returns the first candidate's first text part, or "" when the
// response carries no usable candidate.
func (r *GenerateResponse) FirstText() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text
}

// NewUserContent builds a single-part user message
func NewUserContent(text string) Content {
	return Content{Role: "user", Parts: []Part{{Text: text}}}
}

// ProviderConfig holds common configuration for providers
type ProviderConfig struct {
	// APIKey for authentication. Passed as a query parameter, never logged.
	APIKey string

	// BaseURL for the API (optional override)
	BaseURL string

	// Model identifier used to build the endpoint path
	Model string

	// Timeout bounds the outbound call
	Timeout time.Duration
}

// Error codes shared by provider adapters
const (
	ErrCodeMarshal        = "MARSHAL_ERROR"
	ErrCodeRequest        = "REQUEST_ERROR"
	ErrCodeHTTP           = "HTTP_ERROR"
	ErrCodeRead           = "READ_ERROR"
	ErrCodeUpstreamStatus = "UPSTREAM_STATUS"
	ErrCodeUnmarshal      = "UNMARSHAL_ERROR"
)

// ProviderError represents an error from a provider
type ProviderError struct {
	// Provider that generated the error
	Provider string

	// Code is the error code
	Code string

	// Message is the error message
	Message string

	// StatusCode is the HTTP status code (if applicable)
	StatusCode int

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, statusCode int, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}
