package assist

import "encoding/json"

// Action selects which prompt-shaping branch the dispatcher runs
type Action string

const (
	ActionFilter    Action = "filter"
	ActionSummarize Action = "summarize"
	ActionSuggest   Action = "suggest"
)

// Envelope is the inbound request body: a discriminator plus an
// action-specific payload decoded lazily by the dispatcher.
type Envelope struct {
	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// ChatTurn is one prior turn of the shopper conversation
type ChatTurn struct {
	// Role can be "user" or "model"
	Role string `json:"role" validate:"required,oneof=user model"`
	Text string `json:"text" validate:"required"`
}

// FilterPayload carries the conversation to classify
type FilterPayload struct {
	ChatHistory []ChatTurn `json:"chatHistory" validate:"dive"`
	UserMessage string     `json:"userMessage" validate:"required"`
}

// Product is the catalog item to summarize
type Product struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Specs       string `json:"specs"`
}

// SummarizePayload carries the product to summarize
type SummarizePayload struct {
	Product Product `json:"product" validate:"required"`
}

// CatalogProduct is a candidate item for the suggest action. Only these
// three fields are serialized into the prompt.
type CatalogProduct struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SuggestPayload carries the shopper's stated need and the candidate list
type SuggestPayload struct {
	UserInput string           `json:"userInput" validate:"required"`
	Products  []CatalogProduct `json:"products" validate:"required,min=1"`
}

// FilterClassification is the schema-constrained filter result
type FilterClassification struct {
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

// FilterResult is the client-facing filter response
type FilterResult struct {
	AIResponseObject FilterClassification `json:"aiResponseObject"`
	ModelChatMessage string               `json:"modelChatMessage"`
}

// SummarizeResult is the client-facing summarize response
type SummarizeResult struct {
	Summary string `json:"summary"`
}

// recommendation is the schema-constrained suggest result
type recommendation struct {
	RecommendedID int64 `json:"recommendedId"`
}

// SuggestResult is the client-facing suggest response. RecommendedProduct
// is absent when the model names an id outside the candidate list; that is
// the observable contract, not an error.
type SuggestResult struct {
	RecommendedProduct *CatalogProduct `json:"recommendedProduct,omitempty"`
}
