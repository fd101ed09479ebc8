package assist

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shoplens/assistant-proxy/services/providers"
)

// filterCategories is the closed set the classifier must choose from
var filterCategories = []string{
	"Research & Strategy",
	"Design & Creativity",
	"Engineering & Development",
	"Operations & Logistics",
	"General Inquiry",
}

// filterInstruction is the fixed system instruction for the filter action
func filterInstruction() string {
	var b strings.Builder

	b.WriteString("You are a shopping assistant that classifies a shopper's request.\n\n")
	b.WriteString("Classify the conversation into exactly one of these categories:\n")
	for _, c := range filterCategories {
		b.WriteString(fmt.Sprintf("- %s\n", c))
	}
	b.WriteString("\nAlso extract the keywords that describe what the shopper is looking for.\n")
	b.WriteString("CRITICAL: Respond with strict JSON only. No preamble, no markdown, no backticks.\n")

	return b.String()
}

// buildFilterContents assembles the classification conversation: the fixed
// instruction, the caller-supplied history, then the latest user message.
func buildFilterContents(history []ChatTurn, userMessage string) []providers.Content {
	contents := make([]providers.Content, 0, len(history)+2)
	contents = append(contents, providers.NewUserContent(filterInstruction()))

	for _, turn := range history {
		contents = append(contents, providers.Content{
			Role:  turn.Role,
			Parts: []providers.Part{{Text: turn.Text}},
		})
	}

	contents = append(contents, providers.NewUserContent(userMessage))
	return contents
}

// filterSchema constrains the classifier output to {category, keywords}
func filterSchema() *providers.Schema {
	return &providers.Schema{
		Type: "OBJECT",
		Properties: map[string]*providers.Schema{
			"category": {Type: "STRING"},
			"keywords": {Type: "ARRAY", Items: &providers.Schema{Type: "STRING"}},
		},
		Required: []string{"category", "keywords"},
	}
}

// buildSummarizePrompt interpolates the product fields into a one-shot prompt
func buildSummarizePrompt(p Product) string {
	var b strings.Builder

	b.WriteString("You are a product copywriter for an online store.\n\n")
	b.WriteString("Write a single friendly sentence summarizing this product for a shopper:\n\n")
	b.WriteString(fmt.Sprintf("Name: %s\n", p.Name))
	b.WriteString(fmt.Sprintf("Description: %s\n", p.Description))
	b.WriteString(fmt.Sprintf("Specs: %s\n", p.Specs))
	b.WriteString("\nReturn only the sentence, with no markdown or headers.\n")

	return b.String()
}

// buildSuggestPrompt interpolates the shopper's need and the candidate list.
// Candidates are serialized as id, name and description only.
func buildSuggestPrompt(userInput string, products []CatalogProduct) string {
	catalog, _ := json.Marshal(products)

	var b strings.Builder

	b.WriteString("You are a shopping assistant helping a customer pick one product.\n\n")
	b.WriteString(fmt.Sprintf("The customer says: %q\n\n", userInput))
	b.WriteString("Candidate products:\n")
	b.Write(catalog)
	b.WriteString("\n\nPick the single best-fit product and return its id.\n")
	b.WriteString("CRITICAL: Respond with strict JSON only. No preamble, no markdown, no backticks.\n")

	return b.String()
}

// suggestSchema constrains the output to {recommendedId}
func suggestSchema() *providers.Schema {
	return &providers.Schema{
		Type: "OBJECT",
		Properties: map[string]*providers.Schema{
			"recommendedId": {Type: "INTEGER"},
		},
		Required: []string{"recommendedId"},
	}
}
