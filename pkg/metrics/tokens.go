package metrics

import (
	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// TokenEstimate reports the best-effort prompt size for a completion request.
type TokenEstimate struct {
	PromptTokens int  `json:"promptTokens"`
	OverBudget   bool `json:"overBudget"`
}

// TokenCounter estimates prompt token counts for a fixed model.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
	budget   int
}

// NewTokenCounter resolves the tokenizer for the configured model, falling back
// to cl100k_base for models tiktoken does not know about.
func NewTokenCounter(model string, budget int) (*TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, err
		}
	}
	return &TokenCounter{encoding: enc, budget: budget}, nil
}

// Estimate counts tokens in the given texts. The count is advisory only; the
// request is sent untruncated regardless of the budget.
func (c *TokenCounter) Estimate(texts ...string) TokenEstimate {
	total := 0
	for _, text := range texts {
		total += len(c.encoding.Encode(text, nil, nil))
	}
	return TokenEstimate{
		PromptTokens: total,
		OverBudget:   c.budget > 0 && total > c.budget,
	}
}
