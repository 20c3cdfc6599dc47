package summary

import (
	"context"
	"time"
)

// Delta is a unit of partial summarization output. Deltas are
// order-significant: they are appended, never reordered or deduplicated.
type Delta struct {
	Text string `json:"text"`
}

// Renderer receives deltas as they arrive. first is true only for the very
// first delta of a session; renderers use it to clear any previous output so
// every session starts from a blank surface.
type Renderer interface {
	Render(delta Delta, first bool) error
}

// Service drives one summarization session at a time per Session. The
// returned error doubles as the primary status message; stream-phase errors
// are additionally rendered inline before Summarize returns.
type Service interface {
	Summarize(ctx context.Context, session *Session, reviews []string, renderer Renderer) error
}

// Config fixes the model and prompt parameters for every request.
type Config struct {
	Model        string
	Temperature  float32
	SystemPrompt string
	// StreamTimeout bounds the whole request including the stream read.
	// Zero leaves the wait unbounded.
	StreamTimeout   time.Duration
	MaxPromptTokens int
}

// DefaultSystemPrompt constrains output to the Pros / Cons / Summary format
// the popup renders.
const DefaultSystemPrompt = "You are a shopping assistant that summarizes customer reviews. " +
	"Given a set of reviews for one product, respond in plain text using exactly this format:\n" +
	"PROS:\n- <point>\n\nCONS:\n- <point>\n\nSUMMARY:\n<two or three sentences>"

// reviewSeparator joins the review set into one prompt body. No truncation is
// applied; oversized prompts are rejected by the API itself.
const reviewSeparator = "\n\n"

// errorPrefix marks an error rendered inline as a stream delta.
const errorPrefix = "\n\n[error] "
