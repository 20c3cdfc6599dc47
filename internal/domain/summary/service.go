package summary

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/anishxyz/review-digest/internal/domain/credential"
	"github.com/anishxyz/review-digest/internal/infra/llm/chatgpt"
	apperrors "github.com/anishxyz/review-digest/pkg/errors"
	"github.com/anishxyz/review-digest/pkg/metrics"
)

// ChatClient is the streaming completion dependency.
type ChatClient interface {
	CreateChatCompletionStream(ctx context.Context, apiKey string, req chatgpt.ChatCompletionRequest) (chatgpt.Stream, error)
}

type service struct {
	cfg    Config
	creds  credential.Service
	client ChatClient
	tokens *metrics.TokenCounter
	logger *slog.Logger
}

// NewService is a wire provider for the summary domain.
func NewService(cfg Config, creds credential.Service, client ChatClient, tokens *metrics.TokenCounter, logger *slog.Logger) Service {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	return &service{
		cfg:    cfg,
		creds:  creds,
		client: client,
		tokens: tokens,
		logger: logger.With("component", "summary.service"),
	}
}

// Summarize runs one session: Idle -> Running -> Idle. Preconditions (review
// set, credential) fail before any network call and before the trigger is
// touched; stream-phase errors are rendered inline and returned. The trigger
// is restored on every exit path.
func (s *service) Summarize(ctx context.Context, session *Session, reviews []string, renderer Renderer) error {
	if len(reviews) == 0 {
		return apperrors.Wrap("no_reviews", "no reviews to summarize", nil)
	}

	if !session.begin() {
		return apperrors.Wrap("session_busy", "a summarization is already running", nil)
	}
	defer session.end()

	// The credential is re-read from the store every attempt and never
	// cached. A missing key exits before any network call.
	apiKey, err := s.creds.Read(ctx)
	if err != nil {
		return err
	}

	if s.cfg.StreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.StreamTimeout)
		defer cancel()
	}

	prompt := strings.Join(reviews, reviewSeparator)
	s.logTokenEstimate(session, prompt)

	stream, err := s.client.CreateChatCompletionStream(ctx, apiKey, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		Messages: []chatgpt.Message{
			{Role: "system", Content: s.cfg.SystemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return s.fail(session, renderer, true, s.classifyRequestError(err))
	}
	defer stream.Close()

	first := true
	for {
		text, recvErr := stream.Recv()
		if recvErr != nil {
			if errors.Is(recvErr, io.EOF) {
				break
			}
			return s.fail(session, renderer, first, apperrors.Wrap("llm_error", "summary stream interrupted", recvErr))
		}
		if err := renderer.Render(Delta{Text: text}, first); err != nil {
			return s.fail(session, renderer, first, apperrors.Wrap("llm_error", "render failed", err))
		}
		first = false
	}

	if dropped := stream.Dropped(); dropped > 0 {
		s.logger.Warn("stream completed with dropped frames", "session", session.ID(), "dropped", dropped)
	}
	s.logger.Info("summary completed", "session", session.ID())
	return nil
}

// fail renders the error inline as an extra delta and returns it so the
// caller can report it on the primary surface as well.
func (s *service) fail(session *Session, renderer Renderer, first bool, err error) error {
	s.logger.Error("summarization failed", "session", session.ID(), "error", err)
	delta := Delta{Text: errorPrefix + err.Error()}
	if renderErr := renderer.Render(delta, first); renderErr != nil {
		s.logger.Error("error delta render failed", "session", session.ID(), "error", renderErr)
	}
	return err
}

func (s *service) classifyRequestError(err error) error {
	var apiErr *chatgpt.APIError
	if errors.As(err, &apiErr) {
		return apperrors.Wrap("api_error", apiErr.Error(), err)
	}
	if errors.Is(err, chatgpt.ErrStreamUnavailable) {
		return apperrors.Wrap("stream_unavailable", "completion succeeded but returned no stream", err)
	}
	return apperrors.Wrap("llm_error", "completion request failed", err)
}

// logTokenEstimate is advisory only: the prompt is never truncated, oversized
// requests are surfaced by the API's own error response.
func (s *service) logTokenEstimate(session *Session, prompt string) {
	if s.tokens == nil {
		return
	}
	estimate := s.tokens.Estimate(s.cfg.SystemPrompt, prompt)
	if estimate.OverBudget {
		s.logger.Warn("prompt exceeds token budget, sending anyway",
			"session", session.ID(), "promptTokens", estimate.PromptTokens, "budget", s.cfg.MaxPromptTokens)
		return
	}
	s.logger.Debug("prompt token estimate", "session", session.ID(), "promptTokens", estimate.PromptTokens)
}
