package chatgpt

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const defaultBaseURL = "https://api.openai.com/v1"

// ErrStreamUnavailable is returned when the API reports success but the
// response carries no readable body.
var ErrStreamUnavailable = errors.New("completion response has no readable stream")

// Message mirrors the OpenAI chat message structure.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the payload sent to the completion endpoint.
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

// APIError carries the status and best-effort server message of a failed
// completion request.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("completion request failed: status=%d message=%s", e.Status, e.Message)
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Client performs streaming requests against an OpenAI-compatible API.
// The underlying HTTP client carries no overall timeout: long summaries must
// not be severed mid-stream, so callers bound the wait via context.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a completion client. The API key is supplied per call
// because it is re-read from the credential store before every attempt.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger.With("component", "llm.chatgpt"),
	}
}

// CreateChatCompletionStream starts a streaming completion call.
func (c *Client) CreateChatCompletionStream(ctx context.Context, apiKey string, req ChatCompletionRequest) (Stream, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("api key cannot be empty")
	}
	req.Stream = true

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode completion request: %w", err)
	}
	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request completion stream: %w", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	if resp.Body == nil {
		return nil, ErrStreamUnavailable
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 1024), 1<<20)

	return &chatCompletionStream{
		scanner: scanner,
		closer:  resp.Body,
		logger:  c.logger,
	}, nil
}

// decodeAPIError extracts the server message from a non-2xx response body,
// substituting a placeholder when the body does not parse.
func decodeAPIError(resp *http.Response) *APIError {
	message := "unknown error"
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var body errorBody
	if err := json.Unmarshal(payload, &body); err == nil && body.Error.Message != "" {
		message = body.Error.Message
	}
	return &APIError{Status: resp.StatusCode, Message: message}
}

// Stream is a lazy, finite, forward-only sequence of content deltas. It is
// not restartable; the response bytes are consumed once.
type Stream interface {
	// Recv returns the next non-empty content delta, or io.EOF once the
	// server sends the [DONE] sentinel or closes the connection.
	Recv() (string, error)
	// Dropped reports how many malformed frames were skipped so far.
	Dropped() int
	Close() error
}

type chatCompletionStream struct {
	scanner *bufio.Scanner
	closer  io.Closer
	logger  *slog.Logger
	dropped int
}

func (s *chatCompletionStream) Recv() (string, error) {
	for {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				s.Close()
				return "", err
			}
			s.Close()
			return "", io.EOF
		}
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			s.Close()
			return "", io.EOF
		}
		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// One corrupt frame must not abort the stream.
			s.dropped++
			s.logger.Warn("dropping malformed stream frame", "error", err)
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			// Keep-alive and metadata frames are expected.
			continue
		}
		return chunk.Choices[0].Delta.Content, nil
	}
}

func (s *chatCompletionStream) Dropped() int {
	return s.dropped
}

func (s *chatCompletionStream) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
