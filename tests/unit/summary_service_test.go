package unit

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anishxyz/review-digest/internal/domain/credential"
	"github.com/anishxyz/review-digest/internal/domain/summary"
	"github.com/anishxyz/review-digest/internal/infra/llm/chatgpt"
	apperrors "github.com/anishxyz/review-digest/pkg/errors"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSummaryConfig() summary.Config {
	return summary.Config{
		Model:        "test-model",
		Temperature:  0.2,
		SystemPrompt: "You are a test assistant.",
	}
}

type stubCredentials struct {
	value string
	err   error
	reads int
}

func (s *stubCredentials) Read(context.Context) (string, error) {
	s.reads++
	if s.err != nil {
		return "", s.err
	}
	return s.value, nil
}

func (s *stubCredentials) Save(context.Context, string) error { return nil }

func (s *stubCredentials) Status(context.Context) (credential.Status, error) {
	return credential.Status{}, nil
}

type stubStream struct {
	deltas  []string
	err     error
	idx     int
	dropped int
	closed  bool
}

func (s *stubStream) Recv() (string, error) {
	if s.idx >= len(s.deltas) {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	delta := s.deltas[s.idx]
	s.idx++
	return delta, nil
}

func (s *stubStream) Dropped() int { return s.dropped }

func (s *stubStream) Close() error {
	s.closed = true
	return nil
}

type stubChatClient struct {
	stream      *stubStream
	err         error
	calls       int
	lastKey     string
	lastRequest chatgpt.ChatCompletionRequest
}

func (s *stubChatClient) CreateChatCompletionStream(_ context.Context, apiKey string, req chatgpt.ChatCompletionRequest) (chatgpt.Stream, error) {
	s.calls++
	s.lastKey = apiKey
	s.lastRequest = req
	if s.err != nil {
		return nil, s.err
	}
	return s.stream, nil
}

type recordedDelta struct {
	delta summary.Delta
	first bool
}

type recordingRenderer struct {
	rendered []recordedDelta
}

func (r *recordingRenderer) Render(delta summary.Delta, first bool) error {
	r.rendered = append(r.rendered, recordedDelta{delta: delta, first: first})
	return nil
}

func idleTrigger() summary.TriggerState {
	return summary.TriggerState{Enabled: true, Label: summary.TriggerLabelIdle}
}

func TestSummarizeStreamsDeltasInOrder(t *testing.T) {
	client := &stubChatClient{stream: &stubStream{deltas: []string{"A", "B"}}}
	creds := &stubCredentials{value: "sk-test"}
	svc := summary.NewService(testSummaryConfig(), creds, client, nil, newTestLogger())

	session := summary.NewSession()
	surface := summary.NewSurface(summary.ModePlainText)
	renderer := &recordingRenderer{}

	err := svc.Summarize(context.Background(), session, []string{"good", "bad"}, multiRenderer{surface, renderer})
	require.NoError(t, err)

	require.Equal(t, "AB", surface.Text())
	require.Len(t, renderer.rendered, 2)
	require.True(t, renderer.rendered[0].first)
	require.Equal(t, "A", renderer.rendered[0].delta.Text)
	require.False(t, renderer.rendered[1].first)
	require.Equal(t, "B", renderer.rendered[1].delta.Text)

	require.True(t, client.stream.closed)
	require.Equal(t, "sk-test", client.lastKey)
	require.Equal(t, "good\n\nbad", client.lastRequest.Messages[1].Content)
	require.Equal(t, idleTrigger(), session.Trigger())
}

func TestSummarizeEmptyReviewSetNeverRuns(t *testing.T) {
	client := &stubChatClient{stream: &stubStream{}}
	creds := &stubCredentials{value: "sk-test"}
	svc := summary.NewService(testSummaryConfig(), creds, client, nil, newTestLogger())

	session := summary.NewSession()
	renderer := &recordingRenderer{}

	err := svc.Summarize(context.Background(), session, nil, renderer)
	require.True(t, apperrors.IsCode(err, "no_reviews"))

	require.Zero(t, client.calls)
	require.Zero(t, creds.reads)
	require.Empty(t, renderer.rendered)
	require.Equal(t, idleTrigger(), session.Trigger())
}

func TestSummarizeMissingCredentialShortCircuits(t *testing.T) {
	client := &stubChatClient{stream: &stubStream{}}
	creds := &stubCredentials{err: apperrors.Wrap("missing_credential", "no API key saved", nil)}
	svc := summary.NewService(testSummaryConfig(), creds, client, nil, newTestLogger())

	session := summary.NewSession()
	err := svc.Summarize(context.Background(), session, []string{"one"}, &recordingRenderer{})
	require.True(t, apperrors.IsCode(err, "missing_credential"))

	require.Zero(t, client.calls)
	require.Equal(t, idleTrigger(), session.Trigger())
}

func TestSummarizeAPIErrorRenderedInline(t *testing.T) {
	client := &stubChatClient{err: &chatgpt.APIError{Status: 429, Message: "rate limited"}}
	creds := &stubCredentials{value: "sk-test"}
	svc := summary.NewService(testSummaryConfig(), creds, client, nil, newTestLogger())

	session := summary.NewSession()
	surface := summary.NewSurface(summary.ModePlainText)

	err := svc.Summarize(context.Background(), session, []string{"one"}, surface)
	require.True(t, apperrors.IsCode(err, "api_error"))
	require.Contains(t, err.Error(), "429")
	require.Contains(t, err.Error(), "rate limited")

	require.Contains(t, surface.Text(), "[error]")
	require.Equal(t, idleTrigger(), session.Trigger())
}

func TestSummarizeStreamInterruptionRenderedInline(t *testing.T) {
	client := &stubChatClient{stream: &stubStream{deltas: []string{"partial"}, err: io.ErrUnexpectedEOF}}
	creds := &stubCredentials{value: "sk-test"}
	svc := summary.NewService(testSummaryConfig(), creds, client, nil, newTestLogger())

	session := summary.NewSession()
	surface := summary.NewSurface(summary.ModePlainText)

	err := svc.Summarize(context.Background(), session, []string{"one"}, surface)
	require.True(t, apperrors.IsCode(err, "llm_error"))

	require.Contains(t, surface.Text(), "partial")
	require.Contains(t, surface.Text(), "[error]")
	require.True(t, client.stream.closed)
	require.Equal(t, idleTrigger(), session.Trigger())
}

func TestSummarizeStreamUnavailable(t *testing.T) {
	client := &stubChatClient{err: chatgpt.ErrStreamUnavailable}
	creds := &stubCredentials{value: "sk-test"}
	svc := summary.NewService(testSummaryConfig(), creds, client, nil, newTestLogger())

	session := summary.NewSession()
	err := svc.Summarize(context.Background(), session, []string{"one"}, summary.NewSurface(summary.ModePlainText))
	require.True(t, apperrors.IsCode(err, "stream_unavailable"))
	require.Equal(t, idleTrigger(), session.Trigger())
}

func TestSummarizeRefusesConcurrentRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	client := &blockingChatClient{started: started, release: release}
	creds := &stubCredentials{value: "sk-test"}
	svc := summary.NewService(testSummaryConfig(), creds, client, nil, newTestLogger())

	session := summary.NewSession()
	done := make(chan error, 1)
	go func() {
		done <- svc.Summarize(context.Background(), session, []string{"one"}, &recordingRenderer{})
	}()

	<-started
	require.False(t, session.Trigger().Enabled)
	require.Equal(t, summary.TriggerLabelRunning, session.Trigger().Label)

	err := svc.Summarize(context.Background(), session, []string{"one"}, &recordingRenderer{})
	require.True(t, apperrors.IsCode(err, "session_busy"))

	close(release)
	require.NoError(t, <-done)
	require.Equal(t, idleTrigger(), session.Trigger())
}

type blockingChatClient struct {
	started chan struct{}
	release chan struct{}
	once    bool
}

func (b *blockingChatClient) CreateChatCompletionStream(_ context.Context, _ string, _ chatgpt.ChatCompletionRequest) (chatgpt.Stream, error) {
	if !b.once {
		b.once = true
		close(b.started)
		<-b.release
	}
	return &stubStream{deltas: []string{"done"}}, nil
}

type multiRenderer []summary.Renderer

func (m multiRenderer) Render(delta summary.Delta, first bool) error {
	for _, r := range m {
		if err := r.Render(delta, first); err != nil {
			return err
		}
	}
	return nil
}
