package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anishxyz/review-digest/internal/domain/credential"
	"github.com/anishxyz/review-digest/internal/domain/review"
	"github.com/anishxyz/review-digest/internal/domain/summary"
	"github.com/anishxyz/review-digest/internal/infra/config"
	apperrors "github.com/anishxyz/review-digest/pkg/errors"
)

type stubReviewService struct {
	extractFn func(ctx context.Context, pageURL string) (review.Result, error)
}

func (s *stubReviewService) Extract(ctx context.Context, pageURL string) (review.Result, error) {
	if s.extractFn == nil {
		return review.Result{}, nil
	}
	return s.extractFn(ctx, pageURL)
}

type stubCredentialService struct {
	status credential.Status
	saveFn func(value string) error
}

func (s *stubCredentialService) Read(context.Context) (string, error) { return "sk-test", nil }

func (s *stubCredentialService) Save(_ context.Context, value string) error {
	if s.saveFn == nil {
		return nil
	}
	return s.saveFn(value)
}

func (s *stubCredentialService) Status(context.Context) (credential.Status, error) {
	return s.status, nil
}

type stubSummaryService struct {
	summarizeFn func(ctx context.Context, session *summary.Session, reviews []string, renderer summary.Renderer) error
}

func (s *stubSummaryService) Summarize(ctx context.Context, session *summary.Session, reviews []string, renderer summary.Renderer) error {
	if s.summarizeFn == nil {
		return nil
	}
	return s.summarizeFn(ctx, session, reviews, renderer)
}

func newRouterUnderTest(t *testing.T, reviews review.Service, creds credential.Service, summaries summary.Service) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{}
	handler := NewHandler(reviews, creds, summaries, logger)
	return NewRouter(cfg, handler).Handler
}

func performRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeErrorBody(t *testing.T, payload []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(payload, &body))
	return body
}

func TestRouter_Classification(t *testing.T) {
	router := newRouterUnderTest(t, &stubReviewService{}, &stubCredentialService{}, &stubSummaryService{})

	recorder := performRequest(router, http.MethodGet, "/api/v1/pages/classification?url=https://www.amazon.com/product-reviews/B01ABCDE23", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var info struct {
		Category  string `json:"category"`
		ProductID string `json:"productId"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &info))
	require.Equal(t, "review", info.Category)
	require.Equal(t, "B01ABCDE23", info.ProductID)
}

func TestRouter_ClassificationRequiresURL(t *testing.T) {
	router := newRouterUnderTest(t, &stubReviewService{}, &stubCredentialService{}, &stubSummaryService{})

	recorder := performRequest(router, http.MethodGet, "/api/v1/pages/classification", "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_ExtractReviews(t *testing.T) {
	svc := &stubReviewService{
		extractFn: func(_ context.Context, pageURL string) (review.Result, error) {
			require.Equal(t, "https://www.amazon.com/product-reviews/B01ABCDE23", pageURL)
			return review.Result{ProductID: "B01ABCDE23", Reviews: []string{"one"}, Preview: []string{"one"}}, nil
		},
	}
	router := newRouterUnderTest(t, svc, &stubCredentialService{}, &stubSummaryService{})

	recorder := performRequest(router, http.MethodPost, "/api/v1/reviews/extractions", `{"url":"https://www.amazon.com/product-reviews/B01ABCDE23"}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var result review.Result
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.Equal(t, "B01ABCDE23", result.ProductID)
}

func TestRouter_ExtractFailureMapsToBadGateway(t *testing.T) {
	svc := &stubReviewService{
		extractFn: func(context.Context, string) (review.Result, error) {
			return review.Result{}, apperrors.Wrap("extraction_failed", "could not retrieve reviews", nil)
		},
	}
	router := newRouterUnderTest(t, svc, &stubCredentialService{}, &stubSummaryService{})

	recorder := performRequest(router, http.MethodPost, "/api/v1/reviews/extractions", `{"url":"https://example.com"}`)
	require.Equal(t, http.StatusBadGateway, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "extraction_failed", errBody["error"]["code"])
}

func TestRouter_CredentialStatusAndSave(t *testing.T) {
	var saved string
	creds := &stubCredentialService{
		status: credential.Status{Configured: true, Masked: "sk-l...3456"},
		saveFn: func(value string) error {
			saved = value
			return nil
		},
	}
	router := newRouterUnderTest(t, &stubReviewService{}, creds, &stubSummaryService{})

	recorder := performRequest(router, http.MethodGet, "/api/v1/credential", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "sk-l...3456")

	recorder = performRequest(router, http.MethodPut, "/api/v1/credential", `{"value":"sk-new"}`)
	require.Equal(t, http.StatusNoContent, recorder.Code)
	require.Equal(t, "sk-new", saved)
}

func TestRouter_SummarizeStreamEmitsDeltas(t *testing.T) {
	svc := &stubSummaryService{
		summarizeFn: func(_ context.Context, _ *summary.Session, reviews []string, renderer summary.Renderer) error {
			require.Equal(t, []string{"good", "bad"}, reviews)
			require.NoError(t, renderer.Render(summary.Delta{Text: "A"}, true))
			require.NoError(t, renderer.Render(summary.Delta{Text: "B"}, false))
			return nil
		},
	}
	router := newRouterUnderTest(t, &stubReviewService{}, &stubCredentialService{}, svc)

	recorder := performRequest(router, http.MethodPost, "/api/v1/summaries/stream", `{"reviews":["good","bad"]}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "text/event-stream", recorder.Header().Get("Content-Type"))

	body := recorder.Body.String()
	require.Contains(t, body, `data: {"text":"A","first":true}`)
	require.Contains(t, body, `data: {"text":"B"}`)
	require.Contains(t, body, "event: done")
	require.Less(t, strings.Index(body, `"A"`), strings.Index(body, `"B"`))
}

func TestRouter_SummarizeStreamNoReviewsIsJSONError(t *testing.T) {
	svc := &stubSummaryService{
		summarizeFn: func(_ context.Context, _ *summary.Session, reviews []string, _ summary.Renderer) error {
			require.Empty(t, reviews)
			return apperrors.Wrap("no_reviews", "no reviews to summarize", nil)
		},
	}
	router := newRouterUnderTest(t, &stubReviewService{}, &stubCredentialService{}, svc)

	recorder := performRequest(router, http.MethodPost, "/api/v1/summaries/stream", `{"reviews":[]}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "no_reviews", errBody["error"]["code"])
}

func TestRouter_SummarizeStreamErrorAfterFirstDelta(t *testing.T) {
	svc := &stubSummaryService{
		summarizeFn: func(_ context.Context, _ *summary.Session, _ []string, renderer summary.Renderer) error {
			require.NoError(t, renderer.Render(summary.Delta{Text: "partial"}, true))
			return apperrors.Wrap("api_error", "completion request failed", nil)
		},
	}
	router := newRouterUnderTest(t, &stubReviewService{}, &stubCredentialService{}, svc)

	recorder := performRequest(router, http.MethodPost, "/api/v1/summaries/stream", `{"reviews":["one"]}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := recorder.Body.String()
	require.Contains(t, body, `"partial"`)
	require.Contains(t, body, "event: error")
	require.Contains(t, body, "completion request failed")
}
