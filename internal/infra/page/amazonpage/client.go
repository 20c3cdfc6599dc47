package amazonpage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/anishxyz/review-digest/internal/domain/review"
)

const (
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultTimeout   = 15 * time.Second

	// responseLimit caps how much page HTML is read; review listings are
	// well under this.
	responseLimit = 4 << 20
)

// Selectors for review text, primary first. Amazon has shipped both shapes.
var reviewSelectors = []string{
	`div[data-hook="review"] span[data-hook="review-body"]`,
	`span[data-hook="review-body"]`,
}

// Client fetches a product page and pulls review text out of its DOM.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// NewClient builds the page extractor.
func NewClient(userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	if strings.TrimSpace(userAgent) == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		logger:     logger.With("component", "page.amazonpage"),
	}
}

// Extract performs a single fetch-and-parse round trip. Callers treat an
// empty result the same as a failed one and never retry here.
func (c *Client) Extract(ctx context.Context, pageURL string) (review.Extraction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return review.Extraction{}, fmt.Errorf("build page request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return review.Extraction{}, fmt.Errorf("page request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return review.Extraction{}, fmt.Errorf("page request error: status=%d", resp.StatusCode)
	}

	html, err := io.ReadAll(io.LimitReader(resp.Body, responseLimit))
	if err != nil {
		return review.Extraction{}, fmt.Errorf("read page response: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return review.Extraction{}, fmt.Errorf("parse page html: %w", err)
	}

	reviews := collectReviews(doc)
	c.logger.Debug("page extracted", "url", pageURL, "reviews", len(reviews))

	return review.Extraction{Reviews: reviews, RawHTML: html}, nil
}

func collectReviews(doc *goquery.Document) []string {
	for _, selector := range reviewSelectors {
		var reviews []string
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := normalizeWhitespace(sel.Text())
			if text != "" {
				reviews = append(reviews, text)
			}
		})
		if len(reviews) > 0 {
			return reviews
		}
	}
	return nil
}

func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

var _ review.Extractor = (*Client)(nil)
