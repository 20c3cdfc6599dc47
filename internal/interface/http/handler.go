package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anishxyz/review-digest/internal/domain/credential"
	"github.com/anishxyz/review-digest/internal/domain/page"
	"github.com/anishxyz/review-digest/internal/domain/review"
	"github.com/anishxyz/review-digest/internal/domain/summary"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	reviewSvc  review.Service
	credSvc    credential.Service
	summarySvc summary.Service
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(reviewSvc review.Service, credSvc credential.Service, summarySvc summary.Service, logger *slog.Logger) *Handler {
	return &Handler{
		reviewSvc:  reviewSvc,
		credSvc:    credSvc,
		summarySvc: summarySvc,
		logger:     logger.With("component", "http.handler"),
	}
}

// ClassifyPage resolves the page category and product id for a URL.
func (h *Handler) ClassifyPage(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "url query parameter is required", nil))
		return
	}
	c.JSON(http.StatusOK, page.Classify(rawURL))
}

type extractRequest struct {
	URL string `json:"url" binding:"required"`
}

// ExtractReviews pulls the review set for a product page.
func (h *Handler) ExtractReviews(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	result, err := h.reviewSvc.Extract(c.Request.Context(), req.URL)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// CredentialStatus reports whether an API key is configured, masked.
func (h *Handler) CredentialStatus(c *gin.Context) {
	status, err := h.credSvc.Status(c.Request.Context())
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, status)
}

type credentialRequest struct {
	Value string `json:"value" binding:"required"`
}

// SaveCredential stores the API key.
func (h *Handler) SaveCredential(c *gin.Context) {
	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if err := h.credSvc.Save(c.Request.Context(), req.Value); err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

type summarizeRequest struct {
	URL     string   `json:"url"`
	Reviews []string `json:"reviews"`
}

// SummarizeStream runs one summarization session and re-emits its deltas as
// server-sent events. The review set either arrives inline (the popup already
// extracted it) or is extracted from the given page URL first.
func (h *Handler) SummarizeStream(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	reviews := req.Reviews
	if len(reviews) == 0 && req.URL != "" {
		result, err := h.reviewSvc.Extract(c.Request.Context(), req.URL)
		if err != nil {
			abortWithError(c, fromAppError(err))
			return
		}
		reviews = result.Reviews
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stream_unsupported", "streaming not supported", nil))
		return
	}

	session := summary.NewSession()
	renderer := newStreamRenderer(c.Writer, flusher)

	err := h.summarySvc.Summarize(c.Request.Context(), session, reviews, renderer)
	if err != nil {
		// Precondition failures never touched the stream; send them as a
		// regular JSON error. Stream-phase failures already rendered an
		// inline delta, so only the primary status message remains.
		if !renderer.Started() {
			abortWithError(c, fromAppError(err))
			return
		}
		h.logger.Warn("summary session failed", "session", session.ID(), "error", err)
		renderer.Finish(err.Error())
		return
	}
	renderer.Finish("")
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
