package summary

import (
	"bytes"
	"html"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
)

// Mode selects how a Surface exposes its accumulated text. It is decided
// once per integration, not per delta.
type Mode string

const (
	// ModePlainText exposes the raw accumulated text; HTML output is escaped.
	ModePlainText Mode = "plainText"
	// ModeSafeMarkup renders the accumulated text as Markdown. Raw HTML in
	// the model output stays escaped: goldmark's default renderer never
	// passes it through, so untrusted output cannot inject markup.
	ModeSafeMarkup Mode = "safeMarkup"
)

// Surface is an in-memory display surface. It appends deltas in arrival
// order and clears itself when a new session renders its first delta, so
// stale output from a previous run never survives into the next one.
type Surface struct {
	mode Mode

	mu      sync.Mutex
	created bool
	visible bool
	buf     strings.Builder
}

// NewSurface builds a hidden, empty surface.
func NewSurface(mode Mode) *Surface {
	if mode == "" {
		mode = ModePlainText
	}
	return &Surface{mode: mode}
}

// Render implements Renderer. An empty-text delta is legal; the orchestrator
// uses one to force the clear side effect without visible content.
func (s *Surface) Render(delta Delta, first bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = true
	if first {
		s.buf.Reset()
		s.visible = true
	}
	s.buf.WriteString(delta.Text)
	return nil
}

// Visible reports whether the surface has been revealed by a first delta.
func (s *Surface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Text returns the accumulated plain text.
func (s *Surface) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// HTML renders the surface for embedding. Plain-text surfaces are escaped
// wholesale; safe-markup surfaces go through goldmark.
func (s *Surface) HTML() (string, error) {
	text := s.Text()
	if s.mode == ModePlainText {
		return html.EscapeString(text), nil
	}
	var out bytes.Buffer
	if err := goldmark.Convert([]byte(text), &out); err != nil {
		return "", err
	}
	return out.String(), nil
}
