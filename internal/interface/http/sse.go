package http

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/anishxyz/review-digest/internal/domain/summary"
)

// sseEvent is one frame sent to the popup client.
type sseEvent struct {
	Text  string `json:"text"`
	First bool   `json:"first,omitempty"`
}

// streamRenderer forwards deltas to the HTTP response as server-sent events,
// flushing after every delta so the popup renders incrementally.
type streamRenderer struct {
	w       http.ResponseWriter
	flusher http.Flusher

	mu      sync.Mutex
	started bool
}

func newStreamRenderer(w http.ResponseWriter, flusher http.Flusher) *streamRenderer {
	return &streamRenderer{w: w, flusher: flusher}
}

// Render implements summary.Renderer.
func (r *streamRenderer) Render(delta summary.Delta, first bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		r.w.Header().Set("Content-Type", "text/event-stream")
		r.w.Header().Set("Cache-Control", "no-cache")
		r.w.Header().Set("Connection", "keep-alive")
		r.w.WriteHeader(http.StatusOK)
		r.started = true
	}
	return r.writeEventLocked("", sseEvent{Text: delta.Text, First: first})
}

// Started reports whether any delta reached the wire. Errors raised before
// that can still go out as a plain JSON response.
func (r *streamRenderer) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// Finish terminates the stream with a done event, or an error event carrying
// the primary status message.
func (r *streamRenderer) Finish(errMessage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return
	}
	if errMessage != "" {
		_ = r.writeEventLocked("error", sseEvent{Text: errMessage})
		return
	}
	_ = r.writeEventLocked("done", sseEvent{})
}

func (r *streamRenderer) writeEventLocked(event string, payload sseEvent) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if event != "" {
		if _, err := r.w.Write([]byte("event: " + event + "\n")); err != nil {
			return err
		}
	}
	if _, err := r.w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := r.w.Write(body); err != nil {
		return err
	}
	if _, err := r.w.Write([]byte("\n\n")); err != nil {
		return err
	}
	r.flusher.Flush()
	return nil
}

var _ summary.Renderer = (*streamRenderer)(nil)
