package summary

import (
	"sync"

	"github.com/google/uuid"
)

// Trigger labels shown on the summarize affordance.
const (
	TriggerLabelIdle    = "Summarize Reviews"
	TriggerLabelRunning = "Summarizing..."
)

// TriggerState mirrors the summarize button: enabled/disabled plus label.
// It is the only mutable state shared between the orchestrator and the UI.
type TriggerState struct {
	Enabled bool   `json:"enabled"`
	Label   string `json:"label"`
}

// Session is the per-popup context for summarization. At most one run may be
// active per session; the trigger is disabled for the whole Running duration
// and restored unconditionally on exit.
type Session struct {
	id string

	mu      sync.Mutex
	running bool
	trigger TriggerState
}

// NewSession creates an idle session.
func NewSession() *Session {
	return &Session{
		id:      uuid.NewString(),
		trigger: TriggerState{Enabled: true, Label: TriggerLabelIdle},
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Trigger returns the current affordance state.
func (s *Session) Trigger() TriggerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trigger
}

// Running reports whether a summarization is in flight.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// begin transitions Idle -> Running, disabling the trigger. It reports false
// when the session is already Running.
func (s *Session) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	s.trigger = TriggerState{Enabled: false, Label: TriggerLabelRunning}
	return true
}

// end transitions back to Idle and restores the trigger. It is called from a
// defer so the affordance is re-enabled on every exit path.
func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.trigger = TriggerState{Enabled: true, Label: TriggerLabelIdle}
}
