/*
state.go - View state shared by the web UI

PURPOSE:
  Holds what the UI shows between requests: the loaded shifts, the status
  line, a one-shot notification and the calculator parameters.

MODEL:
  ViewState is an immutable snapshot. Handlers never mutate it in place;
  they call State.Update with a function that returns the next snapshot.
  Readers take Snapshot() and see a consistent value.

NOTIFICATIONS:
  A Notice is shown once. GET /api/state returns it and clears it in the
  same Update, so two readers never both see the same notice.

SEE ALSO:
  - handlers.go: All writers
*/
package api

import (
	"sync"

	"github.com/amauryrb/hwtimesheet/payroll"
)

// NoticeLevel is the severity of a notification.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeError   NoticeLevel = "error"
)

// Notice is a one-shot notification.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// ViewState is one immutable snapshot of the UI state.
type ViewState struct {
	Shifts  []payroll.Shift
	Status  string
	Notice  *Notice
	Params  payroll.Params
	Version uint64
}

// WithStatus returns a copy with the status line and a notification set.
func (v ViewState) WithStatus(level NoticeLevel, message string) ViewState {
	v.Status = message
	v.Notice = &Notice{Level: level, Message: message}
	return v
}

// WithShifts returns a copy holding shifts.
func (v ViewState) WithShifts(shifts []payroll.Shift) ViewState {
	v.Shifts = append([]payroll.Shift(nil), shifts...)
	return v
}

// State guards the current ViewState.
type State struct {
	mu      sync.Mutex
	current ViewState
}

// NewState creates a State with an initial snapshot.
func NewState(initial ViewState) *State {
	return &State{current: initial}
}

// Snapshot returns the current snapshot.
func (s *State) Snapshot() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update replaces the snapshot with fn(current) and returns the new one.
// fn must not block.
func (s *State) Update(fn func(ViewState) ViewState) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(s.current)
	next.Version = s.current.Version + 1
	s.current = next
	return next
}

// TakeNotice returns the snapshot and clears its notification.
func (s *State) TakeNotice() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.current
	if s.current.Notice != nil {
		s.current.Notice = nil
		s.current.Version++
	}
	return snap
}
