package pipeline

import (
	"fmt"

	"agencydesk/internal/models"
)

type ChangeKind string

const (
	ChangeLoaded   ChangeKind = "loaded"
	ChangeMoved    ChangeKind = "moved"
	ChangeReverted ChangeKind = "reverted"
)

// Change describes a modification of the stage-partitioned view.
type Change struct {
	Kind   ChangeKind   `json:"kind"`
	DealID string       `json:"deal_id,omitempty"`
	From   models.Stage `json:"from,omitempty"`
	To     models.Stage `json:"to,omitempty"`
}

// TransitionError is raised when the store rejected a move. Reverted
// reports whether the card was put back to From. It stays false when a
// later queued move of the same deal took over the rollback point, or the
// board was reloaded meanwhile.
type TransitionError struct {
	DealID   string
	From     models.Stage
	To       models.Stage
	Message  string
	Reverted bool
	Err      error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("move deal %s %s -> %s: %v", e.DealID, e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

// Listener receives board notifications. Calls are made outside the board
// lock, from the goroutine that caused the change.
type Listener interface {
	BoardChanged(Change)
	DealWon(models.Deal)
	TransitionFailed(*TransitionError)
}

// ListenerFuncs adapts plain functions to Listener. Nil funcs are skipped.
type ListenerFuncs struct {
	OnChange func(Change)
	OnWon    func(models.Deal)
	OnFailed func(*TransitionError)
}

func (f ListenerFuncs) BoardChanged(c Change) {
	if f.OnChange != nil {
		f.OnChange(c)
	}
}

func (f ListenerFuncs) DealWon(d models.Deal) {
	if f.OnWon != nil {
		f.OnWon(d)
	}
}

func (f ListenerFuncs) TransitionFailed(e *TransitionError) {
	if f.OnFailed != nil {
		f.OnFailed(e)
	}
}

// Multi fans a notification out to several listeners in order.
type Multi []Listener

func (m Multi) BoardChanged(c Change) {
	for _, l := range m {
		l.BoardChanged(c)
	}
}

func (m Multi) DealWon(d models.Deal) {
	for _, l := range m {
		l.DealWon(d)
	}
}

func (m Multi) TransitionFailed(e *TransitionError) {
	for _, l := range m {
		l.TransitionFailed(e)
	}
}
