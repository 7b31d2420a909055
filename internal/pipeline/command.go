package pipeline

import (
	"context"
	"time"

	"agencydesk/internal/models"
)

type snapshot struct {
	stage     models.Stage
	updatedAt time.Time
}

// stageChange is one optimistic move: apply, confirm, and revert if the
// confirmation fails.
type stageChange struct {
	ctx     context.Context
	dealID  string
	from    snapshot
	to      models.Stage
	at      time.Time
	gen     uint64
	next    *stageChange // later move of the same deal, if queued
	confirm *Confirmation
	// wonPending is set when an earlier confirmed move into won deferred
	// its announcement to this one.
	wonPending bool
}

func (c *stageChange) apply(d *models.Deal) {
	d.Stage = c.to
	d.UpdatedAt = c.at
}

func (c *stageChange) revert(d *models.Deal) {
	d.Stage = c.from.stage
	d.UpdatedAt = c.from.updatedAt
}

// Confirmation tracks the store round-trip of one move.
type Confirmation struct {
	done chan struct{}
	err  error
}

func newConfirmation() *Confirmation {
	return &Confirmation{done: make(chan struct{})}
}

func (c *Confirmation) finish(err error) {
	c.err = err
	close(c.done)
}

// Done is closed once the store answered.
func (c *Confirmation) Done() <-chan struct{} { return c.done }

// Err is nil on success, a *TransitionError otherwise. Only meaningful
// after Done is closed.
func (c *Confirmation) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until the confirmation finished or ctx is done.
func (c *Confirmation) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
