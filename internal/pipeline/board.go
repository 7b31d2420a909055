// Package pipeline holds the stage board: the per-session, in-memory deal
// list partitioned into stage columns. Moves are applied optimistically and
// confirmed against the store in the background; a rejected confirmation
// puts the deal back where it was.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"agencydesk/internal/models"
)

var (
	ErrDealNotFound = errors.New("deal not on board")
	ErrInvalidStage = errors.New("invalid target stage")
)

// Updater persists a stage change. It is the only write the board makes.
type Updater interface {
	UpdateStage(ctx context.Context, id string, stage models.Stage, at time.Time) error
}

type Column struct {
	Stage models.Stage    `json:"stage"`
	Title string          `json:"title"`
	Deals []models.Deal   `json:"deals"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type Option func(*Board)

func WithListener(l Listener) Option {
	return func(b *Board) {
		if l != nil {
			b.listener = l
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(b *Board) {
		if l != nil {
			b.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		if now != nil {
			b.now = now
		}
	}
}

// WithTimeout bounds each store confirmation. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(b *Board) { b.timeout = d }
}

type Board struct {
	store    Updater
	listener Listener
	log      *zap.Logger
	now      func() time.Time
	timeout  time.Duration

	mu       sync.Mutex
	deals    []models.Deal
	index    map[string]int
	dragging map[string]models.Deal
	gen      uint64

	// confirmations run one at a time, in gesture order, so the store sees
	// writes in the same order the board applied them.
	queue    []*stageChange
	latest   map[string]*stageChange
	draining bool
	inflight sync.WaitGroup
}

func NewBoard(store Updater, opts ...Option) *Board {
	b := &Board{
		store:    store,
		listener: ListenerFuncs{},
		log:      zap.NewNop(),
		now:      time.Now,
		index:    map[string]int{},
		dragging: map[string]models.Deal{},
		latest:   map[string]*stageChange{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// LoadInitial replaces the board contents. Confirmations still in flight
// will not roll back into the new data.
func (b *Board) LoadInitial(deals []models.Deal) {
	b.mu.Lock()
	b.deals = append([]models.Deal(nil), deals...)
	b.index = make(map[string]int, len(b.deals))
	for i, d := range b.deals {
		b.index[d.ID] = i
	}
	b.dragging = map[string]models.Deal{}
	b.latest = map[string]*stageChange{}
	b.gen++
	n := len(b.deals)
	b.mu.Unlock()

	b.log.Debug("[pipeline][load]", zap.Int("deals", n))
	b.listener.BoardChanged(Change{Kind: ChangeLoaded})
}

// BeginDrag marks the deal as being dragged and keeps a copy of it for the
// drag preview.
func (b *Board) BeginDrag(dealID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.index[dealID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDealNotFound, dealID)
	}
	b.dragging[dealID] = b.deals[i]
	return nil
}

// Dragging returns the drag-start copy of a deal being dragged.
func (b *Board) Dragging(dealID string) (models.Deal, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.dragging[dealID]
	return d, ok
}

// CancelDrag handles a drop outside any column. Stages are never touched.
func (b *Board) CancelDrag(dealID string) {
	b.mu.Lock()
	delete(b.dragging, dealID)
	b.mu.Unlock()
}

// EndDrag drops a deal on a column. A drop on its own column is a no-op and
// returns a nil Confirmation. Otherwise the move is visible on the board
// before EndDrag returns and the returned Confirmation completes once the
// store accepted or rejected it.
func (b *Board) EndDrag(ctx context.Context, dealID string, target models.Stage) (*Confirmation, error) {
	if !target.Valid() {
		b.CancelDrag(dealID)
		return nil, fmt.Errorf("%w: %q", ErrInvalidStage, target)
	}

	b.mu.Lock()
	delete(b.dragging, dealID)
	i, ok := b.index[dealID]
	if !ok {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDealNotFound, dealID)
	}
	deal := &b.deals[i]
	if deal.Stage == target || !CanTransition(deal.Stage, target) {
		b.mu.Unlock()
		return nil, nil
	}

	// The rollback point is the state right before this write, not the
	// drag-start copy: an earlier rollback may have landed in between.
	cmd := &stageChange{
		ctx:     ctx,
		dealID:  dealID,
		from:    snapshot{stage: deal.Stage, updatedAt: deal.UpdatedAt},
		to:      target,
		at:      b.now(),
		gen:     b.gen,
		confirm: newConfirmation(),
	}
	cmd.apply(deal)
	if prev := b.latest[dealID]; prev != nil {
		prev.next = cmd
	}
	b.latest[dealID] = cmd
	b.enqueueLocked(cmd)
	b.mu.Unlock()

	b.log.Info("[pipeline][move] optimistic",
		zap.String("deal_id", dealID),
		zap.String("from", string(cmd.from.stage)),
		zap.String("to", string(target)))
	b.listener.BoardChanged(Change{Kind: ChangeMoved, DealID: dealID, From: cmd.from.stage, To: target})
	return cmd.confirm, nil
}

func (b *Board) enqueueLocked(cmd *stageChange) {
	b.queue = append(b.queue, cmd)
	if b.draining {
		return
	}
	b.draining = true
	b.inflight.Add(1)
	go b.drain()
}

func (b *Board) drain() {
	defer b.inflight.Done()
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.draining = false
			b.mu.Unlock()
			return
		}
		cmd := b.queue[0]
		b.queue[0] = nil
		b.queue = b.queue[1:]
		b.mu.Unlock()

		b.run(cmd)
	}
}

func (b *Board) run(cmd *stageChange) {
	ctx := cmd.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	if err := b.store.UpdateStage(ctx, cmd.dealID, cmd.to, cmd.at); err != nil {
		terr := b.compensate(cmd, err)
		cmd.confirm.finish(terr)
		return
	}

	won, isWon := b.settle(cmd)
	b.log.Info("[pipeline][move] confirmed",
		zap.String("deal_id", cmd.dealID),
		zap.String("to", string(cmd.to)))
	if isWon {
		b.listener.DealWon(won)
	}
	cmd.confirm.finish(nil)
}

// settle unlinks a confirmed command and returns the won snapshot if the
// move was into won.
func (b *Board) settle(cmd *stageChange) (models.Deal, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.latest[cmd.dealID] == cmd {
		delete(b.latest, cmd.dealID)
	}
	if cmd.to != models.StageWon {
		return models.Deal{}, false
	}
	// A later queued move of the same deal decides whether the deal stays
	// won. It announces the win itself when it also lands in won, and
	// compensate announces it when that move is rejected back into won.
	if cmd.next != nil && cmd.gen == b.gen {
		cmd.next.wonPending = true
		return models.Deal{}, false
	}
	var won models.Deal
	if i, ok := b.index[cmd.dealID]; ok && cmd.gen == b.gen {
		won = b.deals[i]
	} else {
		won = models.Deal{ID: cmd.dealID}
	}
	won.Stage = models.StageWon
	won.UpdatedAt = cmd.at
	return won, true
}

// compensate undoes a rejected move. If a later move of the same deal is
// still queued, that move inherits this one's rollback point instead,
// because this write never reached the store.
func (b *Board) compensate(cmd *stageChange, cause error) *TransitionError {
	terr := &TransitionError{
		DealID: cmd.dealID,
		From:   cmd.from.stage,
		To:     cmd.to,
		Err:    cause,
	}

	b.mu.Lock()
	var (
		won      models.Deal
		announce bool
	)
	title := cmd.dealID
	i, found := b.index[cmd.dealID]
	if found && cmd.gen == b.gen {
		title = b.deals[i].DisplayName()
	}
	switch {
	case cmd.next != nil:
		cmd.next.from = cmd.from
		cmd.next.wonPending = cmd.wonPending
	case cmd.gen == b.gen:
		delete(b.latest, cmd.dealID)
		if found {
			cmd.revert(&b.deals[i])
			terr.Reverted = true
			if cmd.wonPending && cmd.from.stage == models.StageWon {
				won, announce = b.deals[i], true
			}
		}
	}
	b.mu.Unlock()

	if terr.Reverted {
		terr.Message = fmt.Sprintf("Could not move %q to %s. The card went back to %s.",
			title, cmd.to.Title(), cmd.from.stage.Title())
	} else {
		terr.Message = fmt.Sprintf("Could not move %q to %s.", title, cmd.to.Title())
	}
	b.log.Error("[pipeline][move] rejected by store",
		zap.String("deal_id", cmd.dealID),
		zap.String("from", string(cmd.from.stage)),
		zap.String("to", string(cmd.to)),
		zap.Bool("reverted", terr.Reverted),
		zap.Error(cause))

	if terr.Reverted {
		b.listener.BoardChanged(Change{Kind: ChangeReverted, DealID: cmd.dealID, From: cmd.to, To: cmd.from.stage})
	}
	b.listener.TransitionFailed(terr)
	if announce {
		b.listener.DealWon(won)
	}
	return terr
}

// Wait blocks until every queued confirmation has finished.
func (b *Board) Wait() {
	b.inflight.Wait()
}

// FilterByStage returns the deals of one column, in board order.
func (b *Board) FilterByStage(stage models.Stage) []models.Deal {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.Deal{}
	for _, d := range b.deals {
		if d.Stage == stage {
			out = append(out, d)
		}
	}
	return out
}

// TotalValue sums the column. An empty column totals zero.
func (b *Board) TotalValue(stage models.Stage) decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := decimal.Zero
	for _, d := range b.deals {
		if d.Stage == stage {
			total = total.Add(d.Value)
		}
	}
	return total
}

// Columns renders every stage in display order.
func (b *Board) Columns() []Column {
	b.mu.Lock()
	defer b.mu.Unlock()
	cols := make([]Column, 0, len(models.Stages))
	pos := make(map[models.Stage]int, len(models.Stages))
	for i, s := range models.Stages {
		pos[s] = i
		cols = append(cols, Column{Stage: s, Title: s.Title(), Deals: []models.Deal{}, Total: decimal.Zero})
	}
	for _, d := range b.deals {
		i, ok := pos[d.Stage]
		if !ok {
			continue
		}
		cols[i].Deals = append(cols[i].Deals, d)
		cols[i].Count++
		cols[i].Total = cols[i].Total.Add(d.Value)
	}
	return cols
}

// Deals returns a copy of the whole list.
func (b *Board) Deals() []models.Deal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Deal(nil), b.deals...)
}

// Deal looks up one deal by id.
func (b *Board) Deal(id string) (models.Deal, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.index[id]
	if !ok {
		return models.Deal{}, false
	}
	return b.deals[i], true
}
