package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"agencydesk/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
var t1 = t0.Add(time.Hour)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func deal(id string, stage models.Stage, value int64) models.Deal {
	return models.Deal{
		ID:          id,
		Title:       "Deal " + id,
		CompanyName: "Company " + id,
		Value:       decimal.NewFromInt(value),
		Stage:       stage,
		CreatedAt:   t0,
		UpdatedAt:   t0,
	}
}

type stageCall struct {
	id    string
	stage models.Stage
	at    time.Time
}

// fakeStore records UpdateStage calls. Errors are consumed in call order;
// gate, when set, holds every call until it is closed.
type fakeStore struct {
	mu     sync.Mutex
	calls  []stageCall
	errs   []error
	gate   chan struct{}
	inCall chan struct{}
}

func (s *fakeStore) UpdateStage(ctx context.Context, id string, stage models.Stage, at time.Time) error {
	if s.inCall != nil {
		s.inCall <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, stageCall{id: id, stage: stage, at: at})
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

func (s *fakeStore) Calls() []stageCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]stageCall(nil), s.calls...)
}

type recorder struct {
	mu      sync.Mutex
	changes []Change
	won     []models.Deal
	failed  []*TransitionError
}

func (r *recorder) BoardChanged(c Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder) DealWon(d models.Deal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.won = append(r.won, d)
}

func (r *recorder) TransitionFailed(e *TransitionError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, e)
}

func newTestBoard(store Updater, rec *recorder, deals ...models.Deal) *Board {
	b := NewBoard(store, WithListener(rec), WithClock(func() time.Time { return t1 }))
	b.LoadInitial(deals)
	return b
}

func ids(deals []models.Deal) []string {
	out := make([]string, 0, len(deals))
	for _, d := range deals {
		out = append(out, d.ID)
	}
	return out
}

func TestEndDragToWon(t *testing.T) {
	store := &fakeStore{}
	rec := &recorder{}
	b := newTestBoard(store, rec, deal("1", models.StageNew, 1000), deal("2", models.StageNew, 500))

	require.NoError(t, b.BeginDrag("1"))
	conf, err := b.EndDrag(context.Background(), "1", models.StageWon)
	require.NoError(t, err)
	require.NotNil(t, conf)
	require.NoError(t, conf.Wait(context.Background()))
	b.Wait()

	assert.ElementsMatch(t, []string{"2"}, ids(b.FilterByStage(models.StageNew)))
	assert.ElementsMatch(t, []string{"1"}, ids(b.FilterByStage(models.StageWon)))

	require.Len(t, rec.won, 1)
	assert.Equal(t, "1", rec.won[0].ID)
	assert.Equal(t, models.StageWon, rec.won[0].Stage)
	assert.Empty(t, rec.failed)

	calls := store.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, stageCall{id: "1", stage: models.StageWon, at: t1}, calls[0])
}

func TestEndDragMovesBetweenColumns(t *testing.T) {
	for _, target := range []models.Stage{models.StageDiscovery, models.StageProposal, models.StageNegotiation, models.StageLost} {
		t.Run(string(target), func(t *testing.T) {
			store := &fakeStore{}
			rec := &recorder{}
			b := newTestBoard(store, rec, deal("a", models.StageNew, 10), deal("b", models.StageProposal, 20))

			conf, err := b.EndDrag(context.Background(), "a", target)
			require.NoError(t, err)
			require.NoError(t, conf.Wait(context.Background()))
			b.Wait()

			assert.Contains(t, ids(b.FilterByStage(target)), "a")
			assert.NotContains(t, ids(b.FilterByStage(models.StageNew)), "a")
			assert.Empty(t, rec.won)

			d, ok := b.Deal("a")
			require.True(t, ok)
			assert.Equal(t, t1, d.UpdatedAt)
		})
	}
}

func TestEndDragSameStageIsNoop(t *testing.T) {
	store := &fakeStore{}
	rec := &recorder{}
	b := newTestBoard(store, rec, deal("1", models.StageProposal, 100), deal("2", models.StageNew, 5))
	before := b.Deals()
	changesBefore := len(rec.changes)

	require.NoError(t, b.BeginDrag("1"))
	conf, err := b.EndDrag(context.Background(), "1", models.StageProposal)
	require.NoError(t, err)
	assert.Nil(t, conf)
	b.Wait()

	if diff := cmp.Diff(before, b.Deals(), decimalEqual); diff != "" {
		t.Fatalf("deal list changed (-before +after):\n%s", diff)
	}
	assert.Empty(t, store.Calls())
	assert.Len(t, rec.changes, changesBefore)
	_, dragging := b.Dragging("1")
	assert.False(t, dragging)
}

func TestEndDragRollsBackWhenStoreFails(t *testing.T) {
	cause := errors.New("connection reset")
	store := &fakeStore{errs: []error{cause}}
	rec := &recorder{}
	b := newTestBoard(store, rec, deal("1", models.StageNegotiation, 700), deal("2", models.StageNew, 300))
	before := b.Deals()

	require.NoError(t, b.BeginDrag("1"))
	conf, err := b.EndDrag(context.Background(), "1", models.StageWon)
	require.NoError(t, err)

	werr := conf.Wait(context.Background())
	b.Wait()
	require.Error(t, werr)
	assert.ErrorIs(t, werr, cause)

	var terr *TransitionError
	require.ErrorAs(t, werr, &terr)
	assert.Equal(t, models.StageNegotiation, terr.From)
	assert.Equal(t, models.StageWon, terr.To)
	assert.True(t, terr.Reverted)
	assert.Contains(t, terr.Message, "went back")

	if diff := cmp.Diff(before, b.Deals(), decimalEqual); diff != "" {
		t.Fatalf("board not restored (-before +after):\n%s", diff)
	}
	require.Len(t, rec.failed, 1)
	assert.Empty(t, rec.won, "won must not be announced for a rejected move")

	last := rec.changes[len(rec.changes)-1]
	assert.Equal(t, Change{Kind: ChangeReverted, DealID: "1", From: models.StageWon, To: models.StageNegotiation}, last)
}

func TestEndDragIsOptimistic(t *testing.T) {
	store := &fakeStore{gate: make(chan struct{})}
	rec := &recorder{}
	b := newTestBoard(store, rec, deal("1", models.StageNew, 50))

	conf, err := b.EndDrag(context.Background(), "1", models.StageDiscovery)
	require.NoError(t, err)

	// visible before the store answered
	assert.ElementsMatch(t, []string{"1"}, ids(b.FilterByStage(models.StageDiscovery)))
	select {
	case <-conf.Done():
		t.Fatal("confirmation finished before the store answered")
	default:
	}
	assert.NoError(t, conf.Err())

	close(store.gate)
	require.NoError(t, conf.Wait(context.Background()))
	b.Wait()
}

func TestQueuedMovesOfSameDeal(t *testing.T) {
	t.Run("both rejected returns to the original column", func(t *testing.T) {
		store := &fakeStore{
			gate:   make(chan struct{}),
			inCall: make(chan struct{}, 2),
			errs:   []error{errors.New("boom"), errors.New("boom")},
		}
		rec := &recorder{}
		b := newTestBoard(store, rec, deal("1", models.StageNew, 50))

		first, err := b.EndDrag(context.Background(), "1", models.StageProposal)
		require.NoError(t, err)
		<-store.inCall
		second, err := b.EndDrag(context.Background(), "1", models.StageWon)
		require.NoError(t, err)

		close(store.gate)
		require.Error(t, first.Wait(context.Background()))
		require.Error(t, second.Wait(context.Background()))
		b.Wait()

		d, _ := b.Deal("1")
		assert.Equal(t, models.StageNew, d.Stage)
		assert.Equal(t, t0, d.UpdatedAt)
		assert.Len(t, rec.failed, 2)
	})

	t.Run("first rejected second accepted keeps the second", func(t *testing.T) {
		store := &fakeStore{
			gate:   make(chan struct{}),
			inCall: make(chan struct{}, 2),
			errs:   []error{errors.New("boom")},
		}
		rec := &recorder{}
		b := newTestBoard(store, rec, deal("1", models.StageNew, 50))

		first, err := b.EndDrag(context.Background(), "1", models.StageProposal)
		require.NoError(t, err)
		<-store.inCall
		second, err := b.EndDrag(context.Background(), "1", models.StageWon)
		require.NoError(t, err)

		close(store.gate)
		require.Error(t, first.Wait(context.Background()))
		require.NoError(t, second.Wait(context.Background()))
		b.Wait()

		d, _ := b.Deal("1")
		assert.Equal(t, models.StageWon, d.Stage)
		require.Len(t, rec.won, 1)

		calls := store.Calls()
		require.Len(t, calls, 2)
		assert.Equal(t, models.StageProposal, calls[0].stage)
		assert.Equal(t, models.StageWon, calls[1].stage)
	})
}

func TestRejectedMoveMessage(t *testing.T) {
	store := &fakeStore{
		gate:   make(chan struct{}),
		inCall: make(chan struct{}, 2),
		errs:   []error{errors.New("boom"), errors.New("boom")},
	}
	rec := &recorder{}
	b := newTestBoard(store, rec, deal("1", models.StageNew, 50))

	first, err := b.EndDrag(context.Background(), "1", models.StageProposal)
	require.NoError(t, err)
	<-store.inCall
	second, err := b.EndDrag(context.Background(), "1", models.StageWon)
	require.NoError(t, err)

	close(store.gate)
	var firstErr, secondErr *TransitionError
	require.ErrorAs(t, first.Wait(context.Background()), &firstErr)
	require.ErrorAs(t, second.Wait(context.Background()), &secondErr)
	b.Wait()

	// the second move took over the rollback, so the first one left the card alone
	assert.False(t, firstErr.Reverted)
	assert.Contains(t, firstErr.Message, "Company 1")
	assert.NotContains(t, firstErr.Message, "went back")

	assert.True(t, secondErr.Reverted)
	assert.Contains(t, secondErr.Message, "went back to "+models.StageNew.Title())

	reverts := 0
	for _, c := range rec.changes {
		if c.Kind == ChangeReverted {
			reverts++
		}
	}
	assert.Equal(t, 1, reverts)
}

func TestWonAnnouncementWithQueuedMove(t *testing.T) {
	tests := []struct {
		name      string
		then      []models.Stage
		errs      []error
		wantStage models.Stage
		wantWon   int
	}{
		{name: "moved out of won again", then: []models.Stage{models.StageLost}, wantStage: models.StageLost},
		{name: "moved back to won", then: []models.Stage{models.StageLost, models.StageWon}, wantStage: models.StageWon, wantWon: 1},
		{name: "later move rejected", then: []models.Stage{models.StageLost}, errs: []error{nil, errors.New("boom")}, wantStage: models.StageWon, wantWon: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{
				gate:   make(chan struct{}),
				inCall: make(chan struct{}, 1+len(tc.then)),
				errs:   tc.errs,
			}
			rec := &recorder{}
			b := newTestBoard(store, rec, deal("1", models.StageNegotiation, 900))

			first, err := b.EndDrag(context.Background(), "1", models.StageWon)
			require.NoError(t, err)
			<-store.inCall
			var later []*Confirmation
			for _, stage := range tc.then {
				conf, err := b.EndDrag(context.Background(), "1", stage)
				require.NoError(t, err)
				require.NotNil(t, conf)
				later = append(later, conf)
			}

			close(store.gate)
			require.NoError(t, first.Wait(context.Background()))
			for _, conf := range later {
				_ = conf.Wait(context.Background())
			}
			b.Wait()

			d, _ := b.Deal("1")
			assert.Equal(t, tc.wantStage, d.Stage)
			require.Len(t, rec.won, tc.wantWon)
			if tc.wantWon > 0 {
				assert.Equal(t, models.StageWon, rec.won[0].Stage)
				assert.Equal(t, "1", rec.won[0].ID)
			}
		})
	}
}
