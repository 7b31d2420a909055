package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"agencydesk/internal/models"
	"agencydesk/internal/pipeline"
	"agencydesk/internal/repositories"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type memRepo struct {
	mu        sync.Mutex
	deals     map[string]models.Deal
	order     []string
	inserts   int
	stageErr  error
	listErr   error
	stageSeen []models.Stage
}

func newMemRepo(deals ...models.Deal) *memRepo {
	r := &memRepo{deals: map[string]models.Deal{}}
	for _, d := range deals {
		r.deals[d.ID] = d
		r.order = append(r.order, d.ID)
	}
	return r
}

func (r *memRepo) List(_ context.Context, f models.DealFilter) ([]models.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := []models.Deal{}
	for _, id := range r.order {
		d := r.deals[id]
		if f.Stage != nil && d.Stage != *f.Stage {
			continue
		}
		if f.CreatedFrom != nil && d.CreatedAt.Before(*f.CreatedFrom) {
			continue
		}
		if f.CreatedTo != nil && d.CreatedAt.After(*f.CreatedTo) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*models.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deals[id]
	if !ok {
		return nil, repositories.ErrDealNotFound
	}
	return &d, nil
}

func (r *memRepo) Insert(_ context.Context, d *models.Deal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	r.deals[d.ID] = *d
	r.order = append(r.order, d.ID)
	return nil
}

func (r *memRepo) Update(_ context.Context, d *models.Deal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.deals[d.ID]; !ok {
		return repositories.ErrDealNotFound
	}
	r.deals[d.ID] = *d
	return nil
}

func (r *memRepo) UpdateStage(_ context.Context, id string, stage models.Stage, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stageSeen = append(r.stageSeen, stage)
	if r.stageErr != nil {
		return r.stageErr
	}
	d, ok := r.deals[id]
	if !ok {
		return repositories.ErrDealNotFound
	}
	d.Stage = stage
	d.UpdatedAt = at
	r.deals[id] = d
	return nil
}

func newTestService(repo *memRepo) *DealService {
	s := NewDealService(repo, nil)
	s.now = func() time.Time { return fixedNow }
	s.newID = func() string { return "deal-1" }
	return s
}

func seedDeal(id string, stage models.Stage, value string) models.Deal {
	return models.Deal{
		ID:          id,
		Title:       "Site " + id,
		CompanyName: "Loja " + id,
		Value:       decimal.RequireFromString(value),
		Stage:       stage,
		CreatedAt:   fixedNow.Add(-48 * time.Hour),
		UpdatedAt:   fixedNow.Add(-24 * time.Hour),
	}
}

func TestDealServiceCreate(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)

	deal, err := svc.Create(context.Background(), CreateDealInput{
		Title:       "  Gestão de redes  ",
		CompanyName: "Padaria Sol",
		Value:       "R$ 1.200,50",
		Email:       "dono@padaria.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "deal-1", deal.ID)
	assert.Equal(t, "Gestão de redes", deal.Title)
	assert.Equal(t, models.StageNew, deal.Stage)
	assert.True(t, decimal.RequireFromString("1200.50").Equal(deal.Value))
	require.NotNil(t, deal.DealType)
	assert.Equal(t, models.DealTypeOneOff, *deal.DealType)
	assert.Nil(t, deal.ContactName)
	assert.Equal(t, fixedNow, deal.CreatedAt)
	assert.Equal(t, 1, repo.inserts)
}

func TestDealServiceCreateValidation(t *testing.T) {
	cases := []struct {
		name  string
		in    CreateDealInput
		field string
	}{
		{"blank title", CreateDealInput{Title: "   ", CompanyName: "X"}, "title"},
		{"blank company", CreateDealInput{Title: "X", CompanyName: ""}, "company_name"},
		{"negative value", CreateDealInput{Title: "X", CompanyName: "Y", Value: "-10"}, "value"},
		{"garbage value", CreateDealInput{Title: "X", CompanyName: "Y", Value: "dez reais"}, "value"},
		{"bad deal type", CreateDealInput{Title: "X", CompanyName: "Y", DealType: "weekly"}, "deal_type"},
		{"bad email", CreateDealInput{Title: "X", CompanyName: "Y", Email: "not-an-email"}, "email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMemRepo()
			_, err := newTestService(repo).Create(context.Background(), tc.in)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Zero(t, repo.inserts)
		})
	}
}

func TestDealServiceCreateEmptyValueIsZero(t *testing.T) {
	deal, err := newTestService(newMemRepo()).Create(context.Background(), CreateDealInput{
		Title: "X", CompanyName: "Y", DealType: "recurring",
	})
	require.NoError(t, err)
	assert.True(t, deal.Value.IsZero())
	assert.Equal(t, models.DealTypeRecurring, *deal.DealType)
}

func TestDealServiceGetByIDNotFound(t *testing.T) {
	_, err := newTestService(newMemRepo()).GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrDealNotFound)
}

func TestDealServiceUpdate(t *testing.T) {
	repo := newMemRepo(seedDeal("a", models.StageProposal, "100"))
	svc := newTestService(repo)

	title := "Novo título"
	value := MoneyInput("250,00")
	email := ""
	deal, err := svc.Update(context.Background(), "a", UpdateDealInput{Title: &title, Value: &value, Email: &email})
	require.NoError(t, err)

	assert.Equal(t, "Novo título", deal.Title)
	assert.Equal(t, models.StageProposal, deal.Stage)
	assert.True(t, decimal.RequireFromString("250").Equal(deal.Value))
	assert.Nil(t, deal.Email)
	assert.Equal(t, fixedNow, repo.deals["a"].UpdatedAt)

	blank := " "
	_, err = svc.Update(context.Background(), "a", UpdateDealInput{CompanyName: &blank})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Update(context.Background(), "missing", UpdateDealInput{Title: &title})
	assert.ErrorIs(t, err, ErrDealNotFound)
}

func TestDealServiceUpdateStage(t *testing.T) {
	repo := newMemRepo(seedDeal("a", models.StageNew, "10"))
	svc := newTestService(repo)

	assert.ErrorIs(t, svc.UpdateStage(context.Background(), "a", "archived", fixedNow), models.ErrInvalidStage)
	assert.Empty(t, repo.stageSeen)

	require.NoError(t, svc.UpdateStage(context.Background(), "a", models.StageWon, fixedNow))
	assert.Equal(t, models.StageWon, repo.deals["a"].Stage)

	assert.ErrorIs(t, svc.UpdateStage(context.Background(), "zzz", models.StageWon, fixedNow), ErrDealNotFound)
}

func TestDealServiceChangeStage(t *testing.T) {
	repo := newMemRepo(seedDeal("a", models.StageNegotiation, "10"))
	svc := newTestService(repo)

	deal, changed, err := svc.ChangeStage(context.Background(), "a", models.StageNegotiation)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.StageNegotiation, deal.Stage)
	assert.Empty(t, repo.stageSeen)

	deal, changed, err = svc.ChangeStage(context.Background(), "a", models.StageWon)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.StageWon, deal.Stage)
	assert.Equal(t, fixedNow, deal.UpdatedAt)

	_, _, err = svc.ChangeStage(context.Background(), "a", "archived")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestDealServiceBoard(t *testing.T) {
	repo := newMemRepo(
		seedDeal("a", models.StageNew, "100"),
		seedDeal("b", models.StageNegotiation, "50"),
	)
	svc := newTestService(repo)

	var won []models.Deal
	board, err := svc.Board(context.Background(),
		pipeline.WithClock(func() time.Time { return fixedNow }),
		pipeline.WithListener(pipeline.ListenerFuncs{OnWon: func(d models.Deal) { won = append(won, d) }}),
	)
	require.NoError(t, err)
	assert.Len(t, board.Deals(), 2)

	conf, err := board.EndDrag(context.Background(), "b", models.StageWon)
	require.NoError(t, err)
	require.NoError(t, conf.Wait(context.Background()))
	board.Wait()

	assert.Equal(t, models.StageWon, repo.deals["b"].Stage)
	require.Len(t, won, 1)
	assert.Equal(t, "b", won[0].ID)

	repo.listErr = errors.New("db down")
	_, err = svc.Board(context.Background())
	assert.Error(t, err)
}

func TestDealServiceBoardRollsBackOnStoreFailure(t *testing.T) {
	repo := newMemRepo(seedDeal("a", models.StageProposal, "100"))
	repo.stageErr = errors.New("write failed")
	svc := newTestService(repo)

	board, err := svc.Board(context.Background())
	require.NoError(t, err)

	conf, err := board.EndDrag(context.Background(), "a", models.StageWon)
	require.NoError(t, err)
	assert.Error(t, conf.Wait(context.Background()))
	board.Wait()

	d, ok := board.Deal("a")
	require.True(t, ok)
	assert.Equal(t, models.StageProposal, d.Stage)
}
