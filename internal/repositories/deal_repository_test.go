package repositories

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"agencydesk/internal/models"
)

func TestBuildDealListQuery(t *testing.T) {
	t.Run("no filter", func(t *testing.T) {
		q, args := buildDealListQuery(models.DealFilter{})
		assert.Equal(t, "SELECT "+dealColumns+" FROM deals ORDER BY updated_at desc, id ASC", q)
		assert.Empty(t, args)
	})

	t.Run("all filters with paging", func(t *testing.T) {
		stage := models.StageWon
		email := "Ana@Example.com"
		dt := models.DealTypeRecurring
		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

		q, args := buildDealListQuery(models.DealFilter{
			Stage:       &stage,
			Email:       &email,
			DealType:    &dt,
			CreatedFrom: &from,
			CreatedTo:   &to,
			SortBy:      "value",
			Order:       "ASC",
			Limit:       20,
			Offset:      40,
		})
		assert.Equal(t, "SELECT "+dealColumns+" FROM deals WHERE stage = $1 AND lower(email) = lower($2)"+
			" AND deal_type = $3 AND created_at >= $4 AND created_at <= $5"+
			" ORDER BY value asc, id ASC LIMIT $6 OFFSET $7", q)
		assert.Equal(t, []any{"won", email, "recurring", from, to, 20, 40}, args)
	})

	t.Run("unknown sort field falls back", func(t *testing.T) {
		q, _ := buildDealListQuery(models.DealFilter{SortBy: "title; DROP TABLE deals", Order: "sideways"})
		assert.Contains(t, q, "ORDER BY updated_at desc")
		assert.NotContains(t, q, "DROP")
	})
}

func TestBuildDealListFilter(t *testing.T) {
	assert.Empty(t, buildDealListFilter(models.DealFilter{}))

	stage := models.StageNew
	email := "a+b@x.io"
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := buildDealListFilter(models.DealFilter{Stage: &stage, Email: &email, CreatedFrom: &from})

	require.Len(t, f, 3)
	assert.Equal(t, bson.E{Key: "stage", Value: "new"}, f[0])
	assert.Equal(t, bson.E{Key: "email", Value: bson.Regex{Pattern: `^a\+b@x\.io$`, Options: "i"}}, f[1])
	assert.Equal(t, bson.E{Key: "created_at", Value: bson.D{{Key: "$gte", Value: from}}}, f[2])
}

func TestDealDocumentRoundTrip(t *testing.T) {
	email := "c@d.com"
	dt := models.DealTypeOneOff
	in := &models.Deal{
		ID:          "3b7c1f7e-0000-4000-8000-000000000001",
		Title:       "Site",
		CompanyName: "Loja",
		Stage:       models.StageProposal,
		DealType:    &dt,
		Email:       &email,
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	in.Value = mustDecimal(t, "1200.50")

	doc, err := toDocument(in)
	require.NoError(t, err)
	out, err := doc.toModel()
	require.NoError(t, err)

	assert.True(t, in.Value.Equal(out.Value))
	assert.Equal(t, in.Stage, out.Stage)
	require.NotNil(t, out.DealType)
	assert.Equal(t, dt, *out.DealType)
	assert.Equal(t, email, *out.Email)
}

func TestDealDocumentRejectsMalformedRows(t *testing.T) {
	doc, err := toDocument(&models.Deal{ID: "x", Title: "t", CompanyName: "c", Stage: models.StageNew})
	require.NoError(t, err)
	doc.Stage = "archived"

	_, err = doc.toModel()
	assert.ErrorIs(t, err, models.ErrMalformedDeal)
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestDealIndexes(t *testing.T) {
	var keys []bson.D
	for _, m := range dealIndexes() {
		keys = append(keys, m.Keys.(bson.D))
	}
	assert.Equal(t, []bson.D{
		{{Key: "stage", Value: 1}},
		{{Key: "created_at", Value: 1}},
		{{Key: "email", Value: 1}},
	}, keys)
	assert.Contains(t, Schema, "deals_created_at_idx ON deals (created_at)")
}
