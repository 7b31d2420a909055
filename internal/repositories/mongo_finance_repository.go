package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"agencydesk/internal/models"
)

const (
	CollectionPlans = "finance_monthly_plans"
	CollectionCosts = "finance_costs"
)

type planDocument struct {
	Month        string          `bson:"_id"`
	RevenueGoal  bson.Decimal128 `bson:"revenue_goal"`
	CostForecast bson.Decimal128 `bson:"cost_forecast"`
}

type costDocument struct {
	ID        string          `bson:"_id"`
	Name      string          `bson:"name"`
	Category  *string         `bson:"category,omitempty"`
	Amount    bson.Decimal128 `bson:"amount"`
	CostMonth string          `bson:"cost_month"`
	CreatedAt time.Time       `bson:"created_at"`
}

func toDecimal128(d decimal.Decimal) (bson.Decimal128, error) {
	v, err := bson.ParseDecimal128(d.String())
	if err != nil {
		return bson.Decimal128{}, fmt.Errorf("encode amount %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v bson.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode amount %s: %w", v.String(), err)
	}
	return d, nil
}

func toPlanDocument(p *models.MonthlyPlan) (planDocument, error) {
	goal, err := toDecimal128(p.RevenueGoal)
	if err != nil {
		return planDocument{}, err
	}
	forecast, err := toDecimal128(p.CostForecast)
	if err != nil {
		return planDocument{}, err
	}
	return planDocument{Month: p.Month, RevenueGoal: goal, CostForecast: forecast}, nil
}

func (doc planDocument) toModel() (models.MonthlyPlan, error) {
	goal, err := fromDecimal128(doc.RevenueGoal)
	if err != nil {
		return models.MonthlyPlan{}, err
	}
	forecast, err := fromDecimal128(doc.CostForecast)
	if err != nil {
		return models.MonthlyPlan{}, err
	}
	return models.MonthlyPlan{Month: doc.Month, RevenueGoal: goal, CostForecast: forecast}, nil
}

func toCostDocument(c *models.Cost) (costDocument, error) {
	amount, err := toDecimal128(c.Amount)
	if err != nil {
		return costDocument{}, err
	}
	return costDocument{
		ID:        c.ID,
		Name:      c.Name,
		Category:  c.Category,
		Amount:    amount,
		CostMonth: c.CostMonth,
		CreatedAt: c.CreatedAt,
	}, nil
}

func (doc costDocument) toModel() (models.Cost, error) {
	amount, err := fromDecimal128(doc.Amount)
	if err != nil {
		return models.Cost{}, err
	}
	name := doc.Name
	if name == "" {
		name = models.DefaultCostName
	}
	return models.Cost{
		ID:        doc.ID,
		Name:      name,
		Category:  doc.Category,
		Amount:    amount,
		CostMonth: doc.CostMonth,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func costIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "cost_month", Value: 1}, {Key: "created_at", Value: 1}}},
	}
}

type mongoFinanceRepository struct {
	plans *mongo.Collection
	costs *mongo.Collection
}

func NewMongoFinanceRepository(db *mongo.Database) FinanceRepository {
	return &mongoFinanceRepository{
		plans: db.Collection(CollectionPlans),
		costs: db.Collection(CollectionCosts),
	}
}

func (r *mongoFinanceRepository) ListPlans(ctx context.Context, fromMonth string) ([]models.MonthlyPlan, error) {
	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$gte", Value: fromMonth}}}}
	cursor, err := r.plans.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list monthly plans: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []planDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode monthly plans: %w", err)
	}
	plans := make([]models.MonthlyPlan, 0, len(docs))
	for _, doc := range docs {
		p, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (r *mongoFinanceRepository) SavePlan(ctx context.Context, plan *models.MonthlyPlan) error {
	doc, err := toPlanDocument(plan)
	if err != nil {
		return err
	}
	_, err = r.plans.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: doc.Month}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save monthly plan: %w", err)
	}
	return nil
}

func (r *mongoFinanceRepository) ListCosts(ctx context.Context, month string) ([]models.Cost, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.costs.Find(ctx, bson.D{{Key: "cost_month", Value: month}}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("list costs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []costDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode costs: %w", err)
	}
	costs := make([]models.Cost, 0, len(docs))
	for _, doc := range docs {
		c, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		costs = append(costs, c)
	}
	return costs, nil
}

func (r *mongoFinanceRepository) InsertCost(ctx context.Context, cost *models.Cost) error {
	doc, err := toCostDocument(cost)
	if err != nil {
		return err
	}
	if _, err := r.costs.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert cost: %w", err)
	}
	return nil
}
