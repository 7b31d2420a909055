package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"agencydesk/internal/models"
)

const (
	MongoTimeout    = 20 * time.Second
	CollectionDeals = "deals"
)

type dealDocument struct {
	ID          string          `bson:"_id"`
	Title       string          `bson:"title"`
	CompanyName string          `bson:"company_name"`
	Value       bson.Decimal128 `bson:"value"`
	Stage       string          `bson:"stage"`
	DealType    *string         `bson:"deal_type,omitempty"`
	ContactName *string         `bson:"contact_name,omitempty"`
	Email       *string         `bson:"email,omitempty"`
	CreatedAt   time.Time       `bson:"created_at"`
	UpdatedAt   time.Time       `bson:"updated_at"`
}

func toDocument(d *models.Deal) (dealDocument, error) {
	value, err := bson.ParseDecimal128(d.Value.String())
	if err != nil {
		return dealDocument{}, fmt.Errorf("encode value %s: %w", d.Value, err)
	}
	doc := dealDocument{
		ID:          d.ID,
		Title:       d.Title,
		CompanyName: d.CompanyName,
		Value:       value,
		Stage:       string(d.Stage),
		ContactName: d.ContactName,
		Email:       d.Email,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.DealType != nil {
		t := string(*d.DealType)
		doc.DealType = &t
	}
	return doc, nil
}

func (doc dealDocument) toModel() (*models.Deal, error) {
	value, err := decimal.NewFromString(doc.Value.String())
	if err != nil {
		return nil, fmt.Errorf("%w: id=%s value=%s", models.ErrMalformedDeal, doc.ID, doc.Value.String())
	}
	d := &models.Deal{
		ID:          doc.ID,
		Title:       doc.Title,
		CompanyName: doc.CompanyName,
		Value:       value,
		Stage:       models.Stage(doc.Stage),
		ContactName: doc.ContactName,
		Email:       doc.Email,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if doc.DealType != nil {
		t := models.DealType(*doc.DealType)
		d.DealType = &t
	}
	if err := models.NormalizeRecord(d); err != nil {
		return nil, err
	}
	return d, nil
}

type mongoDealRepository struct {
	collection *mongo.Collection
}

func NewMongoDealRepository(db *mongo.Database) DealRepository {
	return &mongoDealRepository{collection: db.Collection(CollectionDeals)}
}

// EnsureMongoIndexes is the Mongo counterpart of Migrate.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(CollectionDeals).Indexes().CreateMany(ctx, dealIndexes()); err != nil {
		return fmt.Errorf("create deal indexes: %w", err)
	}
	if _, err := db.Collection(CollectionCosts).Indexes().CreateMany(ctx, costIndexes()); err != nil {
		return fmt.Errorf("create cost indexes: %w", err)
	}
	return nil
}

// dealIndexes back the stage column lookups, the created_at range used by
// the finance report and the email lookup.
func dealIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "stage", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	}
}

func (r *mongoDealRepository) Insert(ctx context.Context, deal *models.Deal) error {
	doc, err := toDocument(deal)
	if err != nil {
		return err
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert deal: %w", err)
	}
	return nil
}

func (r *mongoDealRepository) GetByID(ctx context.Context, id string) (*models.Deal, error) {
	var doc dealDocument
	err := r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrDealNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get deal by id: %w", err)
	}
	return doc.toModel()
}

func (r *mongoDealRepository) Update(ctx context.Context, deal *models.Deal) error {
	doc, err := toDocument(deal)
	if err != nil {
		return err
	}
	set := bson.D{
		{Key: "title", Value: doc.Title},
		{Key: "company_name", Value: doc.CompanyName},
		{Key: "value", Value: doc.Value},
		{Key: "deal_type", Value: doc.DealType},
		{Key: "contact_name", Value: doc.ContactName},
		{Key: "email", Value: doc.Email},
		{Key: "updated_at", Value: doc.UpdatedAt},
	}
	return r.updateOne(ctx, deal.ID, set, "update deal")
}

func (r *mongoDealRepository) UpdateStage(ctx context.Context, id string, stage models.Stage, at time.Time) error {
	set := bson.D{
		{Key: "stage", Value: string(stage)},
		{Key: "updated_at", Value: at},
	}
	return r.updateOne(ctx, id, set, "update deal stage")
}

func (r *mongoDealRepository) updateOne(ctx context.Context, id string, set bson.D, op string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: id=%s", ErrDealNotFound, id)
	}
	return nil
}

func (r *mongoDealRepository) List(ctx context.Context, filter models.DealFilter) ([]models.Deal, error) {
	query := buildDealListFilter(filter)

	sortBy, order := filter.Sort()
	direction := -1
	if order == "asc" {
		direction = 1
	}
	findOptions := options.Find().SetSort(bson.D{{Key: sortBy, Value: direction}, {Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		findOptions.SetLimit(int64(filter.Limit)).SetSkip(int64(filter.Offset))
	}

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []dealDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode deals: %w", err)
	}
	deals := make([]models.Deal, 0, len(docs))
	for _, doc := range docs {
		d, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		deals = append(deals, *d)
	}
	return deals, nil
}

func buildDealListFilter(filter models.DealFilter) bson.D {
	query := bson.D{}
	if filter.Stage != nil {
		query = append(query, bson.E{Key: "stage", Value: string(*filter.Stage)})
	}
	if filter.Email != nil {
		query = append(query, bson.E{Key: "email", Value: bson.Regex{
			Pattern: "^" + regexp.QuoteMeta(*filter.Email) + "$",
			Options: "i",
		}})
	}
	if filter.DealType != nil {
		query = append(query, bson.E{Key: "deal_type", Value: string(*filter.DealType)})
	}
	created := bson.D{}
	if filter.CreatedFrom != nil {
		created = append(created, bson.E{Key: "$gte", Value: *filter.CreatedFrom})
	}
	if filter.CreatedTo != nil {
		created = append(created, bson.E{Key: "$lte", Value: *filter.CreatedTo})
	}
	if len(created) > 0 {
		query = append(query, bson.E{Key: "created_at", Value: created})
	}
	return query
}
