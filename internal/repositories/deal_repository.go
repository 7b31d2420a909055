package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"agencydesk/internal/models"
)

var ErrDealNotFound = errors.New("deal not found")

// DealRepository is the record store behind the pipeline. Deals are never
// deleted, so there is no Delete.
type DealRepository interface {
	List(ctx context.Context, filter models.DealFilter) ([]models.Deal, error)
	GetByID(ctx context.Context, id string) (*models.Deal, error)
	Insert(ctx context.Context, deal *models.Deal) error
	Update(ctx context.Context, deal *models.Deal) error
	UpdateStage(ctx context.Context, id string, stage models.Stage, at time.Time) error
}

type dealRepository struct {
	db *sql.DB
}

func NewDealRepository(db *sql.DB) DealRepository {
	return &dealRepository{db: db}
}

const dealColumns = `id, title, company_name, value, stage, deal_type, contact_name, email, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeal(row rowScanner) (*models.Deal, error) {
	var (
		d        models.Deal
		stage    string
		dealType sql.NullString
		contact  sql.NullString
		email    sql.NullString
	)
	if err := row.Scan(
		&d.ID, &d.Title, &d.CompanyName, &d.Value, &stage,
		&dealType, &contact, &email, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.Stage = models.Stage(stage)
	if dealType.Valid {
		t := models.DealType(dealType.String)
		d.DealType = &t
	}
	if contact.Valid {
		d.ContactName = &contact.String
	}
	if email.Valid {
		d.Email = &email.String
	}
	if err := models.NormalizeRecord(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableDealType(t *models.DealType) any {
	if t == nil {
		return nil
	}
	return string(*t)
}

func (r *dealRepository) Insert(ctx context.Context, deal *models.Deal) error {
	query := `
        INSERT INTO deals (id, title, company_name, value, stage, deal_type, contact_name, email, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		deal.ID,
		deal.Title,
		deal.CompanyName,
		deal.Value,
		string(deal.Stage),
		nullableDealType(deal.DealType),
		nullableString(deal.ContactName),
		nullableString(deal.Email),
		deal.CreatedAt,
		deal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert deal: %w", err)
	}
	return nil
}

func (r *dealRepository) GetByID(ctx context.Context, id string) (*models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1`
	deal, err := scanDeal(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDealNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get deal by id: %w", err)
	}
	return deal, nil
}

// Update is the administrative edit: everything except stage and created_at.
func (r *dealRepository) Update(ctx context.Context, deal *models.Deal) error {
	query := `
        UPDATE deals
        SET title=$1, company_name=$2, value=$3, deal_type=$4, contact_name=$5, email=$6, updated_at=$7
        WHERE id=$8`
	res, err := r.db.ExecContext(ctx, query,
		deal.Title,
		deal.CompanyName,
		deal.Value,
		nullableDealType(deal.DealType),
		nullableString(deal.ContactName),
		nullableString(deal.Email),
		deal.UpdatedAt,
		deal.ID,
	)
	if err != nil {
		return fmt.Errorf("update deal: %w", err)
	}
	return expectOneRow(res, deal.ID)
}

func (r *dealRepository) UpdateStage(ctx context.Context, id string, stage models.Stage, at time.Time) error {
	const q = `UPDATE deals SET stage = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, q, string(stage), at, id)
	if err != nil {
		return fmt.Errorf("update deal stage: %w", err)
	}
	return expectOneRow(res, id)
}

func expectOneRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id=%s", ErrDealNotFound, id)
	}
	return nil
}

func (r *dealRepository) List(ctx context.Context, filter models.DealFilter) ([]models.Deal, error) {
	query, args := buildDealListQuery(filter)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	defer rows.Close()

	deals := []models.Deal{}
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("read deal row: %w", err)
		}
		deals = append(deals, *d)
	}
	return deals, rows.Err()
}

func buildDealListQuery(filter models.DealFilter) (string, []any) {
	query := "SELECT " + dealColumns + " FROM deals"
	conditions := []string{}
	args := []any{}
	i := 1

	if filter.Stage != nil {
		conditions = append(conditions, fmt.Sprintf("stage = $%d", i))
		args = append(args, string(*filter.Stage))
		i++
	}
	if filter.Email != nil {
		conditions = append(conditions, fmt.Sprintf("lower(email) = lower($%d)", i))
		args = append(args, *filter.Email)
		i++
	}
	if filter.DealType != nil {
		conditions = append(conditions, fmt.Sprintf("deal_type = $%d", i))
		args = append(args, string(*filter.DealType))
		i++
	}
	if filter.CreatedFrom != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", i))
		args = append(args, *filter.CreatedFrom)
		i++
	}
	if filter.CreatedTo != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", i))
		args = append(args, *filter.CreatedTo)
		i++
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	sortBy, order := filter.Sort()
	query += fmt.Sprintf(" ORDER BY %s %s, id ASC", sortBy, order)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", i, i+1)
		args = append(args, filter.Limit, filter.Offset)
	}
	return query, args
}
