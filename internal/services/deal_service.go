package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"agencydesk/internal/models"
	"agencydesk/internal/pipeline"
	"agencydesk/internal/repositories"
)

type CreateDealInput struct {
	Title       string     `json:"title"`
	CompanyName string     `json:"company_name"`
	Value       MoneyInput `json:"value"`
	ContactName string     `json:"contact_name"`
	Email       string     `json:"email"`
	DealType    string     `json:"deal_type"`
}

type UpdateDealInput struct {
	Title       *string     `json:"title"`
	CompanyName *string     `json:"company_name"`
	Value       *MoneyInput `json:"value"`
	ContactName *string     `json:"contact_name"`
	Email       *string     `json:"email"`
	DealType    *string     `json:"deal_type"`
}

type DealService struct {
	Repo repositories.DealRepository
	Log  *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewDealService(repo repositories.DealRepository, log *zap.Logger) *DealService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DealService{
		Repo:  repo,
		Log:   log,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// Create validates the form, then stores a deal in the "new" stage.
func (s *DealService) Create(ctx context.Context, in CreateDealInput) (*models.Deal, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title", "title is required")
	}
	company := strings.TrimSpace(in.CompanyName)
	if company == "" {
		return nil, invalid("company_name", "company name is required")
	}
	value, err := parseValue(string(in.Value))
	if err != nil {
		return nil, err
	}
	dealType := models.DealTypeOneOff
	if strings.TrimSpace(in.DealType) != "" {
		dealType = models.DealType(strings.TrimSpace(in.DealType))
		if !dealType.Valid() {
			return nil, invalid("deal_type", "unknown deal type %q", in.DealType)
		}
	}
	email, err := parseEmail(in.Email)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	deal := &models.Deal{
		ID:          s.newID(),
		Title:       title,
		CompanyName: company,
		Value:       value,
		Stage:       models.StageNew,
		DealType:    &dealType,
		ContactName: optional(in.ContactName),
		Email:       email,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Insert(ctx, deal); err != nil {
		return nil, err
	}
	s.Log.Info("[deal][create] ok", zap.String("deal_id", deal.ID), zap.String("value", deal.Value.String()))
	return deal, nil
}

func (s *DealService) List(ctx context.Context, filter models.DealFilter) ([]models.Deal, error) {
	return s.Repo.List(ctx, filter)
}

func (s *DealService) GetByID(ctx context.Context, id string) (*models.Deal, error) {
	deal, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrDealNotFound) {
		return nil, ErrDealNotFound
	}
	return deal, err
}

// Update applies an admin edit. The stage is never touched here; stage
// changes go through the board or ChangeStage.
func (s *DealService) Update(ctx context.Context, id string, in UpdateDealInput) (*models.Deal, error) {
	deal, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		if deal.Title = strings.TrimSpace(*in.Title); deal.Title == "" {
			return nil, invalid("title", "title is required")
		}
	}
	if in.CompanyName != nil {
		if deal.CompanyName = strings.TrimSpace(*in.CompanyName); deal.CompanyName == "" {
			return nil, invalid("company_name", "company name is required")
		}
	}
	if in.Value != nil {
		if deal.Value, err = parseValue(string(*in.Value)); err != nil {
			return nil, err
		}
	}
	if in.DealType != nil {
		dt := models.DealType(strings.TrimSpace(*in.DealType))
		if !dt.Valid() {
			return nil, invalid("deal_type", "unknown deal type %q", *in.DealType)
		}
		deal.DealType = &dt
	}
	if in.ContactName != nil {
		deal.ContactName = optional(*in.ContactName)
	}
	if in.Email != nil {
		if deal.Email, err = parseEmail(*in.Email); err != nil {
			return nil, err
		}
	}
	deal.UpdatedAt = s.now().UTC()

	if err := s.Repo.Update(ctx, deal); err != nil {
		if errors.Is(err, repositories.ErrDealNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, err
	}
	return deal, nil
}

// UpdateStage persists a stage move. It is the store behind every board.
func (s *DealService) UpdateStage(ctx context.Context, id string, stage models.Stage, at time.Time) error {
	if !stage.Valid() {
		return models.ErrInvalidStage
	}
	err := s.Repo.UpdateStage(ctx, id, stage, at)
	if errors.Is(err, repositories.ErrDealNotFound) {
		return ErrDealNotFound
	}
	return err
}

// ChangeStage is the non-interactive move used by the REST API. changed is
// false when the deal already sits in the target stage.
func (s *DealService) ChangeStage(ctx context.Context, id string, to models.Stage) (deal *models.Deal, changed bool, err error) {
	if !to.Valid() {
		return nil, false, invalid("stage", "unknown stage %q", to)
	}
	deal, err = s.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !pipeline.CanTransition(deal.Stage, to) {
		return deal, false, nil
	}
	at := s.now().UTC()
	if err := s.UpdateStage(ctx, id, to, at); err != nil {
		return nil, false, err
	}
	s.Log.Info("[deal][stage] changed",
		zap.String("deal_id", id),
		zap.String("from", string(deal.Stage)),
		zap.String("to", string(to)))
	deal.Stage = to
	deal.UpdatedAt = at
	return deal, true, nil
}

// Board loads every deal into a fresh board backed by this service.
func (s *DealService) Board(ctx context.Context, opts ...pipeline.Option) (*pipeline.Board, error) {
	deals, err := s.Repo.List(ctx, models.DealFilter{})
	if err != nil {
		return nil, err
	}
	opts = append([]pipeline.Option{pipeline.WithLogger(s.Log)}, opts...)
	board := pipeline.NewBoard(s, opts...)
	board.LoadInitial(deals)
	return board, nil
}

func parseValue(raw string) (decimal.Decimal, error) {
	v, err := ParseMoney(raw)
	if err != nil {
		return v, invalid("value", "%s", err.Error())
	}
	if v.IsNegative() {
		return v, invalid("value", "value must not be negative")
	}
	return v, nil
}

func parseEmail(raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return nil, invalid("email", "invalid email %q", raw)
	}
	return &raw, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
