package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Stage is a pipeline column.
type Stage string

const (
	StageNew         Stage = "new"
	StageDiscovery   Stage = "discovery"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageWon         Stage = "won"
	StageLost        Stage = "lost"
)

// Stages in display order.
var Stages = []Stage{
	StageNew,
	StageDiscovery,
	StageProposal,
	StageNegotiation,
	StageWon,
	StageLost,
}

var stageTitles = map[Stage]string{
	StageNew:         "Novos Leads",
	StageDiscovery:   "Descoberta",
	StageProposal:    "Proposta Enviada",
	StageNegotiation: "Negociação",
	StageWon:         "Ganho",
	StageLost:        "Perdido",
}

var (
	ErrInvalidStage  = errors.New("invalid stage")
	ErrMalformedDeal = errors.New("malformed deal record")
)

func (s Stage) Valid() bool {
	_, ok := stageTitles[s]
	return ok
}

// Terminal reports whether the stage closes a negotiation. Nothing enforces it.
func (s Stage) Terminal() bool {
	return s == StageWon || s == StageLost
}

func (s Stage) Title() string {
	return stageTitles[s]
}

func ParseStage(raw string) (Stage, error) {
	s := Stage(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, raw)
	}
	return s, nil
}

type DealType string

const (
	DealTypeRecurring DealType = "recurring"
	DealTypeOneOff    DealType = "one_off"
)

func (t DealType) Valid() bool {
	return t == DealTypeRecurring || t == DealTypeOneOff
}

type Deal struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	CompanyName string          `json:"company_name"`
	Value       decimal.Decimal `json:"value"`
	Stage       Stage           `json:"stage"`
	DealType    *DealType       `json:"deal_type,omitempty"`
	ContactName *string         `json:"contact_name,omitempty"`
	Email       *string         `json:"email,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// HasEmail is what decides whether a won deal can get portal access automatically.
func (d Deal) HasEmail() bool {
	return d.Email != nil && strings.TrimSpace(*d.Email) != ""
}

// DisplayName prefers the company, falling back to the title.
func (d Deal) DisplayName() string {
	if d.CompanyName != "" {
		return d.CompanyName
	}
	return d.Title
}

// NormalizeRecord validates a row read from a store. Malformed rows are
// rejected instead of being handed to the board.
func NormalizeRecord(d *Deal) error {
	if d == nil {
		return fmt.Errorf("%w: nil record", ErrMalformedDeal)
	}
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrMalformedDeal)
	}
	d.Title = strings.TrimSpace(d.Title)
	d.CompanyName = strings.TrimSpace(d.CompanyName)
	if d.Title == "" || d.CompanyName == "" {
		return fmt.Errorf("%w: id=%s missing title or company", ErrMalformedDeal, d.ID)
	}
	if !d.Stage.Valid() {
		return fmt.Errorf("%w: id=%s stage=%q", ErrMalformedDeal, d.ID, d.Stage)
	}
	if d.Value.IsNegative() {
		return fmt.Errorf("%w: id=%s negative value", ErrMalformedDeal, d.ID)
	}
	if d.DealType != nil && !d.DealType.Valid() {
		return fmt.Errorf("%w: id=%s deal_type=%q", ErrMalformedDeal, d.ID, *d.DealType)
	}
	if d.Email != nil && strings.TrimSpace(*d.Email) == "" {
		d.Email = nil
	}
	if d.ContactName != nil && strings.TrimSpace(*d.ContactName) == "" {
		d.ContactName = nil
	}
	return nil
}

// DealFilter holds optional list parameters. Nil fields are not applied.
type DealFilter struct {
	Stage       *Stage
	Email       *string
	DealType    *DealType
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	SortBy      string
	Order       string
	Limit       int
	Offset      int
}

var allowedSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"value":      true,
	"stage":      true,
}

// Sort returns a whitelisted sort field and direction.
func (f DealFilter) Sort() (field, order string) {
	field = f.SortBy
	if !allowedSortFields[field] {
		field = "updated_at"
	}
	order = strings.ToLower(f.Order)
	if order != "asc" && order != "desc" {
		order = "desc"
	}
	return field, order
}
