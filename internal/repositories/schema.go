package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the Postgres layout of the deal and finance stores.
const Schema = `
CREATE TABLE IF NOT EXISTS deals (
    id           UUID PRIMARY KEY,
    title        TEXT        NOT NULL,
    company_name TEXT        NOT NULL,
    value        NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (value >= 0),
    stage        TEXT        NOT NULL DEFAULT 'new'
                 CHECK (stage IN ('new','discovery','proposal','negotiation','won','lost')),
    deal_type    TEXT        CHECK (deal_type IN ('recurring','one_off')),
    contact_name TEXT,
    email        TEXT,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS deals_stage_idx ON deals (stage);
CREATE INDEX IF NOT EXISTS deals_created_at_idx ON deals (created_at);
CREATE INDEX IF NOT EXISTS deals_email_idx ON deals (lower(email));

CREATE TABLE IF NOT EXISTS finance_monthly_plans (
    month         CHAR(7)       PRIMARY KEY CHECK (month ~ '^[0-9]{4}-[0-9]{2}$'),
    revenue_goal  NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (revenue_goal >= 0),
    cost_forecast NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (cost_forecast >= 0)
);

CREATE TABLE IF NOT EXISTS finance_costs (
    id         UUID          PRIMARY KEY,
    name       TEXT          NOT NULL,
    category   TEXT,
    amount     NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (amount >= 0),
    cost_month CHAR(7)       NOT NULL CHECK (cost_month ~ '^[0-9]{4}-[0-9]{2}$'),
    created_at TIMESTAMPTZ   NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS finance_costs_month_idx ON finance_costs (cost_month);
`

func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
