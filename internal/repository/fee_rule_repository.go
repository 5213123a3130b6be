package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uems-api/internal/models"
)

// FeeRuleRepository reads the fee rule configuration table.
type FeeRuleRepository struct {
	db *sqlx.DB
}

// NewFeeRuleRepository constructs the repository.
func NewFeeRuleRepository(db *sqlx.DB) *FeeRuleRepository {
	return &FeeRuleRepository{db: db}
}

// Lookup returns the rule for (program, semester), or nil when none is
// configured. A missing rule is not an error; the caller supplies defaults.
func (r *FeeRuleRepository) Lookup(ctx context.Context, program string, semester int) (*models.FeeRule, error) {
	const query = `SELECT id, program, semester, per_subject_fee, late_fee, last_date
	FROM fee_rules WHERE program = $1 AND semester = $2 LIMIT 1`
	var rule models.FeeRule
	if err := r.db.GetContext(ctx, &rule, query, program, semester); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup fee rule: %w", err)
	}
	return &rule, nil
}

// List returns every configured rule, for the admin fee table view.
func (r *FeeRuleRepository) List(ctx context.Context) ([]models.FeeRule, error) {
	const query = `SELECT id, program, semester, per_subject_fee, late_fee, last_date
	FROM fee_rules ORDER BY program, semester`
	var rules []models.FeeRule
	if err := r.db.SelectContext(ctx, &rules, query); err != nil {
		return nil, fmt.Errorf("list fee rules: %w", err)
	}
	return rules, nil
}
