package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/brightside-counseling/claims-api/internal/model"
	"github.com/brightside-counseling/claims-api/internal/repository"
)

type referenceRepository struct {
	db *sqlx.DB
}

func NewReferenceRepository(db *sqlx.DB) repository.ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) GetInsuranceMapping(ctx context.Context, payerID string) (*model.InsuranceMapping, error) {
	query := `SELECT * FROM insurance_mappings WHERE payer_id = $1`
	var mapping model.InsuranceMapping
	err := r.db.GetContext(ctx, &mapping, query, payerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("insurance mapping %q: %w", payerID, model.ErrReferenceDataMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get insurance mapping: %w", err)
	}
	return &mapping, nil
}

func (r *referenceRepository) GetCPTCode(ctx context.Context, code string) (*model.CPTCode, error) {
	query := `SELECT * FROM cpt_codes WHERE code = $1`
	var cpt model.CPTCode
	err := r.db.GetContext(ctx, &cpt, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cpt code %q: %w", code, model.ErrReferenceDataMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cpt code: %w", err)
	}
	return &cpt, nil
}

func (r *referenceRepository) GetTemplates(ctx context.Context, version string) (*model.ClaimTemplates, error) {
	query := `SELECT * FROM claim_templates WHERE version = $1`
	var templates model.ClaimTemplates
	err := r.db.GetContext(ctx, &templates, query, version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("claim templates %q: %w", version, model.ErrReferenceDataMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim templates: %w", err)
	}
	return &templates, nil
}
