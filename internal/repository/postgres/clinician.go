package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/brightside-counseling/claims-api/internal/model"
	"github.com/brightside-counseling/claims-api/internal/repository"
)

type clinicianRepository struct {
	db *sqlx.DB
}

func NewClinicianRepository(db *sqlx.DB) repository.ClinicianRepository {
	return &clinicianRepository{db: db}
}

func (r *clinicianRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinician, error) {
	query := `SELECT * FROM clinicians WHERE id = $1`
	var clinician model.Clinician
	err := r.db.GetContext(ctx, &clinician, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("clinician %s: %w", id, model.ErrReferenceDataMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clinician: %w", err)
	}
	return &clinician, nil
}
