package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/brightside-counseling/claims-api/internal/model"
	"github.com/brightside-counseling/claims-api/internal/repository"
)

type batchRepository struct {
	db *sqlx.DB
}

func NewBatchRepository(db *sqlx.DB) repository.BatchRepository {
	return &batchRepository{db: db}
}

func (r *batchRepository) Create(ctx context.Context, batch *model.Batch) error {
	query := `
		INSERT INTO batches (id, created_by, created_at, session_ids, num_claims, total_charge_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		batch.ID,
		batch.CreatedBy,
		batch.CreatedAt,
		batch.SessionIDs,
		batch.NumClaims,
		batch.TotalChargeCents,
	)
	if err != nil {
		return fmt.Errorf("failed to create batch: %w", err)
	}
	return nil
}

func (r *batchRepository) List(ctx context.Context) ([]*model.Batch, error) {
	query := `SELECT * FROM batches ORDER BY created_at DESC`
	var batches []*model.Batch
	if err := r.db.SelectContext(ctx, &batches, query); err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	return batches, nil
}
