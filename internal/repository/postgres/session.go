package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/brightside-counseling/claims-api/internal/model"
	"github.com/brightside-counseling/claims-api/internal/repository"
)

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	query := `SELECT * FROM sessions WHERE id = $1`
	var session model.Session
	err := r.db.GetContext(ctx, &session, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, model.ErrReferenceDataMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) UpdateValidation(ctx context.Context, id uuid.UUID, status model.SessionStatus, reason *string, invalidType *model.InvalidType) error {
	query := `
		UPDATE sessions
		SET status = $1, invalid_reason = $2, invalid_type = $3, updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, status, reason, invalidType, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update session validation: %w", err)
	}
	return nil
}

func (r *sessionRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, claimNumber, submittedBy string, submittedAt time.Time, batchID uuid.UUID) error {
	query := `
		UPDATE sessions
		SET status = $1, claim_number = $2, submitted_by = $3, submitted_at = $4, batch_id = $5, updated_at = $6
		WHERE id = $7
	`
	_, err := r.db.ExecContext(ctx, query,
		model.SessionStatusSubmitted,
		claimNumber,
		submittedBy,
		submittedAt,
		batchID,
		time.Now(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark session submitted: %w", err)
	}
	return nil
}
