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

// counterColumns whitelists the sequence columns; counter names never reach
// SQL unvalidated.
var counterColumns = map[model.CounterName]string{
	model.CounterInterchangeCtlNo: "next_interchange_ctl_no",
	model.CounterProviderCtlNo:    "next_provider_ctl_no",
	model.CounterClaimNo:          "next_claim_no",
}

type sequenceRepository struct {
	db      *sqlx.DB
	version string
}

func NewSequenceRepository(db *sqlx.DB, version string) repository.SequenceRepository {
	return &sequenceRepository{db: db, version: version}
}

// Next reads the counter's current value under a row lock, advances it with
// wraparound, and returns the pre-increment value. Concurrent callers
// serialize on the row lock, so no two of them can observe the same value.
func (r *sequenceRepository) Next(ctx context.Context, counter model.CounterName) (int64, error) {
	column, ok := counterColumns[counter]
	if !ok {
		return 0, fmt.Errorf("unknown counter %q", counter)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin sequence transaction: %w", err)
	}
	defer tx.Rollback()

	var current int64
	query := fmt.Sprintf(`SELECT %s FROM claim_sequences WHERE version = $1 FOR UPDATE`, column)
	err = tx.GetContext(ctx, &current, query, r.version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("version %q: %w", r.version, model.ErrCounterRowMissing)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter %s: %w", counter, err)
	}

	next := current + 1
	if next == pow10(counter.Width())-1 {
		next = 0
	}

	update := fmt.Sprintf(`UPDATE claim_sequences SET %s = $1 WHERE version = $2`, column)
	if _, err := tx.ExecContext(ctx, update, next, r.version); err != nil {
		return 0, fmt.Errorf("failed to advance counter %s: %w", counter, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit counter %s: %w", counter, err)
	}
	return current, nil
}

func pow10(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}
