package sequence

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/brightside-counseling/claims-api/internal/model"
	"github.com/brightside-counseling/claims-api/internal/repository"
	"github.com/brightside-counseling/claims-api/pkg/metrics"
)

// Allocator hands out control numbers from the shared claim sequences.
type Allocator interface {
	Allocate(ctx context.Context, counter model.CounterName) (string, error)
}

type Service struct {
	repo    repository.SequenceRepository
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewService(repo repository.SequenceRepository, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		metrics: m,
		logger:  logger.With().Str("component", "sequence").Logger(),
	}
}

// Allocate returns the counter's current value zero-padded to its fixed
// width and advances the stored sequence. The repository serializes
// concurrent callers; within one batch assembly callers must stay sequential
// so control numbers map deterministically onto claims.
func (s *Service) Allocate(ctx context.Context, counter model.CounterName) (string, error) {
	value, err := s.repo.Next(ctx, counter)
	if err != nil {
		s.logger.Error().Err(err).Str("counter", string(counter)).Msg("counter allocation failed")
		return "", fmt.Errorf("failed to allocate %s: %w", counter, err)
	}

	if s.metrics != nil {
		s.metrics.SequenceAllocations.WithLabelValues(string(counter)).Inc()
	}
	return fmt.Sprintf("%0*d", counter.Width(), value), nil
}
