package claims

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/brightside-counseling/claims-api/internal/email"
	"github.com/brightside-counseling/claims-api/internal/model"
	"github.com/brightside-counseling/claims-api/internal/repository"
	"github.com/brightside-counseling/claims-api/internal/service/clearinghouse"
	"github.com/brightside-counseling/claims-api/internal/service/validation"
	"github.com/brightside-counseling/claims-api/pkg/metrics"
)

type Submitter interface {
	Validate(ctx context.Context, sessionIDs []uuid.UUID) (map[uuid.UUID]model.ValidationResult, error)
	Submit(ctx context.Context, sessionIDs []uuid.UUID, submittedBy string) (int, error)
	ListBatches(ctx context.Context) ([]*model.Batch, error)
}

// Service orchestrates a batch submission: validate, assemble, upload, and
// only after the clearinghouse acknowledges the batch, persist per-session
// submission state and the batch record. Control numbers consumed by an
// assembly are burned even when the upload later fails; the sequences are
// unique, not gap-free across failed attempts.
type Service struct {
	validator     validation.Validator
	assembler     *Assembler
	clearinghouse clearinghouse.Submitter
	sessionRepo   repository.SessionRepository
	batchRepo     repository.BatchRepository
	notifier      email.Notifier
	metrics       *metrics.Metrics
	logger        zerolog.Logger
	now           func() time.Time
}

func NewService(
	validator validation.Validator,
	assembler *Assembler,
	ch clearinghouse.Submitter,
	sessionRepo repository.SessionRepository,
	batchRepo repository.BatchRepository,
	notifier email.Notifier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		validator:     validator,
		assembler:     assembler,
		clearinghouse: ch,
		sessionRepo:   sessionRepo,
		batchRepo:     batchRepo,
		notifier:      notifier,
		metrics:       m,
		logger:        logger.With().Str("component", "claims").Logger(),
		now:           time.Now,
	}
}

func (s *Service) Validate(ctx context.Context, sessionIDs []uuid.UUID) (map[uuid.UUID]model.ValidationResult, error) {
	return s.validator.Validate(ctx, sessionIDs)
}

func (s *Service) ListBatches(ctx context.Context) ([]*model.Batch, error) {
	return s.batchRepo.List(ctx)
}

// Submit returns the number of sessions actually included in the accepted
// batch, which may be lower than requested: invalid sessions are filtered by
// validation and patients without an insurance mapping are skipped during
// assembly. Per-session reasons are only available through Validate.
func (s *Service) Submit(ctx context.Context, sessionIDs []uuid.UUID, submittedBy string) (int, error) {
	verdicts, err := s.validator.Validate(ctx, sessionIDs)
	if err != nil {
		return 0, err
	}

	valid := make([]uuid.UUID, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		if verdicts[id].Valid {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return 0, model.ErrNothingToSubmit
	}

	assembly, err := s.assembler.Assemble(ctx, valid)
	if err != nil {
		s.notifyFailure(ctx, err)
		return 0, err
	}
	if len(assembly.SessionIDs) == 0 {
		return 0, model.ErrNothingToSubmit
	}

	if err := s.clearinghouse.Submit(ctx, assembly.Text); err != nil {
		s.logger.Error().Err(err).Str("interchange_ctl_no", assembly.InterchangeCtlNo).Msg("batch submission failed")
		if s.metrics != nil {
			s.metrics.BatchSubmissions.WithLabelValues("failed").Inc()
		}
		s.notifyFailure(ctx, err)
		return 0, err
	}

	batchID := uuid.New()
	submittedAt := s.now()

	for _, id := range assembly.SessionIDs {
		if err := s.sessionRepo.MarkSubmitted(ctx, id, assembly.ControlNumbers[id], submittedBy, submittedAt, batchID); err != nil {
			// The batch is already accepted remotely; keep going so the rest
			// of the sessions record their submission.
			s.logger.Error().Err(err).Str("session_id", id.String()).Msg("failed to mark session submitted")
		}
	}

	batch := &model.Batch{
		ID:               batchID,
		CreatedBy:        submittedBy,
		CreatedAt:        submittedAt,
		SessionIDs:       pq.StringArray(sessionIDStrings(assembly.SessionIDs)),
		NumClaims:        len(assembly.SessionIDs),
		TotalChargeCents: assembly.TotalChargeCents,
	}
	if err := s.batchRepo.Create(ctx, batch); err != nil {
		s.logger.Error().Err(err).Str("batch_id", batchID.String()).Msg("failed to record batch")
	}

	if s.metrics != nil {
		s.metrics.BatchSubmissions.WithLabelValues("accepted").Inc()
		s.metrics.ClaimsSubmitted.Add(float64(len(assembly.SessionIDs)))
	}

	s.logger.Info().
		Str("batch_id", batchID.String()).
		Str("interchange_ctl_no", assembly.InterchangeCtlNo).
		Int("num_claims", len(assembly.SessionIDs)).
		Int64("total_charge_cents", assembly.TotalChargeCents).
		Msg("batch accepted by clearinghouse")

	if s.notifier != nil {
		if err := s.notifier.SendBatchAccepted(ctx, batchID.String(), batch.NumClaims, formatCents(batch.TotalChargeCents)); err != nil {
			s.logger.Warn().Err(err).Msg("failed to send batch notice")
		}
	}

	return len(assembly.SessionIDs), nil
}

func (s *Service) notifyFailure(ctx context.Context, cause error) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendBatchFailed(ctx, cause.Error()); err != nil {
		s.logger.Warn().Err(err).Msg("failed to send failure notice")
	}
}

func sessionIDStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
