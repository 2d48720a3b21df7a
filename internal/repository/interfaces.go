package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/brightside-counseling/claims-api/internal/model"
)

type SessionRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Session, error)
	// UpdateValidation persists a validation verdict. A validated verdict
	// clears the invalidation fields; action_required sets them.
	UpdateValidation(ctx context.Context, id uuid.UUID, status model.SessionStatus, reason *string, invalidType *model.InvalidType) error
	// MarkSubmitted records the submission bookkeeping for one session after
	// the clearinghouse has acknowledged the batch.
	MarkSubmitted(ctx context.Context, id uuid.UUID, claimNumber, submittedBy string, submittedAt time.Time, batchID uuid.UUID) error
}

type PatientRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	// UpdateInsurance persists the coverage fields, relationship, and
	// insurance-modified timestamp after an eligibility refresh.
	UpdateInsurance(ctx context.Context, patient *model.Patient) error
}

type ClinicianRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Clinician, error)
}

// ReferenceRepository serves immutable reference data: payer mappings, CPT
// charges, and the claim template set.
type ReferenceRepository interface {
	GetInsuranceMapping(ctx context.Context, payerID string) (*model.InsuranceMapping, error)
	GetCPTCode(ctx context.Context, code string) (*model.CPTCode, error)
	GetTemplates(ctx context.Context, version string) (*model.ClaimTemplates, error)
}

// SequenceRepository owns the shared claim sequence record. Next returns the
// pre-increment value of the named counter and advances it, wrapping to 0 at
// 10^width − 1, all inside one transaction.
type SequenceRepository interface {
	Next(ctx context.Context, counter model.CounterName) (int64, error)
}

type BatchRepository interface {
	Create(ctx context.Context, batch *model.Batch) error
	List(ctx context.Context) ([]*model.Batch, error)
}
