package claims

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightside-counseling/claims-api/internal/model"
	"github.com/brightside-counseling/claims-api/internal/service/refdata"
)

type fakeValidator struct {
	verdicts map[uuid.UUID]model.ValidationResult
}

func (f *fakeValidator) Validate(_ context.Context, sessionIDs []uuid.UUID) (map[uuid.UUID]model.ValidationResult, error) {
	results := make(map[uuid.UUID]model.ValidationResult, len(sessionIDs))
	for _, id := range sessionIDs {
		results[id] = f.verdicts[id]
	}
	return results, nil
}

type fakeClearinghouse struct {
	err      error
	uploads  int
	lastBody string
}

func (f *fakeClearinghouse) Submit(_ context.Context, batch string) error {
	f.uploads++
	f.lastBody = batch
	return f.err
}

type fakeBatchRepo struct {
	created []*model.Batch
}

func (f *fakeBatchRepo) Create(_ context.Context, batch *model.Batch) error {
	f.created = append(f.created, batch)
	return nil
}

func (f *fakeBatchRepo) List(_ context.Context) ([]*model.Batch, error) {
	return f.created, nil
}

type fakeNotifier struct {
	accepted int
	failed   int
}

func (f *fakeNotifier) SendBatchAccepted(_ context.Context, _ string, _ int, _ string) error {
	f.accepted++
	return nil
}

func (f *fakeNotifier) SendBatchFailed(_ context.Context, _ string) error {
	f.failed++
	return nil
}

type submitFixture struct {
	svc           *Service
	sessions      *fakeSessionRepo
	batches       *fakeBatchRepo
	clearinghouse *fakeClearinghouse
	notifier      *fakeNotifier
	sessionIDs    []uuid.UUID
}

func newSubmitFixture(t *testing.T, chErr error) *submitFixture {
	t.Helper()

	patient := testPatient("self")
	clinicianID := uuid.New()
	first := validatedSession(patient, clinicianID, time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC))
	second := validatedSession(patient, clinicianID, time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC))

	sessions := newFakeSessionRepo(first, second)
	patients := newFakePatientRepo(patient)
	refs := &fakeReferenceRepo{
		mappings: map[string]*model.InsuranceMapping{
			"00001": {PayerID: "00001", PayerName: "Aetna", ClearinghouseCode: "60054", ClaimIndicator: "CI"},
		},
		cpts:      map[string]*model.CPTCode{"90837": {Code: "90837", ChargeCents: 15000}},
		templates: testTemplates(),
	}
	clinicians := &fakeClinicianRepo{clinicians: map[uuid.UUID]*model.Clinician{
		clinicianID: {Base: model.Base{ID: clinicianID}, FirstName: "Sam", LastName: "Smith", NPI: "1234567890"},
	}}

	resolver := refdata.NewResolver(refs, clinicians, "v1", zerolog.Nop())
	assembler := NewAssembler(sessions, patients, resolver, &fakeAllocator{}, zerolog.Nop())

	validator := &fakeValidator{verdicts: map[uuid.UUID]model.ValidationResult{
		first.ID:  {Valid: true},
		second.ID: {Valid: true},
	}}
	ch := &fakeClearinghouse{err: chErr}
	batches := &fakeBatchRepo{}
	notifier := &fakeNotifier{}

	svc := NewService(validator, assembler, ch, sessions, batches, notifier, nil, zerolog.Nop())

	return &submitFixture{
		svc:           svc,
		sessions:      sessions,
		batches:       batches,
		clearinghouse: ch,
		notifier:      notifier,
		sessionIDs:    []uuid.UUID{first.ID, second.ID},
	}
}

func TestSubmitAcceptedBatchPersistsEverything(t *testing.T) {
	f := newSubmitFixture(t, nil)

	count, err := f.svc.Submit(context.Background(), f.sessionIDs, "biller@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, f.clearinghouse.uploads)
	assert.Contains(t, f.clearinghouse.lastBody, "CLM*")

	// Both sessions carry their provider control numbers.
	assert.Equal(t, "DOE00000000", f.sessions.submitted[f.sessionIDs[0]])
	assert.Equal(t, "DOE00000001", f.sessions.submitted[f.sessionIDs[1]])

	require.Len(t, f.batches.created, 1)
	batch := f.batches.created[0]
	assert.Equal(t, "biller@example.com", batch.CreatedBy)
	assert.Equal(t, 2, batch.NumClaims)
	assert.Equal(t, int64(30000), batch.TotalChargeCents)
	assert.Len(t, batch.SessionIDs, 2)

	assert.Equal(t, 1, f.notifier.accepted)
	assert.Zero(t, f.notifier.failed)
}

func TestSubmitRejectedBatchMutatesNothing(t *testing.T) {
	f := newSubmitFixture(t, model.ErrClearinghouseRejected)

	_, err := f.svc.Submit(context.Background(), f.sessionIDs, "biller@example.com")
	assert.ErrorIs(t, err, model.ErrClearinghouseRejected)
	assert.Empty(t, f.sessions.submitted)
	assert.Empty(t, f.batches.created)
	assert.Equal(t, 1, f.notifier.failed)
	assert.Zero(t, f.notifier.accepted)
}

func TestSubmitNothingValid(t *testing.T) {
	f := newSubmitFixture(t, nil)

	// Mark every verdict invalid.
	validator := &fakeValidator{verdicts: map[uuid.UUID]model.ValidationResult{}}
	f.svc.validator = validator

	_, err := f.svc.Submit(context.Background(), f.sessionIDs, "biller@example.com")
	assert.ErrorIs(t, err, model.ErrNothingToSubmit)
	assert.Zero(t, f.clearinghouse.uploads, "no upload may be attempted")
}

func TestSubmitFiltersInvalidSessions(t *testing.T) {
	f := newSubmitFixture(t, nil)

	// Only the first session survives validation.
	f.svc.validator = &fakeValidator{verdicts: map[uuid.UUID]model.ValidationResult{
		f.sessionIDs[0]: {Valid: true},
		f.sessionIDs[1]: {Valid: false, Reason: "duplicate", Type: model.InvalidTypeDuplicate},
	}}

	count, err := f.svc.Submit(context.Background(), f.sessionIDs, "biller@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, f.batches.created, 1)
	assert.Equal(t, 1, f.batches.created[0].NumClaims)
	assert.Equal(t, int64(15000), f.batches.created[0].TotalChargeCents)
}

func TestValidateDelegates(t *testing.T) {
	f := newSubmitFixture(t, nil)

	results, err := f.svc.Validate(context.Background(), f.sessionIDs)
	require.NoError(t, err)
	assert.True(t, results[f.sessionIDs[0]].Valid)
	assert.True(t, results[f.sessionIDs[1]].Valid)
}
