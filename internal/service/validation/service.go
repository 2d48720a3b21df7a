package validation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brightside-counseling/claims-api/internal/model"
	"github.com/brightside-counseling/claims-api/internal/repository"
	"github.com/brightside-counseling/claims-api/internal/service/eligibility"
	"github.com/brightside-counseling/claims-api/pkg/metrics"
)

// insuranceMaxAge is how long a verified coverage record stays fresh before
// a session validation forces a re-verification.
const insuranceMaxAge = 14 * 24 * time.Hour

const reasonVerifyFailed = "Failed to verify insurance"

type Validator interface {
	Validate(ctx context.Context, sessionIDs []uuid.UUID) (map[uuid.UUID]model.ValidationResult, error)
}

type Service struct {
	sessionRepo  repository.SessionRepository
	patientRepo  repository.PatientRepository
	verifier     eligibility.Verifier
	allowedState string
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	now          func() time.Time
}

func NewService(sessionRepo repository.SessionRepository, patientRepo repository.PatientRepository, verifier eligibility.Verifier, allowedState string, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		sessionRepo:  sessionRepo,
		patientRepo:  patientRepo,
		verifier:     verifier,
		allowedState: allowedState,
		metrics:      m,
		logger:       logger.With().Str("component", "validation").Logger(),
		now:          time.Now,
	}
}

// Validate runs every candidate session through the rule chain in input
// order and persists the resulting statuses. Duplicate detection is scoped
// to this call and the pass is sequential: reordering the input changes
// which of two colliding sessions is flagged.
func (s *Service) Validate(ctx context.Context, sessionIDs []uuid.UUID) (map[uuid.UUID]model.ValidationResult, error) {
	results := make(map[uuid.UUID]model.ValidationResult, len(sessionIDs))
	evaluated := make([]uuid.UUID, 0, len(sessionIDs))
	seen := make(map[string]bool)
	patients := make(map[uuid.UUID]*model.Patient)

	for _, id := range sessionIDs {
		session, err := s.sessionRepo.Get(ctx, id)
		if err != nil {
			s.logger.Error().Err(err).Str("session_id", id.String()).Msg("failed to load session")
			results[id] = invalid("session not found", model.InvalidTypeNone)
			continue
		}

		// Already-validated sessions pass through untouched; re-writing them
		// could clear a reason another pass recorded.
		if session.Status == model.SessionStatusValidated {
			results[id] = model.ValidationResult{Valid: true}
			continue
		}

		results[id] = s.evaluate(ctx, session, seen, patients)
		evaluated = append(evaluated, id)
	}

	for _, id := range evaluated {
		if err := s.persistVerdict(ctx, id, results[id]); err != nil {
			s.logger.Error().Err(err).Str("session_id", id.String()).Msg("failed to persist validation verdict")
		}
	}

	if s.metrics != nil {
		for _, result := range results {
			outcome := "valid"
			if !result.Valid {
				outcome = "invalid"
			}
			s.metrics.ValidationOutcomes.WithLabelValues(outcome, string(result.Type)).Inc()
		}
	}

	return results, nil
}

func (s *Service) evaluate(ctx context.Context, session *model.Session, seen map[string]bool, patients map[uuid.UUID]*model.Patient) model.ValidationResult {
	key := duplicateKey(session)
	if seen[key] {
		return invalid("duplicate", model.InvalidTypeDuplicate)
	}
	seen[key] = true

	if session.PracticeState != s.allowedState {
		return invalid(fmt.Sprintf("practice state %q is not billable", session.PracticeState), model.InvalidTypeNone)
	}

	patient, ok := patients[session.PatientID]
	if !ok {
		var err error
		patient, err = s.patientRepo.Get(ctx, session.PatientID)
		if err != nil {
			s.logger.Error().Err(err).Str("patient_id", session.PatientID.String()).Msg("failed to load patient")
			return invalid("patient record not found", model.InvalidTypeNone)
		}
		patients[session.PatientID] = patient
	}

	if patient.Payer == model.SelfPayPayer {
		return invalid("self-pay sessions are not submitted", model.InvalidTypeNone)
	}

	if result, ok := checkDemographics(patient); !ok {
		return result
	}

	if patient.Payer == "" {
		return invalid("missing insurance payer", model.InvalidTypeInsurance)
	}
	if patient.MemberID == "" {
		return invalid("missing member ID", model.InvalidTypeInsurance)
	}

	if s.insuranceStale(patient) {
		if result, ok := s.refreshInsurance(ctx, patient); !ok {
			return result
		}
	}

	if patient.Copay == model.CoverageInactive {
		return invalid("insurance is inactive", model.InvalidTypeInsurance)
	}

	if result, ok := checkCoverageFields(patient); !ok {
		return result
	}

	return model.ValidationResult{Valid: true}
}

// refreshInsurance re-verifies coverage and merges the response into the
// patient record, both in storage and in the in-memory copy later rules in
// this pass read. The Inactive sentinel is persisted so subsequent
// validations fail without repeating the lookup.
func (s *Service) refreshInsurance(ctx context.Context, patient *model.Patient) (model.ValidationResult, bool) {
	record, err := s.verifier.Verify(ctx, eligibility.Query{
		FirstName: patient.FirstName,
		LastName:  patient.LastName,
		DOB:       patient.DOB.Format("01/02/2006"),
		Payer:     patient.Payer,
		MemberID:  patient.MemberID,
	})
	if s.metrics != nil {
		s.metrics.EligibilityLookups.Inc()
	}
	if err != nil {
		s.logger.Error().Err(err).Str("patient_id", patient.ID.String()).Msg("eligibility lookup failed")
		return invalid(reasonVerifyFailed, model.InvalidTypeInsurance), false
	}

	now := s.now()

	switch record.Status {
	case eligibility.StatusInactive:
		patient.Copay = model.CoverageInactive
		patient.CoInsuranceInNet = model.CoverageInactive
		patient.IndivDeductibleInNet = model.CoverageInactive
		patient.IndivDeductibleInNetRemaining = model.CoverageInactive
		patient.FamDeductibleInNet = model.CoverageInactive
		patient.FamDeductibleInNetRemaining = model.CoverageInactive
		patient.InsuranceModified = &now
		if err := s.patientRepo.UpdateInsurance(ctx, patient); err != nil {
			s.logger.Error().Err(err).Str("patient_id", patient.ID.String()).Msg("failed to persist inactive coverage")
		}
		return invalid("insurance is inactive", model.InvalidTypeInsurance), false

	case eligibility.StatusFailed:
		return invalid(reasonVerifyFailed, model.InvalidTypeInsurance), false
	}

	patient.Copay = record.Copay
	patient.CoInsuranceInNet = record.CoInsuranceInNet
	patient.IndivDeductibleInNet = record.IndivDeductibleInNet
	patient.IndivDeductibleInNetRemaining = record.IndivDeductibleInNetRemaining
	patient.FamDeductibleInNet = record.FamDeductibleInNet
	patient.FamDeductibleInNetRemaining = record.FamDeductibleInNetRemaining
	patient.GroupName = record.GroupName
	patient.PlanName = record.PlanName
	patient.PayerID = record.PayerCode
	patient.MemberID = record.MemberID
	patient.Subscriber = record.Subscriber
	patient.InsuranceModified = &now

	// Only upgrade the relationship: a specific value on record wins over
	// whatever the verification service reports.
	current := strings.ToLower(patient.RelationshipToInsured)
	if (current == "" || current == "other") && record.RelationshipToInsured != "" && record.RelationshipToInsured != "other" {
		patient.RelationshipToInsured = record.RelationshipToInsured
	}

	if err := s.patientRepo.UpdateInsurance(ctx, patient); err != nil {
		s.logger.Error().Err(err).Str("patient_id", patient.ID.String()).Msg("failed to persist refreshed coverage")
		return invalid(reasonVerifyFailed, model.InvalidTypeInsurance), false
	}

	return model.ValidationResult{}, true
}

func (s *Service) insuranceStale(patient *model.Patient) bool {
	if patient.InsuranceModified == nil {
		return true
	}
	return s.now().Sub(*patient.InsuranceModified) > insuranceMaxAge
}

func (s *Service) persistVerdict(ctx context.Context, id uuid.UUID, result model.ValidationResult) error {
	if result.Valid {
		return s.sessionRepo.UpdateValidation(ctx, id, model.SessionStatusValidated, nil, nil)
	}
	reason := result.Reason
	invalidType := result.Type
	return s.sessionRepo.UpdateValidation(ctx, id, model.SessionStatusActionRequired, &reason, &invalidType)
}

func checkDemographics(patient *model.Patient) (model.ValidationResult, bool) {
	if patient.DOB.IsZero() {
		return invalid("missing date of birth", model.InvalidTypeDemographic), false
	}
	for _, field := range []struct {
		value string
		name  string
	}{
		{patient.City, "city"},
		{patient.State, "state"},
		{patient.Street, "street"},
	} {
		if field.value == "" || strings.Contains(field.value, model.CoverageUnknown) {
			return invalid("missing "+field.name, model.InvalidTypeDemographic), false
		}
	}
	if patient.Gender == "" {
		return invalid("missing gender", model.InvalidTypeDemographic), false
	}
	return model.ValidationResult{}, true
}

func checkCoverageFields(patient *model.Patient) (model.ValidationResult, bool) {
	if !present(patient.RelationshipToInsured) {
		return invalid("missing relationship to insured", model.InvalidTypeInsurance), false
	}
	if !present(patient.SubscriberLastName()) {
		return invalid("missing subscriber last name", model.InvalidTypeInsurance), false
	}
	if !present(patient.SubscriberFirstName()) {
		return invalid("missing subscriber first name", model.InvalidTypeInsurance), false
	}
	if !present(patient.PayerID) {
		return invalid("missing payer clearinghouse id", model.InvalidTypeInsurance), false
	}
	return model.ValidationResult{}, true
}

func present(v string) bool {
	return v != "" && v != model.CoverageUnknown
}

func duplicateKey(session *model.Session) string {
	return fmt.Sprintf("%s|%s|%s", session.PatientID, session.ClinicianID, session.DateOfService.Format("2006-01-02"))
}

func invalid(reason string, t model.InvalidType) model.ValidationResult {
	return model.ValidationResult{Valid: false, Reason: reason, Type: t}
}
