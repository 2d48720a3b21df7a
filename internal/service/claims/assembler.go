package claims

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brightside-counseling/claims-api/internal/model"
	"github.com/brightside-counseling/claims-api/internal/repository"
	"github.com/brightside-counseling/claims-api/internal/service/refdata"
	"github.com/brightside-counseling/claims-api/internal/service/sequence"
)

// Assembly is one rendered claim batch with its bookkeeping: which sessions
// made it in, which provider control number each was assigned, and the total
// charge across all service lines.
type Assembly struct {
	Text             string
	InterchangeCtlNo string
	ControlNumbers   map[uuid.UUID]string
	SessionIDs       []uuid.UUID
	TotalChargeCents int64
}

// Assembler renders validated sessions into a flat claim batch. Control
// numbers are allocated strictly sequentially within one assembly so their
// mapping onto claims stays deterministic.
type Assembler struct {
	sessionRepo repository.SessionRepository
	patientRepo repository.PatientRepository
	resolver    *refdata.Resolver
	allocator   sequence.Allocator
	logger      zerolog.Logger
	now         func() time.Time
}

func NewAssembler(sessionRepo repository.SessionRepository, patientRepo repository.PatientRepository, resolver *refdata.Resolver, allocator sequence.Allocator, logger zerolog.Logger) *Assembler {
	return &Assembler{
		sessionRepo: sessionRepo,
		patientRepo: patientRepo,
		resolver:    resolver,
		allocator:   allocator,
		logger:      logger.With().Str("component", "assembler").Logger(),
		now:         time.Now,
	}
}

// Assemble builds the batch for the given sessions, grouped by patient in
// discovery order. A patient whose insurance mapping cannot be resolved is
// skipped with a log line and the batch continues; the caller learns about
// the exclusion only through the shorter session list.
func (a *Assembler) Assemble(ctx context.Context, sessionIDs []uuid.UUID) (*Assembly, error) {
	templates, err := a.resolver.Templates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load claim templates: %w", err)
	}

	interchangeCtlNo, err := a.allocator.Allocate(ctx, model.CounterInterchangeCtlNo)
	if err != nil {
		return nil, err
	}

	patientOrder, sessionsByPatient, err := a.groupByPatient(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}

	assembly := &Assembly{
		InterchangeCtlNo: interchangeCtlNo,
		ControlNumbers:   make(map[uuid.UUID]string),
	}

	var body strings.Builder
	hl := 0

	for _, patientID := range patientOrder {
		patient, err := a.patientRepo.Get(ctx, patientID)
		if err != nil {
			a.logger.Error().Err(err).Str("patient_id", patientID.String()).Msg("skipping patient: record not found")
			continue
		}

		mapping, err := a.resolver.InsuranceMapping(ctx, patient.PayerID)
		if err != nil {
			a.logger.Error().Err(err).Str("patient_id", patientID.String()).Str("payer_id", patient.PayerID).Msg("skipping patient: no insurance mapping")
			continue
		}

		segment, advance, err := a.renderPatientSegment(templates, patient, mapping, hl)
		if err != nil {
			return nil, err
		}

		// The segment is held back until the first claim renders; a patient
		// whose sessions are all filtered contributes nothing, not an empty
		// subscriber loop.
		emitted := false
		for _, session := range sessionsByPatient[patientID] {
			if session.Status != model.SessionStatusValidated && session.Status != model.SessionStatusSubmitted {
				continue
			}
			if !emitted {
				hl += advance
				body.WriteString(segment)
				emitted = true
			}
			if err := a.renderSessionClaim(ctx, &body, templates, patient, session, assembly); err != nil {
				return nil, err
			}
		}
	}

	now := a.now()
	header := render(templates.Header, map[string]string{
		"interchangeCtlNo": interchangeCtlNo,
		"date":             now.Format("20060102"),
		"time":             now.Format("1504"),
	})
	footer := render(templates.Footer, map[string]string{
		"interchangeCtlNo": interchangeCtlNo,
	})

	assembly.Text = finalizeSegmentCounts(header + body.String() + footer)
	return assembly, nil
}

// groupByPatient loads the sessions and buckets them by patient, keeping the
// order in which each patient is first seen.
func (a *Assembler) groupByPatient(ctx context.Context, sessionIDs []uuid.UUID) ([]uuid.UUID, map[uuid.UUID][]*model.Session, error) {
	order := make([]uuid.UUID, 0, len(sessionIDs))
	grouped := make(map[uuid.UUID][]*model.Session)

	for _, id := range sessionIDs {
		session, err := a.sessionRepo.Get(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load session %s: %w", id, err)
		}
		if _, ok := grouped[session.PatientID]; !ok {
			order = append(order, session.PatientID)
		}
		grouped[session.PatientID] = append(grouped[session.PatientID], session)
	}

	return order, grouped, nil
}

// renderPatientSegment renders the self or other subscriber variant and
// returns how far the hierarchical counter advances: one level for the
// patient, two when the subscriber is a separate person.
func (a *Assembler) renderPatientSegment(templates *model.ClaimTemplates, patient *model.Patient, mapping *model.InsuranceMapping, hl int) (string, int, error) {
	relationshipCode, err := model.RelationshipCode(patient.RelationshipToInsured)
	if err != nil {
		return "", 0, err
	}

	fields := map[string]string{
		"firstName":           patient.FirstName,
		"lastName":            patient.LastName,
		"dob":                 patient.DOB.Format("20060102"),
		"gender":              genderCode(patient.Gender),
		"street":              patient.Street,
		"city":                patient.City,
		"state":               patient.State,
		"zipCode":             patient.ZipCode,
		"memberId":            patient.MemberID,
		"groupName":           patient.GroupName,
		"payerName":           mapping.PayerName,
		"payerCode":           mapping.ClearinghouseCode,
		"claimIndicator":      mapping.ClaimIndicator,
		"relationshipCode":    relationshipCode,
		"subscriberFirstName": patient.SubscriberFirstName(),
		"subscriberLastName":  patient.SubscriberLastName(),
	}

	self := strings.EqualFold(strings.TrimSpace(patient.RelationshipToInsured), "self")
	if self {
		fields["hlCount"] = fmt.Sprintf("%d", hl+1)
		return render(templates.PatientSelf, fields), 1, nil
	}

	fields["hlSubscriber"] = fmt.Sprintf("%d", hl+1)
	fields["hlPatient"] = fmt.Sprintf("%d", hl+2)
	return render(templates.PatientOther, fields), 2, nil
}

func (a *Assembler) renderSessionClaim(ctx context.Context, body *strings.Builder, templates *model.ClaimTemplates, patient *model.Patient, session *model.Session, assembly *Assembly) error {
	providerSuffix, err := a.allocator.Allocate(ctx, model.CounterProviderCtlNo)
	if err != nil {
		return err
	}
	providerCtlNo := lastNamePrefix(patient.LastName) + providerSuffix

	claimNo, err := a.allocator.Allocate(ctx, model.CounterClaimNo)
	if err != nil {
		return err
	}

	clinician, err := a.resolver.BillingClinician(ctx, session.ClinicianID)
	if err != nil {
		return fmt.Errorf("failed to resolve billing clinician for session %s: %w", session.ID, err)
	}

	posCode, err := model.PlaceOfServiceCode(session.PlaceOfService)
	if err != nil {
		return err
	}

	var sessionChargeCents int64
	charges := make([]int64, len(session.CPTCodes))
	for i, code := range session.CPTCodes {
		charge, err := a.resolver.CPTCharge(ctx, code)
		if err != nil {
			return fmt.Errorf("failed to resolve charge for session %s: %w", session.ID, err)
		}
		charges[i] = charge
		sessionChargeCents += charge
	}

	body.WriteString(render(templates.Claim, map[string]string{
		"claimNo":            claimNo,
		"providerCtlNo":      providerCtlNo,
		"totalCharge":        formatCents(sessionChargeCents),
		"placeOfServiceCode": posCode,
		"diagnosisCodes":     strings.Join(session.DiagnosisCodes, ":"),
		"npi":                clinician.NPI,
		"taxonomyCode":       clinician.TaxonomyCode,
		"clinicianFirstName": clinician.FirstName,
		"clinicianLastName":  clinician.LastName,
	}))

	for i, code := range session.CPTCodes {
		body.WriteString(render(templates.ServiceLine, map[string]string{
			"cptCode":       code,
			"charge":        formatCents(charges[i]),
			"dateOfService": session.DateOfService.Format("20060102"),
		}))
		body.WriteString(templates.ServiceLineDelimiter)
	}

	assembly.ControlNumbers[session.ID] = providerCtlNo
	assembly.SessionIDs = append(assembly.SessionIDs, session.ID)
	assembly.TotalChargeCents += sessionChargeCents
	return nil
}

// lastNamePrefix takes the first three uppercase alphanumeric characters of
// the last name for the provider control number prefix.
func lastNamePrefix(lastName string) string {
	var prefix []rune
	for _, r := range strings.ToUpper(lastName) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			prefix = append(prefix, r)
			if len(prefix) == 3 {
				break
			}
		}
	}
	return string(prefix)
}

// formatCents renders an integer-cent amount as a fixed two-decimal string.
func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func genderCode(gender string) string {
	switch strings.ToLower(gender) {
	case "male", "m":
		return "M"
	case "female", "f":
		return "F"
	default:
		return "U"
	}
}
