package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type SessionStatus string

const (
	SessionStatusUnvalidated    SessionStatus = "unvalidated"
	SessionStatusValidated      SessionStatus = "validated"
	SessionStatusActionRequired SessionStatus = "action_required"
	SessionStatusSubmitted      SessionStatus = "submitted"
)

type PlaceOfService string

const (
	PlaceMainOffice    PlaceOfService = "Main Office"
	PlaceTelehealth    PlaceOfService = "Telehealth"
	PlaceResidence     PlaceOfService = "Patient's Residence"
	PlaceOtherLocation PlaceOfService = "Other Location"
)

// Session is one billable clinical encounter. Status and invalidation fields
// are written by the validator; submission fields are written only after the
// clearinghouse has acknowledged the batch. Sessions are never deleted.
type Session struct {
	Base
	PatientID      uuid.UUID      `db:"patient_id" json:"patient_id"`
	ClinicianID    uuid.UUID      `db:"clinician_id" json:"clinician_id"`
	DateOfService  time.Time      `db:"date_of_service" json:"date_of_service"`
	PlaceOfService PlaceOfService `db:"place_of_service" json:"place_of_service"`
	DiagnosisCodes pq.StringArray `db:"diagnosis_codes" json:"diagnosis_codes"`
	CPTCodes       pq.StringArray `db:"cpt_codes" json:"cpt_codes"`
	PracticeState  string         `db:"practice_state" json:"practice_state"`
	Status         SessionStatus  `db:"status" json:"status"`

	InvalidReason *string      `db:"invalid_reason" json:"invalid_reason,omitempty"`
	InvalidType   *InvalidType `db:"invalid_type" json:"invalid_type,omitempty"`

	ClaimNumber *string    `db:"claim_number" json:"claim_number,omitempty"`
	SubmittedBy *string    `db:"submitted_by" json:"submitted_by,omitempty"`
	SubmittedAt *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
	BatchID     *uuid.UUID `db:"batch_id" json:"batch_id,omitempty"`
}

type ValidateSessionsRequest struct {
	SessionIDs []uuid.UUID `json:"session_ids" binding:"required,min=1"`
}

type SubmitBatchRequest struct {
	SessionIDs []uuid.UUID `json:"session_ids" binding:"required,min=1"`
}

// ValidationResult is the per-session verdict produced by the validator.
type ValidationResult struct {
	Valid  bool        `json:"valid"`
	Reason string      `json:"reason,omitempty"`
	Type   InvalidType `json:"type,omitempty"`
}
