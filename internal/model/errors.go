package model

import "errors"

// InvalidType categorizes why a session failed validation. The empty value
// marks failures with no retry-relevant category (jurisdiction, self-pay).
type InvalidType string

const (
	InvalidTypeNone        InvalidType = ""
	InvalidTypeDuplicate   InvalidType = "duplicate"
	InvalidTypeDemographic InvalidType = "demographic"
	InvalidTypeInsurance   InvalidType = "insurance"
)

var (
	// ErrNothingToSubmit is returned when no requested session survives
	// validation; no clearinghouse call is attempted.
	ErrNothingToSubmit = errors.New("no valid sessions to submit")

	// ErrCounterRowMissing means the shared sequence record was never
	// provisioned. This is a fatal configuration error: the allocator must
	// not silently start a new sequence.
	ErrCounterRowMissing = errors.New("claim sequence record missing")

	ErrReferenceDataMissing   = errors.New("reference data not found")
	ErrUnmappedRelationship   = errors.New("unmapped relationship to insured")
	ErrUnmappedPlaceOfService = errors.New("unmapped place of service")
	ErrSupervisorCycle        = errors.New("supervisor chain does not terminate")

	ErrClearinghouseAuth     = errors.New("clearinghouse authentication failed")
	ErrClearinghouseRejected = errors.New("clearinghouse rejected batch upload")
	ErrEligibilityFailed     = errors.New("eligibility lookup failed")
)
