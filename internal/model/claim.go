package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CounterName identifies one of the three independent claim sequences.
type CounterName string

const (
	CounterInterchangeCtlNo CounterName = "interchange_ctl_no"
	CounterProviderCtlNo    CounterName = "provider_ctl_no"
	CounterClaimNo          CounterName = "claim_no"
)

// Width returns the fixed digit width the counter's values are formatted to.
// A counter wraps to 0 when its incremented value reaches 10^Width − 1.
func (c CounterName) Width() int {
	switch c {
	case CounterInterchangeCtlNo:
		return 9
	case CounterProviderCtlNo:
		return 8
	case CounterClaimNo:
		return 15
	default:
		return 0
	}
}

// SequenceCounters is the single shared record holding the three wrapping
// claim sequences. Mutated exclusively through transactional read-increment-
// write; this is the only concurrency-critical shared state in the service.
type SequenceCounters struct {
	Version              string `db:"version"`
	NextInterchangeCtlNo int64  `db:"next_interchange_ctl_no"`
	NextProviderCtlNo    int64  `db:"next_provider_ctl_no"`
	NextClaimNo          int64  `db:"next_claim_no"`
}

// Batch is one submitted claim file. Created once, never mutated.
type Batch struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	CreatedBy        string         `db:"created_by" json:"created_by"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	SessionIDs       pq.StringArray `db:"session_ids" json:"session_ids"`
	NumClaims        int            `db:"num_claims" json:"num_claims"`
	TotalChargeCents int64          `db:"total_charge_cents" json:"total_charge_cents"`
}

// ClaimTemplates is the named template set for one batch format version.
// Placeholders use {{name}} tokens.
type ClaimTemplates struct {
	Version              string `db:"version"`
	Header               string `db:"header"`
	PatientSelf          string `db:"patient_self"`
	PatientOther         string `db:"patient_other"`
	Claim                string `db:"claim"`
	ServiceLine          string `db:"service_line"`
	ServiceLineDelimiter string `db:"service_line_delimiter"`
	Footer               string `db:"footer"`
}
