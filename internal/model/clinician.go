package model

import "github.com/google/uuid"

// Clinician is a rendering provider. A clinician under supervision bills
// through the top of their supervisor chain; the chain must terminate.
type Clinician struct {
	Base
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	NPI          string     `db:"npi" json:"npi"`
	TaxonomyCode string     `db:"taxonomy_code" json:"taxonomy_code"`
	SupervisorID *uuid.UUID `db:"supervisor_id" json:"supervisor_id,omitempty"`
}
