package eligibility

import "context"

// Plan statuses the rest of the pipeline keys on. Anything the verification
// service returns outside Active/Inactive is folded into StatusFailed.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
	StatusFailed   = "Failed"
)

// Query identifies the subscriber whose coverage is being verified.
type Query struct {
	FirstName string
	LastName  string
	DOB       string // MM/DD/YYYY
	Payer     string
	MemberID  string
}

// Record is the flattened coverage summary the validator merges into the
// patient. String fields absent from the upstream response hold "N/A".
type Record struct {
	Status                        string `json:"status"`
	PayerCode                     string `json:"payer_code"`
	PlanName                      string `json:"plan_name"`
	GroupName                     string `json:"group_name"`
	Copay                         string `json:"copay"`
	CoInsuranceInNet              string `json:"co_insurance_in_net"`
	MemberID                      string `json:"member_id"`
	Provider                      string `json:"provider"`
	Subscriber                    string `json:"subscriber"`
	RelationshipToInsured         string `json:"relationship_to_insured"`
	IndivDeductibleInNet          string `json:"indiv_deductible_in_net"`
	IndivDeductibleInNetRemaining string `json:"indiv_deductible_in_net_remaining"`
	FamDeductibleInNet            string `json:"fam_deductible_in_net"`
	FamDeductibleInNetRemaining   string `json:"fam_deductible_in_net_remaining"`
}

// Verifier is the eligibility-lookup collaborator the validator depends on.
type Verifier interface {
	Verify(ctx context.Context, q Query) (*Record, error)
}
