package model

import (
	"strings"
	"time"
)

// Coverage field sentinels. CoverageInactive is written into every coverage
// field when an eligibility lookup reports the plan inactive; any session for
// that patient fails validation until the next refresh window.
const (
	CoverageInactive = "INACTIVE"
	CoverageUnknown  = "N/A"

	// SelfPayPayer marks patients billed directly rather than through a payer.
	SelfPayPayer = "Out of Pocket/Other"
)

// Patient is the demographic and insurance profile used for claim generation.
// The coverage fields mirror the eligibility service's summary response and
// are refreshed by the validator when InsuranceModified is stale.
type Patient struct {
	Base
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Street    string    `db:"street" json:"street"`
	City      string    `db:"city" json:"city"`
	State     string    `db:"state" json:"state"`
	ZipCode   string    `db:"zip_code" json:"zip_code"`
	DOB       time.Time `db:"dob" json:"dob"`
	Gender    string    `db:"gender" json:"gender"`

	Payer                 string     `db:"payer" json:"payer"`
	PayerID               string     `db:"payer_id" json:"payer_id"`
	MemberID              string     `db:"member_id" json:"member_id"`
	Subscriber            string     `db:"subscriber" json:"subscriber"`
	RelationshipToInsured string     `db:"relationship_to_insured" json:"relationship_to_insured"`
	GroupName             string     `db:"group_name" json:"group_name"`
	PlanName              string     `db:"plan_name" json:"plan_name"`
	InsuranceModified     *time.Time `db:"insurance_modified" json:"insurance_modified,omitempty"`

	Copay                         string `db:"copay" json:"copay"`
	CoInsuranceInNet              string `db:"co_insurance_in_net" json:"co_insurance_in_net"`
	IndivDeductibleInNet          string `db:"indiv_deductible_in_net" json:"indiv_deductible_in_net"`
	IndivDeductibleInNetRemaining string `db:"indiv_deductible_in_net_remaining" json:"indiv_deductible_in_net_remaining"`
	FamDeductibleInNet            string `db:"fam_deductible_in_net" json:"fam_deductible_in_net"`
	FamDeductibleInNetRemaining   string `db:"fam_deductible_in_net_remaining" json:"fam_deductible_in_net_remaining"`
}

// SubscriberFirstName returns the leading name component of the subscriber,
// or "" when no subscriber is recorded.
func (p *Patient) SubscriberFirstName() string {
	first, _ := splitName(p.Subscriber)
	return first
}

// SubscriberLastName returns the trailing name component of the subscriber,
// or "" when the subscriber has no surname recorded.
func (p *Patient) SubscriberLastName() string {
	_, last := splitName(p.Subscriber)
	return last
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[len(parts)-1]
	}
}
