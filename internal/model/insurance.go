package model

// InsuranceMapping translates a payer identifier into the clearinghouse's
// payer code and claim filing indicator. Immutable reference data.
type InsuranceMapping struct {
	PayerID           string `db:"payer_id" json:"payer_id"`
	PayerName         string `db:"payer_name" json:"payer_name"`
	ClearinghouseCode string `db:"clearinghouse_code" json:"clearinghouse_code"`
	ClaimIndicator    string `db:"claim_indicator" json:"claim_indicator"`
}

// CPTCode maps a procedure code to its standard charge. Immutable reference
// data, cached for the process lifetime after first lookup.
type CPTCode struct {
	Code        string `db:"code" json:"code"`
	ChargeCents int64  `db:"charge_cents" json:"charge_cents"`
}
