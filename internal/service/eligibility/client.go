package eligibility

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/brightside-counseling/claims-api/internal/model"
)

const cacheTTL = 14 * 24 * time.Hour

// payerCodes translates the payer names collected on intake forms into the
// verification service's payer codes.
var payerCodes = map[string]string{
	"Aetna":                                   "00001",
	"AmeriHealth (DE, NJ, PA)":                "000929",
	"AmeriHealth Administrators":              "00460",
	"AmeriHealth Caritas DC":                  "00996",
	"AmeriHealth Caritas Delaware":            "01413",
	"AmeriHealth Caritas Iowa":                "00997",
	"AmeriHealth Caritas Louisiana (LaCare)":  "00998",
	"AmeriHealth Caritas PA":                  "00351",
	"AmeriHealth Caritas VIP Care Plus":       "00999",
	"AmeriHealth New Jersey":                  "01000",
	"AmeriHealth Northeast Pennsylvania":      "01001",
	"AmeriHealth Pennsylvania":                "01002",
	"AmeriHealth VIP Care":                    "01003",
	"Blue Cross Blue Shield":                  "S001",
	"Capital Blue Cross":                      "00060",
	"Cigna":                                   "00510",
	"Independence Blue Cross":                 "00115",
	"Highmark":                                "01136",
	"Magellan":                                "00676",
	"Optum":                                   "UHG007",
	"United Healthcare":                       "00192",
	"Trustmark":                               "00189",
	"IBC Personal Choice":                     "00115",
	"Independence Administrators":             "00435",
	"Keystone Health Plan East":               "00115",
	"Meritain Health":                         "00893",
	"OptumHealth Behavioral":                  "UHG007",
	"Highmark Blue Cross":                     "S001",
}

type Config struct {
	BaseURL          string
	ClientID         string
	ClientSecret     string
	ProviderLastName string
	ProviderNPI      string
	PracticeTypeCode string
	Location         string
	Timeout          time.Duration
}

// Client queries the practice's eligibility verification service. Lookups
// run behind a circuit breaker; verified records are cached for the refresh
// window keyed by payer code and member id.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	cache   Cache
	logger  zerolog.Logger
}

func NewClient(cfg Config, cache Cache, logger zerolog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "eligibility",
			MaxRequests: 3,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
		}),
		cache:  cache,
		logger: logger.With().Str("component", "eligibility").Logger(),
	}
}

// Verify runs a coverage summary lookup for the subscriber. An unknown payer
// or a summary the service could not produce comes back as a Failed record,
// not an error; errors are reserved for transport-level failures.
func (c *Client) Verify(ctx context.Context, q Query) (*Record, error) {
	payerCode, ok := payerCodes[q.Payer]
	if !ok {
		c.logger.Warn().Str("payer", q.Payer).Msg("no payer code for eligibility lookup")
		return &Record{Status: StatusFailed}, nil
	}

	key := cacheKey(payerCode, q.MemberID)
	if c.cache != nil {
		if record, ok := c.cache.Get(ctx, key); ok {
			c.logger.Debug().Str("payer_code", payerCode).Msg("eligibility cache hit")
			return record, nil
		}
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.lookup(ctx, payerCode, q)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrEligibilityFailed, err)
	}

	record := result.(*Record)
	if c.cache != nil && record.Status != StatusFailed {
		c.cache.Set(ctx, key, record, cacheTTL)
	}
	return record, nil
}

func (c *Client) lookup(ctx context.Context, payerCode string, q Query) (*Record, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	today := time.Now().Format("01/02/2006")
	payload := summaryRequest{
		PayerCode: payerCode,
		Provider: summaryProvider{
			LastName: c.cfg.ProviderLastName,
			NPI:      c.cfg.ProviderNPI,
		},
		Subscriber: summarySubscriber{
			MemberID:  q.MemberID,
			FirstName: q.FirstName,
			LastName:  q.LastName,
			DOB:       q.DOB,
		},
		IsSubscriberPatient: "True",
		DoSStartDate:        today,
		DoSEndDate:          today,
		PracticeTypeCode:    c.cfg.PracticeTypeCode,
		Location:            c.cfg.Location,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/API/EligibilitySummary", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Client-API-Id", c.cfg.ClientID)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("summary request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("summary request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var summary summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary response: %w", err)
	}

	return flatten(&summary, payerCode, q), nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("Client_Id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/Token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Client-API-Id", c.cfg.ClientID)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned %d", resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}
	return token.AccessToken, nil
}

// flatten reduces the verification service's nested summary to the fixed
// record shape, defaulting absent fields to "N/A".
func flatten(s *summaryResponse, payerCode string, q Query) *Record {
	status := s.PlanCoverageSummary.Status
	if status != StatusActive && status != StatusInactive {
		status = StatusFailed
	}

	return &Record{
		Status:                        status,
		PayerCode:                     payerCode,
		PlanName:                      orUnknown(s.PlanCoverageSummary.PlanName),
		GroupName:                     orUnknown(s.PlanCoverageSummary.GroupName),
		Copay:                         orUnknown(s.MentalHealthSummary.CoPayInNet.text()),
		CoInsuranceInNet:              orUnknown(s.MentalHealthSummary.CoInsInNet.text()),
		MemberID:                      firstOf(s.MiscellaneousInfoSummary.MemberID, q.MemberID),
		Provider:                      firstOf(s.PayerName, q.Payer),
		Subscriber:                    firstOf(s.DemographicInfo.Subscriber.FullName, q.FirstName+" "+q.LastName),
		RelationshipToInsured:         strings.ToLower(s.DemographicInfo.Subscriber.Relationship),
		IndivDeductibleInNet:          orUnknown(s.DeductibleOOPSummary.IndividualDeductibleInNet.text()),
		IndivDeductibleInNetRemaining: orUnknown(s.DeductibleOOPSummary.IndividualDeductibleRemainingInNet.text()),
		FamDeductibleInNet:            orUnknown(s.DeductibleOOPSummary.FamilyDeductibleInNet.text()),
		FamDeductibleInNetRemaining:   orUnknown(s.DeductibleOOPSummary.FamilyDeductibleRemainingInNet.text()),
	}
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return model.CoverageUnknown
	}
	return v
}

func firstOf(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type summaryRequest struct {
	PayerCode           string            `json:"payerCode"`
	Provider            summaryProvider   `json:"provider"`
	Subscriber          summarySubscriber `json:"subscriber"`
	IsSubscriberPatient string            `json:"isSubscriberPatient"`
	DoSStartDate        string            `json:"doS_StartDate"`
	DoSEndDate          string            `json:"doS_EndDate"`
	PracticeTypeCode    string            `json:"practiceTypeCode"`
	Location            string            `json:"location"`
}

type summaryProvider struct {
	LastName string `json:"lastName"`
	NPI      string `json:"npi"`
}

type summarySubscriber struct {
	MemberID  string `json:"memberId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	DOB       string `json:"dob"`
}

type valueNotes struct {
	Value string `json:"Value"`
	Notes string `json:"Notes"`
}

// text prefers the amount, falling back to the service's notes field.
func (v valueNotes) text() string {
	if strings.TrimSpace(v.Value) != "" {
		return v.Value
	}
	return v.Notes
}

type summaryResponse struct {
	PayerName           string `json:"PayerName"`
	PlanCoverageSummary struct {
		Status   string `json:"Status"`
		PlanName string `json:"PlanName"`
		GroupName string `json:"GroupName"`
	} `json:"PlanCoverageSummary"`
	MentalHealthSummary struct {
		CoPayInNet valueNotes `json:"CoPayInNet"`
		CoInsInNet valueNotes `json:"CoInsInNet"`
	} `json:"MentalHealthSummary"`
	DeductibleOOPSummary struct {
		IndividualDeductibleInNet          valueNotes `json:"IndividualDeductibleInNet"`
		IndividualDeductibleRemainingInNet valueNotes `json:"IndividualDeductibleRemainingInNet"`
		FamilyDeductibleInNet              valueNotes `json:"FamilyDeductibleInNet"`
		FamilyDeductibleRemainingInNet     valueNotes `json:"FamilyDeductibleRemainingInNet"`
	} `json:"HBPC_Deductible_OOP_Summary"`
	MiscellaneousInfoSummary struct {
		MemberID string `json:"MemberID"`
	} `json:"MiscellaneousInfoSummary"`
	DemographicInfo struct {
		Subscriber struct {
			FullName     string `json:"FullName"`
			Relationship string `json:"Relationship"`
		} `json:"Subscriber"`
	} `json:"DemographicInfo"`
}
