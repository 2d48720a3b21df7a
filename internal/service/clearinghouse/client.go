package clearinghouse

import (
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

// Submitter uploads one rendered claim batch as a single flat request.
type Submitter interface {
	Submit(ctx context.Context, batch string) error
}

type Config struct {
	TokenURL     string
	UploadURL    string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	Timeout      time.Duration
}

// Client talks to the claims clearinghouse: a password-grant token exchange
// followed by a batch upload. Only the clearinghouse's explicit
// accepted-for-processing status counts as success; any other response
// aborts the submission so no local state is mutated on a rejected batch.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "clearinghouse",
			MaxRequests: 1,
			Interval:    60 * time.Second,
			Timeout:     60 * time.Second,
		}),
		logger: logger.With().Str("component", "clearinghouse").Logger(),
	}
}

func (c *Client) Submit(ctx context.Context, batch string) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		token, err := c.authenticate(ctx)
		if err != nil {
			return nil, err
		}
		return nil, c.upload(ctx, token, batch)
	})
	return err
}

func (c *Client) authenticate(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("username", c.cfg.Username)
	form.Set("password", c.cfg.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrClearinghouseAuth, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrClearinghouseAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %d", model.ErrClearinghouseAuth, resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrClearinghouseAuth, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", model.ErrClearinghouseAuth)
	}
	return token.AccessToken, nil
}

func (c *Client) upload(ctx context.Context, token, batch string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.UploadURL, strings.NewReader(batch))
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrClearinghouseRejected, err)
	}
	req.Header.Set("Content-Type", "application/edi-x12")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrClearinghouseRejected, err)
	}
	defer resp.Body.Close()

	// Accepted-for-processing only. A generic 200 means the clearinghouse
	// did something other than queue the batch, and must not be treated as
	// a submission.
	if resp.StatusCode != http.StatusAccepted {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error().Int("status", resp.StatusCode).Str("body", strings.TrimSpace(string(data))).Msg("batch upload rejected")
		return fmt.Errorf("%w: upload returned %d", model.ErrClearinghouseRejected, resp.StatusCode)
	}
	return nil
}
