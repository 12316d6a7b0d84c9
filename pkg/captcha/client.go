// Package captcha verifies reCAPTCHA v3 tokens submitted with the contact form.
// Uses raw HTTP calls; Google ships no Go SDK for siteverify.
package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultVerifyURL is Google's siteverify endpoint.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// ErrNotConfigured is returned when no secret is set.
var ErrNotConfigured = errors.New("captcha: not configured")

// Result is the outcome of verifying one token.
type Result struct {
	Success bool
	Score   float64
	Action  string
}

// Verifier checks captcha tokens.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (*Result, error)
}

// RealClient calls the reCAPTCHA siteverify API.
type RealClient struct {
	Secret     string
	VerifyURL  string
	httpClient *http.Client
}

// NewClient creates a RealClient. An empty secret yields ErrNotConfigured on Verify.
func NewClient(secret string) *RealClient {
	return &RealClient{
		Secret:     secret,
		VerifyURL:  DefaultVerifyURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

var _ Verifier = (*RealClient)(nil)

// Verify posts the token to siteverify and returns the score.
func (c *RealClient) Verify(ctx context.Context, token, remoteIP string) (*Result, error) {
	if c.Secret == "" {
		return nil, ErrNotConfigured
	}
	if token == "" {
		return &Result{}, nil
	}

	form := url.Values{}
	form.Set("secret", c.Secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("captcha verify: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Success    bool     `json:"success"`
		Score      float64  `json:"score"`
		Action     string   `json:"action"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if !body.Success && len(body.ErrorCodes) > 0 {
		return &Result{}, fmt.Errorf("captcha verify: %s", strings.Join(body.ErrorCodes, ","))
	}
	return &Result{Success: body.Success, Score: body.Score, Action: body.Action}, nil
}
