package mail

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/myanmatch/backend/internal/config"
)

// SMSSender posts a fixed-text OTP to the provider's HTTP gateway.
// It is optional: missing credentials degrade the reset flow to email only.
type SMSSender struct {
	apiKey string
	sender string
	apiURL string
	client *http.Client
}

// NewSMSSender builds the sender, or an error when credentials are absent.
func NewSMSSender(cfg *config.Config) (*SMSSender, error) {
	if cfg.SMS.APIKey == "" || cfg.SMS.URL == "" {
		return nil, fmt.Errorf("sms provider is not configured")
	}
	return &SMSSender{
		apiKey: cfg.SMS.APIKey,
		sender: cfg.SMS.Sender,
		apiURL: cfg.SMS.URL,
		client: &http.Client{},
	}, nil
}

// SendOTP delivers the fixed OTP text to a phone number.
func (s *SMSSender) SendOTP(ctx context.Context, phone, code string) error {
	form := url.Values{}
	form.Set("api_key", s.apiKey)
	form.Set("from", s.sender)
	form.Set("to", phone)
	form.Set("text", fmt.Sprintf("MyanMatch code: %s (expires in 10 minutes)", code))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
