package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/raksetu/bloodhub/internal/domain/providers"
	"github.com/raksetu/bloodhub/pkg/config"
)

// HTTPSMSSender posts messages to the SMS relay's send-sms endpoint
type HTTPSMSSender struct {
	url        string
	httpClient *http.Client
}

// NewHTTPSMSSender creates a new SMS sender
func NewHTTPSMSSender(cfg *config.SMSConfig) providers.SMSSender {
	return &HTTPSMSSender{
		url: cfg.SendSMSURL(),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SMSRequest is the body accepted by the relay
type SMSRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// SendSMS sends message to the given phone number. Any 2xx status counts as
// delivered.
func (s *HTTPSMSSender) SendSMS(ctx context.Context, to, message string) error {
	if to == "" {
		return fmt.Errorf("sms recipient is empty")
	}

	jsonData, err := json.Marshal(SMSRequest{To: to, Message: message})
	if err != nil {
		return fmt.Errorf("failed to marshal sms: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sms relay error (status %d): %s", resp.StatusCode, string(body))
	}

	log.Info().Str("to", to).Msg("SMS sent")
	return nil
}
