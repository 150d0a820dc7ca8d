package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"granbokning/internal/config"
	"granbokning/internal/models"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendMailer sends confirmation emails through the Resend HTTP API.
type ResendMailer struct {
	apiKey   string
	from     string
	subject  string
	payment  config.PaymentConfig
	endpoint string
	client   *http.Client
}

func NewResendMailer(cfg config.NotificationsConfig, payment config.PaymentConfig) *ResendMailer {
	return &ResendMailer{
		apiKey:   cfg.ResendAPIKey,
		from:     cfg.FromEmail,
		subject:  cfg.Subject,
		payment:  payment,
		endpoint: resendEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// Send delivers one confirmation email and returns the provider message id.
func (m *ResendMailer) Send(ctx context.Context, booking *models.Booking) (string, error) {
	if booking.Email == "" {
		return "", fmt.Errorf("booking %d has no email address", booking.ID)
	}

	html, err := RenderConfirmation(booking, m.payment)
	if err != nil {
		return "", fmt.Errorf("render confirmation: %w", err)
	}

	payload := resendRequest{
		From:    m.from,
		To:      []string{booking.Email},
		Subject: m.subject,
		HTML:    html,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("resend returned %d: %s", resp.StatusCode, detail)
	}

	var result resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode resend response: %w", err)
	}
	return result.ID, nil
}
