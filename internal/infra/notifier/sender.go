package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"time"

	"commerce-core/internal/pkg/config"
	"commerce-core/internal/pkg/errs"
)

// EmailSender delivers the primary channel over plain SMTP.
type EmailSender struct {
	addr string
	from string
}

func NewEmailSender(cfg config.NotifyConfig) *EmailSender {
	return &EmailSender{addr: cfg.SMTPAddr, from: cfg.SMTPFrom}
}

func (s *EmailSender) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return errs.New("recipient email is blank")
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.from, to, subject, body)
	if err := smtp.SendMail(s.addr, nil, s.from, []string{to}, []byte(msg)); err != nil {
		return errs.Wrap(err, "smtp delivery failed")
	}
	return nil
}

// SMSSender is the fallback channel: a JSON POST to the SMS provider.
type SMSSender struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewSMSSender(cfg config.NotifyConfig) *SMSSender {
	return &SMSSender{
		endpoint: cfg.SMSEndpoint,
		apiKey:   cfg.SMSAPIKey,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SMSSender) Send(ctx context.Context, phone, text string) error {
	if s.endpoint == "" {
		return errs.New("sms endpoint not configured")
	}
	if phone == "" {
		return errs.New("recipient phone is blank")
	}

	payload, err := json.Marshal(map[string]string{
		"to":      phone,
		"message": text,
	})
	if err != nil {
		return errs.Wrap(err, "failed to encode sms payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return errs.Wrap(err, "failed to build sms request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return errs.Wrap(err, "sms request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return errs.New(fmt.Sprintf("sms provider returned status %d", resp.StatusCode))
	}
	return nil
}
