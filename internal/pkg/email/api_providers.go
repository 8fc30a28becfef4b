// internal/pkg/email/api_providers.go
package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTP email providers. Each sender builds the provider's payload
// shape and posts it through the shared JSON helper.

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type sendGridRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
	ReplyTo          *sendGridAddress          `json:"reply_to,omitempty"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailerSendRequest struct {
	From    mailerSendAddress   `json:"from"`
	To      []mailerSendAddress `json:"to"`
	Subject string              `json:"subject"`
	HTML    string              `json:"html"`
	ReplyTo *mailerSendAddress  `json:"reply_to,omitempty"`
	Tags    []string            `json:"tags,omitempty"`
}

type mailerSendAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func (s *EmailService) sendResendEmail(email *Email) error {
	cfg := s.config.External.Email
	if cfg.APIKey == "" {
		return fmt.Errorf("Resend API key not configured")
	}

	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}

	payload := resendRequest{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTMLContent,
		ReplyTo: cfg.ReplyTo,
	}

	return s.postJSON("Resend", "https://api.resend.com/emails", cfg.APIKey, payload, http.StatusOK)
}

func (s *EmailService) sendSendGridEmail(email *Email) error {
	cfg := s.config.External.Email
	if cfg.APIKey == "" {
		return fmt.Errorf("SendGrid API key not configured")
	}

	to := make([]sendGridAddress, 0, len(email.To))
	for _, recipient := range email.To {
		to = append(to, sendGridAddress{Email: recipient})
	}

	var replyTo *sendGridAddress
	if cfg.ReplyTo != "" {
		replyTo = &sendGridAddress{Email: cfg.ReplyTo}
	}

	payload := sendGridRequest{
		Personalizations: []sendGridPersonalization{{To: to}},
		From:             sendGridAddress{Email: cfg.FromEmail, Name: cfg.FromName},
		Subject:          email.Subject,
		Content:          []sendGridContent{{Type: "text/html", Value: email.HTMLContent}},
		ReplyTo:          replyTo,
	}

	return s.postJSON("SendGrid", "https://api.sendgrid.com/v3/mail/send", cfg.APIKey, payload, http.StatusAccepted)
}

func (s *EmailService) sendMailerSendEmail(email *Email) error {
	cfg := s.config.External.Email
	if cfg.APIKey == "" {
		return fmt.Errorf("MailerSend API key not configured")
	}

	to := make([]mailerSendAddress, 0, len(email.To))
	for _, recipient := range email.To {
		to = append(to, mailerSendAddress{Email: recipient})
	}

	var replyTo *mailerSendAddress
	if cfg.ReplyTo != "" {
		replyTo = &mailerSendAddress{Email: cfg.ReplyTo}
	}

	payload := mailerSendRequest{
		From:    mailerSendAddress{Email: cfg.FromEmail, Name: cfg.FromName},
		To:      to,
		Subject: email.Subject,
		HTML:    email.HTMLContent,
		ReplyTo: replyTo,
		Tags:    []string{string(email.Type)},
	}

	return s.postJSON("MailerSend", "https://api.mailersend.com/v1/email", cfg.APIKey, payload, http.StatusAccepted)
}

// postJSON marshals the payload and posts it with a bearer token,
// treating any status other than wantStatus as failure.
func (s *EmailService) postJSON(provider, url, apiKey string, payload interface{}, wantStatus int) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", provider, err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", provider, err)
	}

	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s request: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%s API returned status %d", provider, resp.StatusCode)
	}

	return nil
}
