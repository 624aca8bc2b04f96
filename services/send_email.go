package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sfrosal/portfolio-api/config"
	"github.com/sfrosal/portfolio-api/errs"
)

// ContactMessage is a contact-form submission.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Validate checks the submission limits and returns a validation error
// naming every offending field.
func (m ContactMessage) Validate() error {
	var fields []string
	var reasons []string

	if m.Name == "" || len(m.Name) > 100 {
		fields = append(fields, "name")
		reasons = append(reasons, "name is required and must be at most 100 characters")
	}
	if _, err := mail.ParseAddress(m.Email); err != nil || len(m.Email) > 100 {
		fields = append(fields, "email")
		reasons = append(reasons, "email must be a valid address of at most 100 characters")
	}
	if m.Subject == "" || len(m.Subject) > 200 {
		fields = append(fields, "subject")
		reasons = append(reasons, "subject is required and must be at most 200 characters")
	}
	if len(m.Message) < 10 || len(m.Message) > 1000 {
		fields = append(fields, "message")
		reasons = append(reasons, "message must be between 10 and 1000 characters")
	}

	if len(fields) > 0 {
		return errs.NewValidationError(fields, strings.Join(reasons, "; "))
	}
	return nil
}

// resendEmailRequest represents the request payload for the Resend API
type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// resendEmailResponse represents the response from the Resend API
type resendEmailResponse struct {
	ID string `json:"id"`
}

// resendErrorResponse represents an error response from the Resend API
type resendErrorResponse struct {
	Message string `json:"message"`
}

// ResendMailer relays contact-form submissions to the operator address
// through the Resend API.
//
// Required configuration:
//   - RESEND_API_KEY: the Resend API key
//   - RESEND_FROM_EMAIL: the sender address (e.g. "Portfolio <contact@example.com>")
//   - CONTACT_RECIPIENT: the operator address notified on each submission
type ResendMailer struct {
	apiKey     string
	from       string
	recipient  string
	baseURL    string
	httpClient *http.Client
}

func NewResendMailer(cfg map[string]string) *ResendMailer {
	apiKey := config.GetString(cfg, "RESEND_API_KEY", "")
	from := config.GetString(cfg, "RESEND_FROM_EMAIL", "")
	recipient := config.GetString(cfg, "CONTACT_RECIPIENT", "")
	if apiKey == "" || from == "" || recipient == "" {
		log.Warn().Msg("Resend mailer is not fully configured, contact submissions will fail")
	}

	return &ResendMailer{
		apiKey:     apiKey,
		from:       from,
		recipient:  recipient,
		baseURL:    "https://api.resend.com",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithBaseURL points the mailer at a different API endpoint. Used by tests.
func (m *ResendMailer) WithBaseURL(baseURL string) *ResendMailer {
	m.baseURL = baseURL
	return m
}

// SendContactEmail dispatches the submission to the operator address. The
// caller has already validated the message.
func (m *ResendMailer) SendContactEmail(ctx context.Context, msg ContactMessage) error {
	payload := resendEmailRequest{
		From:    m.from,
		To:      []string{m.recipient},
		Subject: fmt.Sprintf("[Portfolio] %s", msg.Subject),
		Html:    renderContactHTML(msg),
		Text:    renderContactText(msg),
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return errs.NewUpstreamError("mail transport", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.NewUpstreamError("mail transport", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp resendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return errs.NewUpstreamError("mail transport",
				fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message))
		}
		return errs.NewUpstreamError("mail transport",
			fmt.Errorf("resend API error (status %d)", resp.StatusCode))
	}

	var emailResponse resendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		log.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		log.Info().Str("emailId", emailResponse.ID).Msg("Contact email relayed via Resend")
	}

	return nil
}

func renderContactHTML(msg ContactMessage) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<h2>New portfolio contact message</h2>`)
	fmt.Fprintf(&b, `<p><strong>Name:</strong> %s</p>`, htmlEscape(msg.Name))
	fmt.Fprintf(&b, `<p><strong>Email:</strong> %s</p>`, htmlEscape(msg.Email))
	fmt.Fprintf(&b, `<p><strong>Subject:</strong> %s</p>`, htmlEscape(msg.Subject))
	fmt.Fprintf(&b, `<blockquote>%s</blockquote>`, strings.ReplaceAll(htmlEscape(msg.Message), "\n", "<br>"))
	b.WriteString(`<p style="color: #666; font-size: 12px;">Sent through the portfolio contact form.</p>`)
	b.WriteString(`</div>`)
	return b.String()
}

func renderContactText(msg ContactMessage) string {
	return fmt.Sprintf("New portfolio contact message\n\nName: %s\nEmail: %s\nSubject: %s\n\n%s\n",
		msg.Name, msg.Email, msg.Subject, msg.Message)
}

func htmlEscape(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return replacer.Replace(s)
}
