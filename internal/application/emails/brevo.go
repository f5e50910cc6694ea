package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender `json:"sender"`
	To          []BrevoTo   `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Sender sends transactional emails. Nil = no-op.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, username string) error
	SendDealerInquiry(ctx context.Context, toEmail, businessName, subject string) error
	SendDealerResponse(ctx context.Context, toEmail, businessName, subject string) error
}

// BrevoClient sends emails via the Brevo (Sendinblue) API.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@akrion.in"
}

// send sends one email via Brevo API.
func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "Akrion"},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPI, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendWelcome sends the welcome email after account creation.
func (c *BrevoClient) SendWelcome(ctx context.Context, toEmail, username string) error {
	if c.APIKey == "" {
		return nil
	}
	if username == "" {
		username = "there"
	}
	content := fmt.Sprintf(`
    <h1>Welcome to Akrion, %s!</h1>
    <p>Your account is ready. List your scrap, give reusable items a second life, and compare dealer prices before you sell.</p>
    <p>Every completed exchange earns you eco points.</p>
    <p style="margin-top: 20px; font-size: 14px; color: #666;">
      If you did not sign up for this account, please contact support immediately.
    </p>
`, EscapeHTML(username))
	return c.send(ctx, toEmail, "Welcome to Akrion!", EmailLayout(content))
}

// SendDealerInquiry notifies a dealer of a new message in their inbox.
func (c *BrevoClient) SendDealerInquiry(ctx context.Context, toEmail, businessName, subject string) error {
	if c.APIKey == "" {
		return nil
	}
	content := fmt.Sprintf(`
    <h1>New Inquiry for %s</h1>
    <p>A user has sent you an inquiry: <strong>%s</strong></p>
    <p>Log in to your dealer inbox to respond.</p>
`, EscapeHTML(businessName), EscapeHTML(subject))
	return c.send(ctx, toEmail, "New inquiry: "+subject, EmailLayout(content))
}

// SendDealerResponse notifies a user that a dealer answered their inquiry.
func (c *BrevoClient) SendDealerResponse(ctx context.Context, toEmail, businessName, subject string) error {
	if c.APIKey == "" {
		return nil
	}
	content := fmt.Sprintf(`
    <h1>%s Replied to Your Inquiry</h1>
    <p>The dealer has answered your inquiry: <strong>%s</strong></p>
    <p>Log in to read the response.</p>
`, EscapeHTML(businessName), EscapeHTML(subject))
	return c.send(ctx, toEmail, "Reply to your inquiry: "+subject, EmailLayout(content))
}
