// Package mailer delivers the checklist email through a Resend-style HTTP
// API: bearer-token auth, JSON body {from, to, subject, html}.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"
)

// DefaultEndpoint is the hosted mail transport API root.
const DefaultEndpoint = "https://api.resend.com"

const defaultTimeout = 20 * time.Second

// Outcome is the transport's answer to one send. It feeds logging and
// metrics only and is never persisted.
type Outcome struct {
	StatusCode int
	Body       string
}

// Succeeded reports whether the transport accepted the message.
func (o Outcome) Succeeded() bool {
	return o.StatusCode >= 200 && o.StatusCode < 300
}

var bodyTmpl = template.Must(template.New("checklist").Parse(
	`<p>Hi {{.Petitioner}},</p>
<p>Here is your personalized checklist for your {{.Category}} application.</p>
<p><a href="{{.URL}}">Click here to download your checklist PDF</a></p>
<br><p>Best,<br>The {{.Team}} Team</p>`))

// Client sends checklist emails.
type Client struct {
	endpoint string
	apiKey   string
	from     string
	team     string
	subject  string
	client   *http.Client
}

// NewClient creates a mail client. endpoint "" selects DefaultEndpoint;
// timeout <= 0 selects the default send timeout.
func NewClient(endpoint, apiKey, fromName, fromAddr, subject string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	from := fromAddr
	team := fromName
	if fromName != "" {
		from = fmt.Sprintf("%s <%s>", fromName, fromAddr)
	} else {
		team = "Checklist"
	}

	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		team:     team,
		subject:  subject,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// SendChecklist emails the signed retrieval URL to the buyer. A non-2xx
// transport status is an error; the Outcome carries status and body for the
// logs either way.
func (c *Client) SendChecklist(ctx context.Context, to, petitioner, category, signedURL string) (Outcome, error) {
	var html bytes.Buffer
	err := bodyTmpl.Execute(&html, map[string]string{
		"Petitioner": petitioner,
		"Category":   category,
		"URL":        signedURL,
		"Team":       c.team,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("render email body: %w", err)
	}

	payload, err := json.Marshal(map[string]string{
		"from":    c.from,
		"to":      to,
		"subject": c.subject,
		"html":    html.String(),
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/emails", bytes.NewReader(payload))
	if err != nil {
		return Outcome{}, fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	outcome := Outcome{StatusCode: resp.StatusCode, Body: string(body)}
	if !outcome.Succeeded() {
		return outcome, fmt.Errorf("mail transport returned status %d", resp.StatusCode)
	}
	return outcome, nil
}
