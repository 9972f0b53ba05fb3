// Package storage publishes rendered artifacts to a Supabase-style object
// store over its HTTP API: one call to upload the object, one to mint a
// time-bounded signed retrieval URL.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to the object store with a bearer service key.
type Client struct {
	baseURL string
	bucket  string
	apiKey  string
	client  *http.Client
}

// NewClient creates a storage client. timeout <= 0 selects the default.
func NewClient(baseURL, bucket, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		bucket:  bucket,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ObjectName builds the artifact object name for a category label:
// {sanitized-category}_{UTC timestamp YYYYMMDDHHMMSS}.pdf
func ObjectName(category string, now time.Time) string {
	return fmt.Sprintf("%s_%s.pdf", sanitizePart(category), now.UTC().Format("20060102150405"))
}

// sanitizePart restricts a name fragment to characters safe in object keys.
func sanitizePart(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "checklist"
	}
	return b.String()
}

// Upload stores body under object in the configured bucket.
func (c *Client) Upload(ctx context.Context, object, contentType string, body []byte) error {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, object)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upload object: status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// SignURL requests a signed retrieval URL for object, valid for ttl.
func (c *Client) SignURL(ctx context.Context, object string, ttl time.Duration) (string, error) {
	payload, err := json.Marshal(map[string]int{"expiresIn": int(ttl.Seconds())})
	if err != nil {
		return "", fmt.Errorf("marshal sign request: %w", err)
	}

	url := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", c.baseURL, c.bucket, object)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create sign request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sign object url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("sign object url: status %d: %s", resp.StatusCode, detail)
	}

	var out struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode sign response: %w", err)
	}
	if out.SignedURL == "" {
		return "", fmt.Errorf("sign object url: empty signed url in response")
	}

	// The store answers with a path relative to its storage API root.
	if strings.HasPrefix(out.SignedURL, "http") {
		return out.SignedURL, nil
	}
	if !strings.HasPrefix(out.SignedURL, "/") {
		out.SignedURL = "/" + out.SignedURL
	}
	return c.baseURL + "/storage/v1" + out.SignedURL, nil
}
