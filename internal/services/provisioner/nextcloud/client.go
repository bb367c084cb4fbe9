// Package nextcloud implements the remote provider boundaries against a
// Nextcloud server: OCS provisioning, WebDAV storage, Talk, CalDAV, Deck,
// and admin notifications.
package nextcloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/louisbranch/workroom.space/internal/platform/timeouts"
)

// Config carries the server location and the administrator credentials
// every API family authenticates with.
type Config struct {
	BaseURL   string
	AdminUser string
	AdminPass string

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client

	Logf func(format string, args ...any)
}

// Client talks to one Nextcloud server. It satisfies the domain provider
// interfaces for identity, files, chat, calendar, board, and notifier.
type Client struct {
	baseURL   string
	adminUser string
	adminPass string
	http      *http.Client
	logf      func(format string, args ...any)
}

// New builds a client for the given server.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeouts.RemoteCall}
	}
	logf := cfg.Logf
	if logf == nil {
		logf = log.Printf
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		adminUser: cfg.AdminUser,
		adminPass: cfg.AdminPass,
		http:      httpClient,
		logf:      logf,
	}
}

// ocsEnvelope is the wrapper every OCS endpoint responds with.
type ocsEnvelope struct {
	OCS struct {
		Meta struct {
			Status     string `json:"status"`
			StatusCode int    `json:"statuscode"`
			Message    string `json:"message"`
		} `json:"meta"`
		Data json.RawMessage `json:"data"`
	} `json:"ocs"`
}

// ocsError reports a request the server accepted but refused at the OCS
// layer, keeping the meta statuscode addressable for idempotency checks.
type ocsError struct {
	statusCode int
	message    string
}

func (e *ocsError) Error() string {
	return fmt.Sprintf("ocs statuscode %d: %s", e.statusCode, e.message)
}

// ocsForm issues a form-encoded OCS request and decodes the envelope.
// into, when non-nil, receives the envelope's data payload.
func (c *Client) ocsForm(ctx context.Context, method string, path string, form url.Values, into any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return c.doOCS(req, into)
}

// ocsJSON issues a JSON-bodied OCS request, used by the Talk and Deck apps.
func (c *Client) ocsJSON(ctx context.Context, method string, path string, payload any, into any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doOCS(req, into)
}

func (c *Client) doOCS(req *http.Request, into any) error {
	req.Header.Set("OCS-APIRequest", "true")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.adminUser, c.adminPass)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", req.Method, req.URL.Path, err)
	}

	var envelope ocsEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		if resp.StatusCode >= 400 {
			return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: decode envelope: %w", req.Method, req.URL.Path, err)
	}

	meta := envelope.OCS.Meta
	if meta.Status != "ok" {
		return &ocsError{statusCode: meta.StatusCode, message: meta.Message}
	}
	if into != nil && len(envelope.OCS.Data) > 0 {
		if err := json.Unmarshal(envelope.OCS.Data, into); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", req.Method, req.URL.Path, err)
		}
	}
	return nil
}

// dav issues a raw WebDAV request and returns the response status code.
// The body is drained and closed so the transport can reuse connections.
func (c *Client) dav(ctx context.Context, method string, path string, contentType string, body io.Reader) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.SetBasicAuth(c.adminUser, c.adminPass)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// isOCSAlreadyExists recognizes the statuscode Nextcloud uses when the
// entity being created is already present.
func isOCSAlreadyExists(err error) bool {
	var ocsErr *ocsError
	return errors.As(err, &ocsErr) && ocsErr.statusCode == 102
}

func ocsStatusCode(err error) int {
	var ocsErr *ocsError
	if errors.As(err, &ocsErr) {
		return ocsErr.statusCode
	}
	return 0
}
