// Package vendorapi is the shared plumbing for the per-vendor REST clients:
// one JSON call in, one JSON response out, and a normalized error shape for
// non-2xx answers. No retries live here; every vendor call is fire-once.
package vendorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Error is the normalized failure shape for a vendor call.
type Error struct {
	Message      string
	VendorStatus int
	VendorBody   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (vendor status %d): %s", e.Message, e.VendorStatus, e.VendorBody)
}

// Caller issues authenticated JSON calls against one vendor's base URL.
type Caller struct {
	HTTP    *http.Client
	BaseURL string
	// Auth decorates each request with the vendor's auth scheme
	// (bearer token, api key header).
	Auth func(ctx context.Context, req *http.Request) error
}

// Do performs one call. in is marshaled as the JSON body when non-nil; out
// is unmarshaled from the response body when non-nil.
func (c *Caller) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if c.Auth != nil {
		if err := c.Auth(ctx, req); err != nil {
			return fmt.Errorf("failed to authenticate request: %w", err)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("vendor call %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read vendor response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Message:      fmt.Sprintf("vendor returned %s for %s %s", resp.Status, method, path),
			VendorStatus: resp.StatusCode,
			VendorBody:   string(raw),
		}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode vendor response: %w", err)
		}
	}
	return nil
}
