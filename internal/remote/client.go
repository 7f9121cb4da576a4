package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/pveldt/roster/internal/errors"
)

// Client talks to the persistence service. All calls are simple JSON
// request/response with no connection state held between them.
type Client struct {
	baseURL     string
	userContext string
	http        *http.Client
	logger      *slog.Logger
}

// NewClient creates a client for the service at baseURL, scoping every call
// to userContext.
func NewClient(baseURL, userContext string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		userContext: userContext,
		http:        &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
	}
}

// scope returns the UserScoped fragment for request bodies.
func (c *Client) scope() UserScoped {
	return UserScoped{UserContext: c.userContext}
}

// post sends a JSON body to an endpoint and decodes the JSON response into
// out (out may be nil for bare-ack endpoints). Transport failures and
// non-2xx responses surface as structured errors, never panics.
func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.NewInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return errors.NewInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewNetwork(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(endpoint, resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewNetwork(endpoint, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// postRaw sends a JSON body and returns the raw response bytes plus the
// filename from Content-Disposition. Used by the export endpoint.
func (c *Client) postRaw(ctx context.Context, endpoint string, body any) ([]byte, string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, "", errors.NewInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, "", errors.NewInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", errors.NewNetwork(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", decodeError(endpoint, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.NewNetwork(endpoint, err)
	}

	filename := ""
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			filename = params["filename"]
		}
	}
	return data, filename, nil
}

// decodeError converts an error response into a RosterError, preserving the
// server's code when the body parses as an error envelope.
func decodeError(endpoint string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var envelope errorEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Code != "" {
		return &errors.RosterError{
			Code:    errors.ErrorCode(envelope.Error.Code),
			Status:  resp.StatusCode,
			Message: envelope.Error.Message,
		}
	}
	return errors.NewNetwork(endpoint, fmt.Errorf("status %d", resp.StatusCode))
}
