// Package webhook fetches the raw opportunity payload from the remote
// revenue webhook. The contract is deliberately loose: one GET, no
// parameters, and a body holding either a single JSON object or an array.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	apierrors "revpulse/internal/errors"
)

// DefaultTimeout bounds the single webhook call when the config does not
// say otherwise.
const DefaultTimeout = 15 * time.Second

// Client issues the webhook GET and decodes the payload into a raw
// collection ready for normalization.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a webhook client for the given URL.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "webhook")),
	}
}

// Fetch performs the single GET against the webhook and returns the decoded
// collection. A single top-level object is wrapped into a one-element
// collection; non-object elements decode to nil maps so the normalizer's
// default-filling applies. An empty collection is returned as-is; deciding
// what empty means is the loader's job, not the transport's.
func (c *Client) Fetch(ctx context.Context) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierrors.ErrWebhookUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %d", apierrors.ErrWebhookStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", apierrors.ErrWebhookUnavailable, err)
	}

	collection, err := decodeCollection(body)
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "webhook payload fetched",
		slog.Int("status", resp.StatusCode),
		slog.Int("records", len(collection)),
		slog.String("duration", time.Since(start).String()))

	return collection, nil
}

// decodeCollection tolerates every payload shape the webhook is known to
// produce: an array of objects, a single object, and the occasional bare
// scalar. Only bodies that are not valid JSON at all are errors.
func decodeCollection(body []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: body is empty", apierrors.ErrPayloadDecode)
	}

	switch trimmed[0] {
	case '[':
		var list []any
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("%w: parse array: %v", apierrors.ErrPayloadDecode, err)
		}
		collection := make([]map[string]any, 0, len(list))
		for _, el := range list {
			obj, _ := el.(map[string]any)
			collection = append(collection, obj)
		}
		return collection, nil
	case '{':
		var single map[string]any
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("%w: parse object: %v", apierrors.ErrPayloadDecode, err)
		}
		return []map[string]any{single}, nil
	default:
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("%w: body is not valid JSON", apierrors.ErrPayloadDecode)
		}
		// Bare scalar: one record, all defaults.
		return []map[string]any{nil}, nil
	}
}
