package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPEmitter POSTs collection reports to an upstream statistics
// endpoint.
type HTTPEmitter struct {
	endpoint string
	client   *http.Client
}

// NewHTTPEmitter creates an emitter targeting endpoint.
func NewHTTPEmitter(endpoint string, timeout time.Duration) *HTTPEmitter {
	return &HTTPEmitter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Emit ships one report; any non-2xx response is an error.
func (e *HTTPEmitter) Emit(ctx context.Context, report Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report for %s: %w", report.Kind, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("shipping %s report: %w", report.Kind, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("shipping %s report: unexpected status %s", report.Kind, resp.Status)
	}
	return nil
}

// Close shuts down idle connections.
func (e *HTTPEmitter) Close() error {
	e.client.CloseIdleConnections()
	return nil
}
