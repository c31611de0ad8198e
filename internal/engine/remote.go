package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"gatekeeper-backend/internal/instrument"
	"gatekeeper-backend/internal/metadata"
)

// RemoteResponse is the raw outcome of a remote validation call.
type RemoteResponse struct {
	StatusCode int
	Body       []byte
}

// Transport performs the request/response round trip for async rules.
// Timeouts and retries are the transport's responsibility; the engine
// only propagates the caller's context.
type Transport interface {
	Do(ctx context.Context, method, url string, body []byte) (*RemoteResponse, error)
}

var remoteHTTPClient = &http.Client{Timeout: 30 * time.Second}

// HTTPTransport is the default Transport, backed by a shared HTTP client.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates an HTTPTransport using the shared client.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{client: remoteHTTPClient}
}

func (t *HTTPTransport) Do(ctx context.Context, method, url string, body []byte) (*RemoteResponse, error) {
	ctx, span := instrument.GetInstrumenter(ctx).StartSpan(ctx, "remote", "transport", "remote.dispatch")
	defer span.End()
	span.SetMetadata("url", url)
	span.SetMetadata("method", method)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		span.SetStatus("error")
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Idempotency-Key", "val_"+uuid.New().String())

	resp, err := t.client.Do(req)
	if err != nil {
		span.SetStatus("error")
		return nil, fmt.Errorf("http call: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024)) // max 64KB

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		span.SetStatus("ok")
	} else {
		span.SetStatus("error")
	}
	span.SetMetadata("status_code", resp.StatusCode)

	return &RemoteResponse{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// remoteVerdict is the JSON body a remote validator is expected to return.
type remoteVerdict struct {
	Valid   *bool  `json:"valid"`
	Message string `json:"message"`
}

// evaluateAsyncRule calls the rule's endpoint and interprets the JSON
// response. Transport failures, non-2xx statuses, and malformed bodies
// all fail closed.
func (e *Engine) evaluateAsyncRule(ctx context.Context, rule *metadata.Rule, vctx *metadata.ValidationContext) Result {
	method := strings.ToUpper(rule.Definition.Method)
	if method == "" {
		method = http.MethodPost
	}

	var body []byte
	if method != http.MethodGet {
		var err error
		body, err = json.Marshal(vctx.Record)
		if err != nil {
			return asyncFaultResult(rule, fmt.Sprintf("serialize record: %v", err))
		}
	}

	resp, err := e.transport.Do(ctx, method, rule.Definition.Endpoint, body)
	if err != nil {
		return asyncFaultResult(rule, err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return asyncFaultResult(rule, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	var verdict remoteVerdict
	if err := json.Unmarshal(resp.Body, &verdict); err != nil {
		return asyncFaultResult(rule, fmt.Sprintf("parse response: %v", err))
	}
	if verdict.Valid == nil {
		return asyncFaultResult(rule, "response missing 'valid' field")
	}
	if !*verdict.Valid {
		msg := verdict.Message
		if msg == "" {
			msg = ruleMessage(rule, fmt.Sprintf("Rule %s failed", rule.Name))
		}
		return failResult(rule, msg)
	}
	return passResult()
}

// asyncFaultResult reports an async evaluation fault, tagged so callers
// can tell infrastructure trouble from a business violation.
func asyncFaultResult(rule *metadata.Rule, detail string) Result {
	return failResult(rule, fmt.Sprintf("async validation error: %s", detail))
}
