package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/papercomputeco/reel/pkg/llm"
)

// CompletionPath is the fixed route completion requests are posted to.
const CompletionPath = "/v1/stream"

// Response is the transport-level result of dispatching a chat request:
// a status code and a chunk-producing body. The transport never interprets
// the stream.
type Response struct {
	StatusCode int
	Body       io.ReadCloser
}

// Transport dispatches a chat request to the completion service.
type Transport interface {
	Send(ctx context.Context, req *llm.ChatRequest) (*Response, error)
}

// HTTPTransport posts chat requests to a completion service over HTTP.
type HTTPTransport struct {
	target string
	client *http.Client
}

// NewHTTPTransport creates a transport for the service at target
// (scheme + host + port, no path).
func NewHTTPTransport(target string) *HTTPTransport {
	return &HTTPTransport{
		target: target,
		client: &http.Client{
			// Completions can be slow; the stream keeps the connection
			// busy well past a typical request timeout.
			Timeout: 5 * time.Minute,
		},
	}
}

func (t *HTTPTransport) Send(ctx context.Context, req *llm.ChatRequest) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.target+CompletionPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       httpResp.Body,
	}, nil
}
