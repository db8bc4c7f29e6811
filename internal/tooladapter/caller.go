package tooladapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spec-kit/customer-data-service/internal/config"
	"github.com/spec-kit/customer-data-service/internal/service"
)

// Envelope is the uniform response of POST /call as seen by a client.
type Envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      *string         `json:"error,omitempty"`
	TotalCount *int            `json:"total_count,omitempty"`
}

// Caller invokes a named operation on the data-access service.
type Caller interface {
	Call(ctx context.Context, tool string, params map[string]any) (*Envelope, error)
}

// HTTPCaller posts operations to a remote service.
type HTTPCaller struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewHTTPCaller builds a caller for the service at cfg.ServiceURL.
func NewHTTPCaller(cfg config.ToolsConfig) *HTTPCaller {
	return &HTTPCaller{
		endpoint: cfg.ServiceURL + "/call",
		token:    cfg.AuthToken,
		client:   &http.Client{Timeout: cfg.Timeout()},
	}
}

// Call implements Caller. Any non-2xx status is returned as an error.
func (h *HTTPCaller) Call(ctx context.Context, tool string, params map[string]any) (*Envelope, error) {
	body, err := json.Marshal(map[string]any{"tool": tool, "params": params})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned %s", h.endpoint, resp.Status)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &env, nil
}

// Executor runs operations in-process.
type Executor interface {
	Execute(ctx context.Context, name string, params map[string]any) service.Result
}

// LocalCaller serves calls from an in-process dispatcher, skipping HTTP.
type LocalCaller struct {
	executor Executor
}

// NewLocalCaller wraps executor.
func NewLocalCaller(executor Executor) *LocalCaller {
	return &LocalCaller{executor: executor}
}

// Call implements Caller.
func (l *LocalCaller) Call(ctx context.Context, tool string, params map[string]any) (*Envelope, error) {
	res := l.executor.Execute(ctx, tool, params)
	env := &Envelope{Success: res.Success, TotalCount: res.TotalCount}
	if res.Error != "" {
		env.Error = &res.Error
	}
	if res.Data != nil {
		data, err := json.Marshal(res.Data)
		if err != nil {
			return nil, fmt.Errorf("encode %s result: %w", tool, err)
		}
		env.Data = data
	}
	return env, nil
}
