package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// GenerateRequest is one prompt for one task. Nil tuning fields fall back to
// the task's configured values.
type GenerateRequest struct {
	Task         TaskType
	SystemPrompt string
	UserPrompt   string
	Temperature  *float64
	MaxTokens    *int
	Stop         []string
}

type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
	Attempts  int
}

// LLMClient is the inference gateway the pipeline talks to.
type LLMClient interface {
	// Generate returns the raw completion text, retrying transient
	// failures and blank output within the configured budget.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Available reports whether the model server answers at all.
	Available(ctx context.Context) bool
}

const (
	dialTimeout  = 5 * time.Second
	probeTimeout = 2 * time.Second
)

type ollamaClient struct {
	cfg      LLMConfig
	http     *http.Client
	observer Observer
}

// NewOllamaClient returns a gateway for the Ollama server at cfg.Endpoint.
// Each attempt is bounded by the task timeout, so the HTTP client itself
// only limits dialing.
func NewOllamaClient(cfg LLMConfig, observer Observer) LLMClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: dialTimeout}).DialContext
	return &ollamaClient{
		cfg:      cfg,
		http:     &http.Client{Transport: transport},
		observer: observer,
	}
}

// Wire types for POST /api/generate with streaming off.
type (
	ollamaRequest struct {
		Model   string        `json:"model"`
		System  string        `json:"system,omitempty"`
		Prompt  string        `json:"prompt"`
		Stream  bool          `json:"stream"`
		Options ollamaOptions `json:"options,omitempty"`
	}

	ollamaOptions struct {
		Temperature float64  `json:"temperature"`
		NumPredict  int      `json:"num_predict,omitempty"`
		Stop        []string `json:"stop,omitempty"`
	}

	ollamaResponse struct {
		Model    string `json:"model"`
		Response string `json:"response"`
	}

	ollamaError struct {
		Error string `json:"error"`
	}
)

// statusError is a non-200 answer from the server.
type statusError struct {
	Code    int
	Message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("ollama returned status %d: %s", e.Code, e.Message)
}

// retryable is false for client errors a second attempt cannot fix.
func (e *statusError) retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusRequestTimeout || e.Code == http.StatusTooManyRequests
}

func (c *ollamaClient) options(req GenerateRequest) ollamaOptions {
	task := c.cfg.Tasks[req.Task]
	opts := ollamaOptions{Temperature: task.Temperature, NumPredict: task.MaxTokens, Stop: task.Stop}
	if req.Temperature != nil {
		opts.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		opts.NumPredict = *req.MaxTokens
	}
	if req.Stop != nil {
		opts.Stop = req.Stop
	}
	return opts
}

func (c *ollamaClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()
	timeout := time.Duration(c.cfg.TaskTimeout(req.Task)) * time.Millisecond
	body := ollamaRequest{
		Model:   c.cfg.Model,
		System:  req.SystemPrompt,
		Prompt:  req.UserPrompt,
		Options: c.options(req),
	}

	event := LLMCallEvent{Task: req.Task, Model: c.cfg.Model}
	var lastErr error
	for event.Attempts < 1+c.cfg.MaxRetries {
		event.Attempts++
		resp, err := c.attempt(ctx, timeout, body)
		if err == nil {
			event.Success = true
			event.LatencyMs = time.Since(start).Milliseconds()
			c.observer.OnCallComplete(event)
			return &GenerateResponse{
				Text:      resp.Response,
				Model:     resp.Model,
				LatencyMs: event.LatencyMs,
				Attempts:  event.Attempts,
			}, nil
		}
		lastErr = err

		// A per-attempt deadline is retried; the caller's is not.
		var se *statusError
		if ctx.Err() != nil || (errors.As(err, &se) && !se.retryable()) {
			break
		}
	}

	err := classify(ctx, lastErr)
	event.LatencyMs = time.Since(start).Milliseconds()
	event.ErrorCode = errorCode(err)
	c.observer.OnCallComplete(event)
	return nil, err
}

// attempt makes one round trip under its own deadline. Blank output counts
// as a failed attempt.
func (c *ollamaClient) attempt(ctx context.Context, timeout time.Duration, body ollamaRequest) (*ollamaResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var resp ollamaResponse
	if err := c.post(ctx, "/api/generate", body, &resp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Response) == "" {
		return nil, ErrEmptyOutput
	}
	return &resp, nil
}

func (c *ollamaClient) post(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw))
		var oe ollamaError
		if json.Unmarshal(raw, &oe) == nil && oe.Error != "" {
			msg = oe.Error
		}
		return &statusError{Code: resp.StatusCode, Message: msg}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *ollamaClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// classify maps the last attempt's failure onto the package's sentinels.
func classify(ctx context.Context, err error) error {
	var se *statusError
	var opErr *net.OpError
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ErrInferenceTimeout
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %v", ErrInference, ctx.Err())
	case errors.Is(err, ErrEmptyOutput):
		return ErrEmptyOutput
	case errors.As(err, &se) && se.Code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrModelNotFound, se.Message)
	case errors.As(err, &opErr):
		return ErrOllamaUnavailable
	default:
		return fmt.Errorf("%w: %v", ErrRetryExhausted, err)
	}
}

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrInferenceTimeout, "TIMEOUT"},
	{ErrOllamaUnavailable, "UNAVAILABLE"},
	{ErrModelNotFound, "MODEL_NOT_FOUND"},
	{ErrEmptyOutput, "EMPTY_OUTPUT"},
	{ErrInvalidOutput, "INVALID_OUTPUT"},
}

// errorCode is the metric and log label for a failed call.
func errorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "UNKNOWN"
}
