package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// UpstreamError is returned for any failed call to the sheets API: transport
// failures (Status == 0) and non-2xx responses alike.
type UpstreamError struct {
	Op     string
	Sheet  string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	b.WriteString("sheets: ")
	b.WriteString(e.Op)
	if e.Sheet != "" {
		fmt.Fprintf(&b, " %q", e.Sheet)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, ": upstream returned %d", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// SheetsClient talks to the remote spreadsheet REST API. Calls are never
// retried; a circuit breaker makes them fail fast while the API is down.
type SheetsClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewSheetsClient(baseURL, apiKey string, timeout time.Duration, cb *CircuitBreaker) *SheetsClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if cb == nil {
		cb = NewCircuitBreaker("sheets", DefaultCBConfig())
	}
	return &SheetsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
	}
}

// Breaker exposes the circuit breaker for health reporting.
func (c *SheetsClient) Breaker() *CircuitBreaker { return c.cb }

// Health calls GET /health and returns the decoded liveness payload.
func (c *SheetsClient) Health(ctx context.Context) (map[string]any, error) {
	var payload map[string]any
	if err := c.do(ctx, "health", "", http.MethodGet, "/health", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Values returns every row of a sheet, header first.
func (c *SheetsClient) Values(ctx context.Context, sheet string) ([][]any, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "get", sheet, http.MethodGet, sheetPath(sheet), nil, &raw); err != nil {
		return nil, err
	}
	return decodeValues(raw, sheet)
}

// Range returns the rows of an A1 range of a sheet.
func (c *SheetsClient) Range(ctx context.Context, sheet, rng string) ([][]any, error) {
	var raw json.RawMessage
	path := sheetPath(sheet) + "/range/" + url.PathEscape(rng)
	if err := c.do(ctx, "get range", sheet, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return decodeValues(raw, sheet)
}

// Append adds rows after the last row of a sheet.
func (c *SheetsClient) Append(ctx context.Context, sheet string, rows [][]any) error {
	return c.do(ctx, "append", sheet, http.MethodPost, sheetPath(sheet)+"/append", valuesBody{Values: rows}, nil)
}

// Update overwrites an A1 range of a sheet.
func (c *SheetsClient) Update(ctx context.Context, sheet, rng string, rows [][]any) error {
	path := sheetPath(sheet) + "/range/" + url.PathEscape(rng)
	return c.do(ctx, "update", sheet, http.MethodPut, path, valuesBody{Values: rows}, nil)
}

// Clear removes every value of a sheet.
func (c *SheetsClient) Clear(ctx context.Context, sheet string) error {
	return c.do(ctx, "clear", sheet, http.MethodDelete, sheetPath(sheet)+"/clear", nil, nil)
}

type valuesBody struct {
	Values [][]any `json:"values"`
}

func sheetPath(sheet string) string {
	return "/api/v1/sheets/" + url.PathEscape(sheet)
}

// do performs one request through the circuit breaker. Only transport errors
// and 5xx responses count as breaker failures; a 4xx or a cancelled caller
// context does not.
func (c *SheetsClient) do(ctx context.Context, op, sheet, method, path string, body, out any) error {
	var callErr error
	cbErr := c.cb.Execute(func() error {
		status, err := c.roundTrip(ctx, method, path, body, out)
		if err == nil {
			return nil
		}
		callErr = &UpstreamError{Op: op, Sheet: sheet, Status: status, Err: err}
		// The caller gave up (disconnect, deadline, sibling fetch failed); that
		// says nothing about upstream health.
		if ctx.Err() != nil {
			return nil
		}
		if status >= 400 && status < 500 {
			return nil
		}
		return callErr
	})
	if errors.Is(cbErr, ErrCircuitOpen) {
		return &UpstreamError{Op: op, Sheet: sheet, Err: cbErr}
	}
	return callErr
}

func (c *SheetsClient) roundTrip(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, errors.New(http.StatusText(resp.StatusCode))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// decodeValues accepts {"data":{"values":[...]}}, {"data":[...]},
// {"values":[...]} and a bare [[...]].
func decodeValues(raw json.RawMessage, sheet string) ([][]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		return unmarshalRows(raw, sheet)
	}

	var env struct {
		Data   json.RawMessage `json:"data"`
		Values json.RawMessage `json:"values"`
	}
	if err := unmarshalNumber(raw, &env); err != nil {
		return nil, &UpstreamError{Op: "decode", Sheet: sheet, Err: err}
	}
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		return decodeValues(env.Data, sheet)
	}
	if len(env.Values) > 0 {
		return unmarshalRows(env.Values, sheet)
	}
	return nil, nil
}

func unmarshalRows(raw json.RawMessage, sheet string) ([][]any, error) {
	var rows [][]any
	if err := unmarshalNumber(raw, &rows); err != nil {
		return nil, &UpstreamError{Op: "decode", Sheet: sheet, Err: err}
	}
	return rows, nil
}

func unmarshalNumber(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}
