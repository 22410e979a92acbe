// Package webapp talks to the EduPlan Apps Script deployment (the /exec URL).
//
// The script answers every call with a JSON envelope. POST responses come
// back as a 302 to script.googleusercontent.com, which net/http follows with a
// GET, as the script expects.
package webapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	actionList = "list"
	actionSave = "save"

	// Apps Script rejects CORS preflight, so the page posts JSON as text/plain.
	contentType = "text/plain;charset=utf-8"

	maxBodySize = 4 << 20
)

var ErrRejected = errors.New("web app rejected the request")

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("web app returned status %d: %s", e.StatusCode, e.Body)
}

// envelope mirrors the script's reply. Plan cells keep the sheet's types
// (numbers, booleans, strings), so they are decoded loosely and flattened.
type envelope struct {
	OK    bool                     `json:"ok"`
	Error string                   `json:"error,omitempty"`
	ID    interface{}              `json:"id,omitempty"`
	Plans []map[string]interface{} `json:"plans,omitempty"`
}

type saveRequest struct {
	Action string            `json:"action"`
	Tab    string            `json:"tab"`
	Plan   map[string]string `json:"plan"`
}

type Client struct {
	endpoint   string
	tab        string
	httpClient *http.Client
}

func NewClient(endpoint, tab string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		tab:      tab,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithHTTPClient swaps the underlying client, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) ListPlans(ctx context.Context) ([]map[string]string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse web app url: %w", err)
	}
	q := u.Query()
	q.Set("action", actionList)
	q.Set("tab", c.tab)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	env, err := c.do(req)
	if err != nil {
		return nil, err
	}

	plans := make([]map[string]string, 0, len(env.Plans))
	for _, p := range env.Plans {
		fields := make(map[string]string, len(p))
		for k, v := range p {
			fields[k] = cellText(v)
		}
		plans = append(plans, fields)
	}
	return plans, nil
}

// SavePlan stores one plan through the script and returns the id it assigned.
func (c *Client) SavePlan(ctx context.Context, plan map[string]string) (string, error) {
	body, err := json.Marshal(saveRequest{Action: actionSave, Tab: c.tab, Plan: plan})
	if err != nil {
		return "", fmt.Errorf("failed to encode plan: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	env, err := c.do(req)
	if err != nil {
		return "", err
	}
	return cellText(env.ID), nil
}

func (c *Client) do(req *http.Request) (*envelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call web app: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read web app response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var env envelope
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode web app response: %w", err)
	}
	if !env.OK {
		return nil, fmt.Errorf("%w: %s", ErrRejected, env.Error)
	}
	return &env, nil
}

// cellText renders a decoded JSON value the way the sheet displays it.
// Numbers keep their literal form, so 5 stays "5" and not "5e+00".
func cellText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
