// Package api is the console's HTTP client for the backend. Every response
// is wrapped as {"data": ...}; a missing data field decodes as an empty
// collection or object.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"industry-console/internal/cms"
	"industry-console/internal/model"
)

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

type Client struct {
	base  string
	token string
	http  *http.Client
	log   *zap.Logger
}

type Option func(*Client)

func WithToken(tok string) Option { return func(c *Client) { c.token = tok } }

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
		log:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetToken replaces the bearer token used on subsequent requests.
func (c *Client) SetToken(tok string) { c.token = tok }

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body any, hdr http.Header) (json.RawMessage, error) {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	c.log.Debug("api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	if resp.StatusCode >= 300 {
		return nil, &Error{Status: resp.StatusCode, Message: env.Error}
	}
	return env.Data, nil
}

// decodeData unmarshals data into v, leaving v untouched when data is
// absent or null.
func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, v)
}

func settingsPath(industry string) string {
	return "/industry-cms/" + url.PathEscape(industry) + "/settings"
}

// GetSettings fetches the raw content document for industry. The result
// may be nil when the backend has nothing stored.
func (c *Client) GetSettings(ctx context.Context, industry string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, settingsPath(industry), nil, nil, nil)
}

// SaveSettings replaces the whole document for industry. idemKey, when set,
// is sent as Idempotency-Key.
func (c *Client) SaveSettings(ctx context.Context, industry string, doc cms.Document, idemKey string) error {
	var hdr http.Header
	if idemKey != "" {
		hdr = http.Header{"Idempotency-Key": {idemKey}}
	}
	_, err := c.do(ctx, http.MethodPut, settingsPath(industry), nil, doc, hdr)
	return err
}

type AppointmentQuery struct {
	StartDate string
	EndDate   string
	StaffID   string
	Limit     int
}

func (c *Client) ListAppointments(ctx context.Context, q AppointmentQuery) ([]model.Appointment, error) {
	v := url.Values{}
	if q.StartDate != "" {
		v.Set("start_date", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("end_date", q.EndDate)
	}
	if q.StaffID != "" {
		v.Set("staff_id", q.StaffID)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	data, err := c.do(ctx, http.MethodGet, "/appointments", v, nil, nil)
	if err != nil {
		return nil, err
	}
	out := []model.Appointment{}
	if err := decodeData(data, &out); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	return out, nil
}

func (c *Client) CreateAppointment(ctx context.Context, req model.BookingRequest) (*model.Appointment, error) {
	data, err := c.do(ctx, http.MethodPost, "/appointments", nil, req, nil)
	if err != nil {
		return nil, err
	}
	a := &model.Appointment{}
	if err := decodeData(data, a); err != nil {
		return nil, fmt.Errorf("decode appointment: %w", err)
	}
	return a, nil
}

func activeQuery(activeOnly bool) url.Values {
	if !activeOnly {
		return nil
	}
	return url.Values{"is_active": {"true"}}
}

func (c *Client) ListStaff(ctx context.Context, activeOnly bool) ([]model.Staff, error) {
	data, err := c.do(ctx, http.MethodGet, "/staff-specialists", activeQuery(activeOnly), nil, nil)
	if err != nil {
		return nil, err
	}
	out := []model.Staff{}
	if err := decodeData(data, &out); err != nil {
		return nil, fmt.Errorf("decode staff: %w", err)
	}
	return out, nil
}

func (c *Client) ListServices(ctx context.Context, activeOnly bool) ([]model.Service, error) {
	data, err := c.do(ctx, http.MethodGet, "/services", activeQuery(activeOnly), nil, nil)
	if err != nil {
		return nil, err
	}
	out := []model.Service{}
	if err := decodeData(data, &out); err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}
	return out, nil
}

// Login exchanges credentials for an access token and keeps it on the
// client.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/auth/login", nil,
		map[string]string{"email": email, "password": password}, nil)
	if err != nil {
		return "", err
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := decodeData(data, &out); err != nil {
		return "", fmt.Errorf("decode login: %w", err)
	}
	c.SetToken(out.Token)
	return out.Token, nil
}
