// Package backend reads periods, sections and crisis classifications from the
// anticrisis REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iwvelando/anticrisis-view/internal/session"
	"github.com/iwvelando/anticrisis-view/internal/snapshot"
	"github.com/iwvelando/anticrisis-view/pkg/constants"
	"go.uber.org/zap"
)

const maxResponseBytes = 10 << 20

// Fetch names for calls outside the snapshot.
const (
	OrganizationsFetch = "organizations"
	PeriodsFetch       = "periods"
	CrisisTypesFetch   = "crisis_types"
	TableFetch         = "table"
)

// Organization is one organization visible to the signed-in user.
type Organization struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default pooled client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithSession sets the token store. A 401 response clears it.
func WithSession(s *session.Store) Option {
	return func(c *Client) {
		if s != nil {
			c.session = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client issues one GET per call against the backend. It implements
// snapshot.Source with one request per section.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Store
	logger  *zap.Logger
}

// NewClient returns a client for the API rooted at baseURL
// (e.g. "http://localhost:8000/api").
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q: missing host", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    NewHTTPClient(time.Duration(constants.DefaultBackendTimeoutSeconds) * time.Second),
		session: session.NewStore("", nil),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func periodsPath(orgID int64) string {
	return fmt.Sprintf("/orgs/%d/anticrisis/periods", orgID)
}

func periodPath(orgID, periodID int64, resource string) string {
	return fmt.Sprintf("%s/%d/%s", periodsPath(orgID), periodID, resource)
}

// sectionResource maps a section to its URL segment.
func sectionResource(kind snapshot.SectionKind) string {
	if kind == snapshot.FinModel {
		return "fin-model"
	}
	return kind.String()
}

// Organizations lists the organizations of the current user.
func (c *Client) Organizations(ctx context.Context) ([]Organization, error) {
	var out []Organization
	if err := c.get(ctx, OrganizationsFetch, "/orgs", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Periods lists the reporting periods of an organization.
func (c *Client) Periods(ctx context.Context, orgID int64) ([]snapshot.Period, error) {
	var out []snapshot.Period
	if err := c.get(ctx, PeriodsFetch, periodsPath(orgID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Period looks the period up in the organization's period list.
func (c *Client) Period(ctx context.Context, orgID, periodID int64) (snapshot.Period, error) {
	periods, err := c.Periods(ctx, orgID)
	if err != nil {
		return snapshot.Period{}, snapshot.AsFetchError(snapshot.PeriodFetch, err)
	}
	for _, p := range periods {
		if p.ID == periodID {
			return p, nil
		}
	}
	return snapshot.Period{}, &snapshot.FetchError{
		Section: snapshot.PeriodFetch,
		Message: fmt.Sprintf("period %d not found", periodID),
		Status:  http.StatusNotFound,
	}
}

// Section fetches one section. The financial model endpoint wraps its
// metrics in a "fin_model" member.
func (c *Client) Section(ctx context.Context, orgID, periodID int64, kind snapshot.SectionKind) (snapshot.Section, error) {
	path := periodPath(orgID, periodID, sectionResource(kind))
	if kind == snapshot.FinModel {
		var wrapped struct {
			FinModel snapshot.Section `json:"fin_model"`
		}
		if err := c.get(ctx, kind.String(), path, &wrapped); err != nil {
			return snapshot.Section{}, err
		}
		return wrapped.FinModel, nil
	}

	var out snapshot.Section
	if err := c.get(ctx, kind.String(), path, &out); err != nil {
		return snapshot.Section{}, err
	}
	return out, nil
}

// Crisis fetches the crisis classification of a period.
func (c *Client) Crisis(ctx context.Context, orgID, periodID int64) (snapshot.Crisis, error) {
	var out snapshot.Crisis
	if err := c.get(ctx, snapshot.CrisisFetch, periodPath(orgID, periodID, "crisis"), &out); err != nil {
		return snapshot.Crisis{}, err
	}
	return out, nil
}

// CrisisTypes returns the crisis catalogue. It never fails: on error the
// catalogue is empty and the problem is logged.
func (c *Client) CrisisTypes(ctx context.Context, orgID int64) []snapshot.CrisisType {
	var out []snapshot.CrisisType
	path := fmt.Sprintf("/orgs/%d/anticrisis/crisis-types", orgID)
	if err := c.get(ctx, CrisisTypesFetch, path, &out); err != nil {
		c.logger.Warn("crisis type catalogue unavailable",
			zap.String("op", "backend.CrisisTypes"),
			zap.Int64("org", orgID),
			zap.Error(err),
		)
		return []snapshot.CrisisType{}
	}
	return out
}

// get performs one GET and decodes a JSON body into out. Every failure is a
// *snapshot.FetchError named after fetch.
func (c *Client) get(ctx context.Context, fetch, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &snapshot.FetchError{Section: fetch, Message: "invalid request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if token := c.session.Get(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed",
			zap.String("op", "backend.get"),
			zap.String("path", path),
			zap.Error(err),
		)
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return snapshot.AsFetchError(fetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &snapshot.FetchError{Section: fetch, Message: "failed to read response", Status: resp.StatusCode, Err: err}
	}

	c.logger.Debug("backend request",
		zap.String("op", "backend.get"),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		c.session.Clear()
		c.logger.Warn("backend rejected session token",
			zap.String("op", "backend.get"),
			zap.String("path", path),
		)
		return &snapshot.FetchError{
			Section: fetch,
			Message: "unauthorized",
			Status:  resp.StatusCode,
			Err:     snapshot.ErrUnauthorized,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &snapshot.FetchError{
			Section: fetch,
			Message: errorMessage(body, resp.StatusCode),
			Status:  resp.StatusCode,
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &snapshot.FetchError{
			Section: fetch,
			Message: "malformed response: " + err.Error(),
			Err:     err,
		}
	}
	return nil
}

// errorMessage extracts a readable message from an error body. FastAPI puts
// it under "detail" as a string, a list of validation items with "msg", or
// arbitrary JSON. Anything else falls back to the status text.
func errorMessage(body []byte, status int) string {
	fallback := http.StatusText(status)
	if fallback == "" {
		fallback = "request failed"
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	detail := bytes.TrimSpace(payload.Detail)
	if len(detail) == 0 || bytes.Equal(detail, []byte("null")) {
		return fallback
	}

	var s string
	if err := json.Unmarshal(detail, &s); err == nil {
		if s == "" {
			return fallback
		}
		return s
	}

	var items []json.RawMessage
	if err := json.Unmarshal(detail, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			var v struct {
				Msg string `json:"msg"`
			}
			if err := json.Unmarshal(item, &v); err == nil && v.Msg != "" {
				parts = append(parts, v.Msg)
				continue
			}
			parts = append(parts, compact(item))
		}
		return strings.Join(parts, ", ")
	}

	return compact(detail)
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
