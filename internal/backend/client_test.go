package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iwvelando/anticrisis-view/internal/session"
	"github.com/iwvelando/anticrisis-view/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves canned bodies per path and records the last Authorization
// header.
type fakeAPI struct {
	bodies   map[string]string
	statuses map[string]int
	auth     atomic.Value
	hits     atomic.Int32

	// before runs ahead of every response when set.
	before func(r *http.Request)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		bodies: map[string]string{
			"/orgs":                                      `[{"id":7,"name":"Acme"}]`,
			"/orgs/7/anticrisis/periods":                 `[{"id":41,"organization_id":7,"period_type":"month","period_start":"2025-12-01T00:00:00","period_end":"2025-12-31T00:00:00","label":"December"},{"id":42,"organization_id":7,"period_type":"month","period_start":"2026-01-01T00:00:00","period_end":"2026-01-31T00:00:00","label":"January 2026"}]`,
			"/orgs/7/anticrisis/periods/42/balance":      `{}`,
			"/orgs/7/anticrisis/periods/42/bdr":          `{"revenue":300,"profit":120}`,
			"/orgs/7/anticrisis/periods/42/bdds":         `{"cash_begin":10,"cash_end":20}`,
			"/orgs/7/anticrisis/periods/42/coefficients": `{"current_ratio":1.5,"roe":0.1}`,
			"/orgs/7/anticrisis/periods/42/fin-model":    `{"period_id":42,"period_label":"January 2026","fin_model":{"total_assets":7000,"profit":120}}`,
			"/orgs/7/anticrisis/periods/42/crisis":       `{"crisis_type_code":"liquidity","crisis_type_name":"Liquidity Crisis","confidence":0.82,"reasoning":"Low cash reserves"}`,
			"/orgs/7/anticrisis/crisis-types":            `[{"code":"liquidity","name":"Liquidity Crisis"}]`,
		},
		statuses: map[string]int{},
	}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	f.auth.Store(r.Header.Get("Authorization"))
	if f.before != nil {
		f.before(r)
	}
	path := strings.TrimPrefix(r.URL.Path, "/api")
	if status, ok := f.statuses[path]; ok {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(f.bodies[path]))
		return
	}
	body, ok := f.bodies[path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func newTestClient(t *testing.T, api http.Handler, store *session.Store) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/api", WithSession(store), WithHTTPClient(NewHTTPClient(5*time.Second)))
	require.NoError(t, err)
	return c
}

func TestNewClientValidatesURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com", "http://", "://bad"} {
		_, err := NewClient(raw)
		assert.Error(t, err, raw)
	}
	_, err := NewClient("https://example.com/api/")
	assert.NoError(t, err)
}

func TestAssembleEmptyBalanceOverHTTP(t *testing.T) {
	c := newTestClient(t, newFakeAPI(), nil)

	snap, err := snapshot.NewAssembler(c).Assemble(context.Background(), 7, 42)
	require.NoError(t, err)

	assert.Equal(t, 0, snap.Balance.Len())
	assert.Equal(t, int64(42), snap.Period.ID)
	assert.Equal(t, int64(7), snap.OrganizationID())
	assert.Equal(t, []string{"revenue", "profit"}, snap.IncomeExpense.Keys())
	assert.Equal(t, "Liquidity Crisis", snap.Crisis.Name)
	require.NotNil(t, snap.Period.Start)
	assert.Equal(t, 2026, snap.Period.Start.Year())
}

func TestAssembleCoefficientsServerError(t *testing.T) {
	api := newFakeAPI()
	api.statuses["/orgs/7/anticrisis/periods/42/coefficients"] = http.StatusInternalServerError
	api.bodies["/orgs/7/anticrisis/periods/42/coefficients"] = "oops"
	c := newTestClient(t, api, nil)

	snap, err := snapshot.NewAssembler(c).Assemble(context.Background(), 7, 42)
	assert.Nil(t, snap)

	var fe *snapshot.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "coefficients", fe.Section)
	assert.Equal(t, http.StatusInternalServerError, fe.Status)
	assert.Equal(t, "Internal Server Error", fe.Message)
}

func TestBearerToken(t *testing.T) {
	api := newFakeAPI()
	c := newTestClient(t, api, session.NewStore("secret", nil))

	_, err := c.Organizations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", api.auth.Load())
}

func TestNoTokenNoHeader(t *testing.T) {
	api := newFakeAPI()
	c := newTestClient(t, api, nil)

	_, err := c.Organizations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", api.auth.Load())
}

func TestUnauthorizedClearsSession(t *testing.T) {
	api := newFakeAPI()
	api.statuses["/orgs"] = http.StatusUnauthorized
	store := session.NewStore("expired", nil)
	c := newTestClient(t, api, store)

	_, err := c.Organizations(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, snapshot.ErrUnauthorized))
	assert.Empty(t, store.Get())

	var fe *snapshot.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, OrganizationsFetch, fe.Section)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{name: "string detail", body: `{"detail":"Период не найден"}`, status: 404, want: "Период не найден"},
		{name: "validation list", body: `{"detail":[{"msg":"field required"},{"msg":"value is not a valid integer"}]}`, status: 422, want: "field required, value is not a valid integer"},
		{name: "list without msg", body: `{"detail":[{"loc":["body"]}]}`, status: 422, want: `{"loc":["body"]}`},
		{name: "object detail", body: `{"detail":{"code": 3}}`, status: 400, want: `{"code":3}`},
		{name: "no detail", body: `{"error":"x"}`, status: 503, want: "Service Unavailable"},
		{name: "null detail", body: `{"detail":null}`, status: 500, want: "Internal Server Error"},
		{name: "not json", body: `<html>`, status: 502, want: "Bad Gateway"},
		{name: "unknown status", body: ``, status: 599, want: "request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage([]byte(tt.body), tt.status))
		})
	}
}

func TestMalformedJSONIsFetchError(t *testing.T) {
	api := newFakeAPI()
	api.bodies["/orgs/7/anticrisis/periods/42/crisis"] = `{"crisis_type_code":`
	c := newTestClient(t, api, nil)

	_, err := c.Crisis(context.Background(), 7, 42)
	var fe *snapshot.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, snapshot.CrisisFetch, fe.Section)
	assert.Contains(t, fe.Message, "malformed response")
}

func TestNonNumericSectionValueIsFetchError(t *testing.T) {
	api := newFakeAPI()
	api.bodies["/orgs/7/anticrisis/periods/42/bdds"] = `{"cash_begin":"ten"}`
	c := newTestClient(t, api, nil)

	_, err := c.Section(context.Background(), 7, 42, snapshot.CashFlow)
	var fe *snapshot.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "bdds", fe.Section)
}

func TestPeriodNotFound(t *testing.T) {
	c := newTestClient(t, newFakeAPI(), nil)

	_, err := c.Period(context.Background(), 7, 99)
	var fe *snapshot.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, snapshot.PeriodFetch, fe.Section)
	assert.Equal(t, http.StatusNotFound, fe.Status)
}

func TestFinModelUnwrapped(t *testing.T) {
	c := newTestClient(t, newFakeAPI(), nil)

	fm, err := c.Section(context.Background(), 7, 42, snapshot.FinModel)
	require.NoError(t, err)
	assert.Equal(t, []string{"total_assets", "profit"}, fm.Keys())
}

func TestCrisisTypesTolerateFailure(t *testing.T) {
	api := newFakeAPI()
	c := newTestClient(t, api, nil)

	types := c.CrisisTypes(context.Background(), 7)
	assert.Equal(t, []snapshot.CrisisType{{Code: "liquidity", Name: "Liquidity Crisis"}}, types)

	api.statuses["/orgs/7/anticrisis/crisis-types"] = http.StatusInternalServerError
	types = c.CrisisTypes(context.Background(), 7)
	assert.NotNil(t, types)
	assert.Empty(t, types)
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url)
	require.NoError(t, err)

	_, err = c.Crisis(context.Background(), 7, 42)
	var fe *snapshot.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, snapshot.CrisisFetch, fe.Section)
	assert.Zero(t, fe.Status)
}

func TestCanceledContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Crisis(ctx, 7, 42)

	var fe *snapshot.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "request timed out", fe.Message)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestPeriodsAndOrganizations(t *testing.T) {
	c := newTestClient(t, newFakeAPI(), nil)

	orgs, err := c.Organizations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Organization{{ID: 7, Name: "Acme"}}, orgs)

	periods, err := c.Periods(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, "December", periods[0].Label)
	assert.Equal(t, "month", periods[1].Type)
}

func TestSectionPaths(t *testing.T) {
	tests := map[snapshot.SectionKind]string{
		snapshot.Balance:       "/orgs/1/anticrisis/periods/2/balance",
		snapshot.IncomeExpense: "/orgs/1/anticrisis/periods/2/bdr",
		snapshot.CashFlow:      "/orgs/1/anticrisis/periods/2/bdds",
		snapshot.Coefficients:  "/orgs/1/anticrisis/periods/2/coefficients",
		snapshot.FinModel:      "/orgs/1/anticrisis/periods/2/fin-model",
	}
	for kind, want := range tests {
		assert.Equal(t, want, periodPath(1, 2, sectionResource(kind)), fmt.Sprint(kind))
	}
}
