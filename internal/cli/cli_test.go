package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/anticrisis-view/internal/snapshot"
	"github.com/iwvelando/anticrisis-view/pkg/constants"
	"github.com/iwvelando/anticrisis-view/pkg/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tableBody = `{
  "period": {"id": 42, "organization_id": 7, "period_type": "month", "period_start": "2026-01-01T00:00:00", "period_end": "2026-01-31T00:00:00", "label": "January 2026"},
  "balance": {"cash": 1000, "equity": 5000},
  "bdr": {"revenue": 300},
  "bdds": {},
  "coefficients": {"current_ratio": 1.5},
  "crisis": {"crisis_type_code": "liquidity", "crisis_type_name": "Liquidity Crisis", "confidence": 0.82, "reasoning": "Low cash reserves"},
  "fin_model": {"total_assets": 7000}
}`

var backendBodies = map[string]string{
	"/api/orgs":                               `[{"id":7,"name":"Acme"}]`,
	"/api/orgs/7/anticrisis/periods":          `[{"id":42,"organization_id":7,"period_type":"month","label":"January 2026"}]`,
	"/api/orgs/7/anticrisis/periods/42/table": tableBody,
	"/api/orgs/7/anticrisis/crisis-types":     `[{"code":"liquidity","name":"Liquidity Crisis"}]`,
	"/api/orgs/7/anticrisis/periods/13/table": `{"detail":"boom"}`,
	"/api/orgs/7/anticrisis/plans":            `[{"id":3,"organization_id":7,"crisis_type_code":"liquidity","title":"Recovery","items":[{"id":10,"plan_id":3,"title":"Cut inventory","stage":"Assets","status":"done","completed":true,"sort_order":0}]}]`,
	"/api/orgs/7/anticrisis/plans/3":          `{"id":3,"organization_id":7,"crisis_type_code":"","title":"Recovery","items":[]}`,
}

type testEnv struct {
	configPath string
	tokenPath  string
	dir        string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := backendBodies[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
			return
		}
		if strings.HasSuffix(r.URL.Path, "/13/table") {
			w.WriteHeader(http.StatusInternalServerError)
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	env := testEnv{
		configPath: filepath.Join(dir, "config.yaml"),
		tokenPath:  filepath.Join(dir, "token"),
		dir:        dir,
	}
	content := fmt.Sprintf(`backend:
  baseURL: %s/api
  tokenFile: %s
  timeout: 5s
logging:
  level: error
  outputFile: %s
`, srv.URL, env.tokenPath, filepath.Join(dir, "cli.log"))
	require.NoError(t, os.WriteFile(env.configPath, []byte(content), 0o600))
	return env
}

func run(t *testing.T, env testEnv, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := NewCLI(Options{Output: &out, Version: "test"})
	app.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := app.Execute(context.Background())
	return out.String(), err
}

func TestSnapshotTable(t *testing.T) {
	env := newTestEnv(t)

	out, err := run(t, env, "snapshot", "--org", "7", "--period", "42")
	require.NoError(t, err)

	assert.Contains(t, out, "January 2026 (org 7, period 42)")
	assert.Contains(t, out, "Cash")
	assert.Contains(t, out, "1,000")
	assert.Contains(t, out, "Liquidity Crisis")
	assert.Contains(t, out, "82%")
	assert.NotContains(t, out, "Financial Model")
}

func TestSnapshotRussianTable(t *testing.T) {
	env := newTestEnv(t)

	out, err := run(t, env, "snapshot", "--org", "7", "--period", "42", "--locale", "ru")
	require.NoError(t, err)

	assert.Contains(t, out, "Денежные средства")
	assert.Contains(t, out, "Уверенность")
}

func TestSnapshotCSVToStdout(t *testing.T) {
	env := newTestEnv(t)

	out, err := run(t, env, "snapshot", "--org", "7", "--period", "42", "--format", "csv")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(out, constants.ByteOrderMark))
	lines := strings.Split(strings.TrimPrefix(out, constants.ByteOrderMark), constants.CSVRowDelimiter)
	assert.Equal(t, `"Section";"Metric";"Value"`, lines[0])
	assert.Equal(t, `"Balance";"Cash";"1000"`, lines[1])
	assert.Equal(t, `"Crisis";"Reasoning";"Low cash reserves"`, lines[len(lines)-1])
	assert.NotContains(t, out, "Total assets")
}

func TestSnapshotCSVWithFinModel(t *testing.T) {
	env := newTestEnv(t)

	out, err := run(t, env, "snapshot", "--org", "7", "--period", "42", "--format", "csv", "--fin-model")
	require.NoError(t, err)
	assert.Contains(t, out, `"Financial Model";"Total assets";"7000"`)
}

func TestSnapshotJSONToDirectory(t *testing.T) {
	env := newTestEnv(t)
	exportDir := filepath.Join(env.dir, "exports")

	out, err := run(t, env, "snapshot", "--org", "7", "--period", "42", "--format", "json", "--out", exportDir)
	require.NoError(t, err)

	want := filepath.Join(exportDir, "anticrisis_org7_period42_January 2026.json")
	assert.Equal(t, want+"\n", out)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	got, err := export.FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Period.ID)
	assert.Equal(t, []string{"cash", "equity"}, got.Balance.Keys())
}

func TestSnapshotBackendError(t *testing.T) {
	env := newTestEnv(t)

	_, err := run(t, env, "snapshot", "--org", "7", "--period", "13")
	require.Error(t, err)

	var fe *snapshot.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 500, fe.Status)
	assert.Equal(t, "boom", fe.Message)
}

func TestSnapshotRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing period", args: []string{"snapshot", "--org", "7"}},
		{name: "non-positive org", args: []string{"snapshot", "--org", "0", "--period", "42"}},
		{name: "unknown format", args: []string{"snapshot", "--org", "7", "--period", "42", "--format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, env, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestInvalidConfiguration(t *testing.T) {
	env := newTestEnv(t)
	content := "backend:\n  baseURL: ftp://example.com\n  mode: bogus\n"
	require.NoError(t, os.WriteFile(env.configPath, []byte(content), 0o600))

	_, err := run(t, env, "orgs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "backend.mode")
	assert.Contains(t, err.Error(), "backend.baseURL")
}

func TestListCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := run(t, env, "periods", "--org", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "January 2026")

	out, err = run(t, env, "orgs")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme")

	out, err = run(t, env, "crisis-types", "--org", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Liquidity Crisis")
}

func TestLoginLogout(t *testing.T) {
	env := newTestEnv(t)

	_, err := run(t, env, "login", "--token", "  secret  ")
	require.NoError(t, err)
	data, err := os.ReadFile(env.tokenPath)
	require.NoError(t, err)
	assert.Equal(t, "secret", strings.TrimSpace(string(data)))

	_, err = run(t, env, "logout")
	require.NoError(t, err)
	_, err = os.Stat(env.tokenPath)
	assert.True(t, os.IsNotExist(err))
}

func TestLoginRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := run(t, env, "login", "--token", "   ")
	assert.Error(t, err)
}

func TestPlansCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := run(t, env, "plans", "--org", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "--- #3 Recovery (1/1 done) ---")
	assert.Contains(t, out, "Crisis type: Liquidity Crisis")
	assert.Contains(t, out, "[x] Cut inventory")

	out, err = run(t, env, "plans", "--org", "7", "--plan", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "--- #3 Recovery (0/0 done) ---")
	assert.NotContains(t, out, "Crisis type:")

	_, err = run(t, env, "plans", "--org", "7", "--plan", "99")
	var fe *snapshot.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 404, fe.Status)
}
