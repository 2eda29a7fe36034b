package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fyrsmithlabs/notionctl/internal/config"
	"github.com/fyrsmithlabs/notionctl/internal/credential"
	"github.com/fyrsmithlabs/notionctl/internal/dispatch"
	"github.com/fyrsmithlabs/notionctl/internal/failure"
	"github.com/fyrsmithlabs/notionctl/internal/logging"
	"github.com/fyrsmithlabs/notionctl/internal/notion"
	"github.com/fyrsmithlabs/notionctl/internal/notion/notiontest"
	"github.com/fyrsmithlabs/notionctl/internal/telemetry"
	"github.com/fyrsmithlabs/notionctl/internal/tools"
)

type tokenResolver struct{}

func (tokenResolver) Resolve(context.Context) (credential.Credential, error) {
	return credential.Credential{Value: "ntn_test", Source: credential.SourceEnvironment}, nil
}

func newTestServer(t *testing.T, fake *notiontest.Fake, cfg *Config) *Server {
	t.Helper()
	session := notion.NewSession(tokenResolver{}, func(config.Secret) notion.Caller { return fake }, nil)
	d := dispatch.New(&tools.Env{Session: session}, dispatch.Options{})

	srv, err := NewServer(d, logging.NewNop(), cfg)
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func errorKind(t *testing.T, env map[string]any) string {
	t.Helper()
	assert.Equal(t, "error", env["status"])
	payload, ok := env["payload"].(map[string]any)
	require.True(t, ok, "payload is %T", env["payload"])
	kind, _ := payload["kind"].(string)
	return kind
}

func TestNewServer_Validation(t *testing.T) {
	_, err := NewServer(nil, logging.NewNop(), nil)
	assert.Error(t, err)

	d := dispatch.New(&tools.Env{}, dispatch.Options{})
	_, err = NewServer(d, nil, nil)
	assert.Error(t, err)

	srv, err := NewServer(d, logging.NewNop(), nil)
	require.NoError(t, err)
	assert.Equal(t, "localhost", srv.config.Host)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, notiontest.New(), nil)

	rec := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDispatch_Success(t *testing.T) {
	fake := notiontest.New().Reply(http.MethodGet, "/pages/abc123", notion.Object{"id": "abc123"})
	srv := newTestServer(t, fake, nil)

	rec := do(t, srv, http.MethodPost, "/api/v1/dispatch", `{"tool":"fetch","arguments":{"id":"abc123"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success","payload":{"id":"abc123"}}`, rec.Body.String())
}

func TestDispatch_ErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		kind   failure.Kind
	}{
		{"missing argument", `{"tool":"create-database","arguments":{"parent_id":"p"}}`, http.StatusBadRequest, failure.MissingArgument},
		{"invalid argument", `{"tool":"search","arguments":{"query":"q","max_results":-1}}`, http.StatusBadRequest, failure.InvalidArgument},
		{"unknown tool", `{"tool":"drop-workspace"}`, http.StatusNotFound, failure.UnknownTool},
		{"arguments not an object", `{"tool":"fetch","arguments":["abc123"]}`, http.StatusBadRequest, failure.InvalidArgument},
		{"tool missing", `{"arguments":{}}`, http.StatusBadRequest, failure.MissingArgument},
		{"body not json", `tool=fetch`, http.StatusBadRequest, failure.InvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := notiontest.New()
			srv := newTestServer(t, fake, nil)

			rec := do(t, srv, http.MethodPost, "/api/v1/dispatch", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, string(tt.kind), errorKind(t, decodeEnvelope(t, rec)))
			assert.Zero(t, fake.Count())
		})
	}
}

func TestDispatch_RemoteFailure(t *testing.T) {
	fake := notiontest.New().Fail(http.MethodGet, "/users*", failure.New(failure.AuthError, "API token is invalid"))
	srv := newTestServer(t, fake, nil)

	rec := do(t, srv, http.MethodPost, "/api/v1/dispatch", `{"tool":"get-users"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, string(failure.AuthError), errorKind(t, decodeEnvelope(t, rec)))
}

func TestServerSurvivesMalformedRequests(t *testing.T) {
	fake := notiontest.New().Reply(http.MethodGet, "/pages/abc123", notion.Object{"id": "abc123"})
	srv := newTestServer(t, fake, nil)

	rec := do(t, srv, http.MethodPost, "/api/v1/dispatch", `{"tool":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/v1/dispatch", `{"tool":"fetch","arguments":"abc123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/v1/dispatch", `{"tool":"fetch","arguments":{"id":"abc123"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success","payload":{"id":"abc123"}}`, rec.Body.String())
	assert.Equal(t, 1, fake.Count())
}

func TestTools(t *testing.T) {
	srv := newTestServer(t, notiontest.New(), nil)

	rec := do(t, srv, http.MethodGet, "/api/v1/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []ToolInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, len(tools.All()))
	assert.Equal(t, tools.Setup, list[0].Name)
	assert.Equal(t, "notion_setup", list[0].ProtocolName)
	assert.NotNil(t, list[0].InputSchema)
}

func TestMetricsEndpoint(t *testing.T) {
	fake := notiontest.New().Reply(http.MethodGet, "/pages/abc123", notion.Object{"id": "abc123"})
	srv := newTestServer(t, fake, nil)

	do(t, srv, http.MethodPost, "/api/v1/dispatch", `{"tool":"fetch","arguments":{"id":"abc123"}}`)
	do(t, srv, http.MethodPost, "/api/v1/dispatch", `{"tool":"nope"}`)

	rec := do(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `notionctl_http_dispatches_total{status="success",tool="fetch"} 1`)
	assert.Contains(t, body, `notionctl_http_dispatches_total{status="error",tool="unknown"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestRequestMetrics(t *testing.T) {
	tel := telemetry.NewTestTelemetry()
	srv := newTestServer(t, notiontest.New(), &Config{Host: "localhost", Port: 9191, Meter: tel.Meter("test")})

	do(t, srv, http.MethodGet, "/health", "")
	do(t, srv, http.MethodGet, "/health", "")
	do(t, srv, http.MethodPost, "/api/v1/dispatch", `{}`)

	assert.EqualValues(t, 2, tel.CounterValue(t, MetricRequests,
		attribute.String("endpoint", "/health"), attribute.Int("status", http.StatusOK)))
	assert.EqualValues(t, 1, tel.CounterValue(t, MetricRequests,
		attribute.String("endpoint", "/api/v1/dispatch"), attribute.Int("status", http.StatusBadRequest)))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusFor(dispatch.Success(nil)))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(dispatch.Failure(failure.New(failure.CredentialNotFound, "none"))))
	assert.Equal(t, http.StatusBadGateway, statusFor(dispatch.Failure(failure.New(failure.RateLimited, "slow"))))
	assert.Equal(t, http.StatusInternalServerError, statusFor(dispatch.Failure(assert.AnError)))
}
