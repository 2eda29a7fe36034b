package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/notionctl/internal/config"
	"github.com/fyrsmithlabs/notionctl/internal/credential"
	"github.com/fyrsmithlabs/notionctl/internal/failure"
	"github.com/fyrsmithlabs/notionctl/internal/logging"
	"github.com/fyrsmithlabs/notionctl/internal/notion"
	"github.com/fyrsmithlabs/notionctl/internal/notion/notiontest"
	"github.com/fyrsmithlabs/notionctl/internal/secrets"
	"github.com/fyrsmithlabs/notionctl/internal/telemetry"
	"github.com/fyrsmithlabs/notionctl/internal/tools"
)

const (
	testToken = "ntn_abcdefghijklmnopqrstuvwxyz0123456789"
	someID    = "0123456789abcdef0123456789abcdef"
)

// toolArgs holds the smallest valid arguments for every tool.
var toolArgs = map[string]map[string]any{
	tools.Setup:             {"verify": true},
	tools.Fetch:             {"id": someID},
	tools.Search:            {"query": "roadmap"},
	tools.CreatePage:        {"parent_id": someID, "title": "New"},
	tools.UpdatePage:        {"page_id": someID, "title": "Renamed"},
	tools.CreateDatabase:    {"parent_id": someID, "title": "Tasks", "properties_json": "{}"},
	tools.UpdateDatabase:    {"database_id": someID, "archive": true},
	tools.QueryDatabase:     {"database_id": someID},
	tools.QueryMeetingNotes: {},
	tools.CreateComment:     {"parent_id": someID, "text": "hi"},
	tools.GetComments:       {"page_id": someID},
	tools.GetUsers:          {},
	tools.GetTeams:          {},
	tools.MovePage:          {"page_ids": someID, "new_parent_id": someID},
	tools.DuplicatePage:     {"page_id": someID},
	tools.Blocks:            {"action": "children", "block_id": someID},
}

func envResolver(token string) credential.Resolver {
	return credential.EnvResolver{
		Var: credential.EnvVar,
		Lookup: func(string) (string, bool) {
			return token, token != ""
		},
	}
}

func newStore(token string) *credential.Store {
	return credential.NewStoreWithResolvers(config.CredentialConfig{Service: "test", Account: "test"},
		credential.NewMemoryStore(), zap.NewNop(), envResolver(token))
}

// serverDispatcher wires a Dispatcher to a real Client pointed at srv.
func serverDispatcher(srv *httptest.Server, scrubber *secrets.Scrubber) *Dispatcher {
	store := newStore(testToken)
	opts := notion.Options{BaseURL: srv.URL, Timeout: 5 * time.Second}
	var onToken func(string)
	if scrubber != nil {
		onToken = scrubber.AddLiteral
	}
	env := &tools.Env{Session: notion.NewClientSession(store, opts, onToken), Tokens: store}
	return New(env, Options{Scrubber: scrubber})
}

func fakeDispatcher(fake *notiontest.Fake, opts Options) *Dispatcher {
	session := notion.NewSession(newStore(testToken), func(config.Secret) notion.Caller { return fake }, nil)
	return New(&tools.Env{Session: session, Tokens: newStore(testToken)}, opts)
}

func errorPayload(t *testing.T, env Envelope) ErrorPayload {
	t.Helper()
	require.Equal(t, StatusError, env.Status, "payload: %+v", env.Payload)
	p, ok := env.AsError()
	require.True(t, ok)
	return p
}

func TestDispatch_EveryToolSucceeds(t *testing.T) {
	for _, name := range tools.Names() {
		t.Run(name, func(t *testing.T) {
			fake := notiontest.New()
			d := fakeDispatcher(fake, Options{})

			env := d.Dispatch(context.Background(), name, toolArgs[name])
			assert.True(t, env.OK(), "%s: %s", name, Describe(env))
			assert.Positive(t, fake.Count())
		})
	}
}

func TestDispatch_UnauthorizedForEveryTool(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"object":"error","status":401,"code":"unauthorized","message":"API token is invalid."}`))
	}))
	defer srv.Close()

	for _, name := range tools.Names() {
		t.Run(name, func(t *testing.T) {
			d := serverDispatcher(srv, nil)
			p := errorPayload(t, d.Dispatch(context.Background(), name, toolArgs[name]))
			assert.Equal(t, failure.AuthError, p.Kind)
			assert.Equal(t, http.StatusUnauthorized, p.Detail["status"])
			assert.Equal(t, "unauthorized", p.Detail["code"])
		})
	}
	assert.EqualValues(t, len(tools.Names()), hits.Load())
}

func TestDispatch_FetchRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/pages/abc123" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"id":"abc123"}`))
	}))
	defer srv.Close()

	env := serverDispatcher(srv, nil).Dispatch(context.Background(), tools.Fetch, map[string]any{"id": "abc123"})
	data, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","payload":{"id":"abc123"}}`, string(data))
}

func TestDispatch_MissingArgumentMakesNoCalls(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	for _, d := range tools.All() {
		required := d.Required()
		if len(required) == 0 {
			continue
		}
		env := serverDispatcher(srv, nil).Dispatch(context.Background(), d.Name, map[string]any{})
		p := errorPayload(t, env)
		assert.Equal(t, failure.MissingArgument, p.Kind, d.Name)
		assert.Equal(t, required[0], p.Detail["field"], d.Name)
	}
	assert.Zero(t, hits.Load())
}

func TestDispatch_UnknownTool(t *testing.T) {
	fake := notiontest.New()
	p := errorPayload(t, fakeDispatcher(fake, Options{}).Dispatch(context.Background(), "rm-rf", nil))
	assert.Equal(t, failure.UnknownTool, p.Kind)
	assert.Zero(t, fake.Count())
}

func TestDispatch_CredentialNotFound(t *testing.T) {
	session := notion.NewSession(newStore(""), func(config.Secret) notion.Caller { return notiontest.New() }, nil)
	d := New(&tools.Env{Session: session}, Options{})

	p := errorPayload(t, d.Dispatch(context.Background(), tools.Search, map[string]any{"query": "x"}))
	assert.Equal(t, failure.CredentialNotFound, p.Kind)
	assert.Contains(t, p.Message, "notionctl setup --token")
}

func TestDispatch_ScrubsResolvedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		// A misbehaving proxy echoing the credential back.
		_, _ = w.Write([]byte(`{"object":"error","code":"validation_error","message":"bad token ` + testToken + `"}`))
	}))
	defer srv.Close()

	scrubber := secrets.Default()
	env := serverDispatcher(srv, scrubber).Dispatch(context.Background(), tools.Search, map[string]any{"query": "x"})
	p := errorPayload(t, env)

	assert.Equal(t, failure.RemoteError, p.Kind)
	assert.NotContains(t, p.Message, testToken)
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(data), testToken)
	assert.Contains(t, string(data), secrets.Redaction)
}

func TestDispatch_TelemetryAndLogs(t *testing.T) {
	tel := telemetry.NewTestTelemetry()
	log := logging.NewTestLogger()
	fake := notiontest.New().Fail(http.MethodPost, "/search", failure.New(failure.RateLimited, "slow down"))

	d := fakeDispatcher(fake, Options{
		Logger:  log.Logger,
		Tracer:  tel.Tracer("test"),
		Metrics: NewMetrics(tel.Meter("test"), nil),
	})

	ctx := context.Background()
	assert.True(t, d.Dispatch(ctx, tools.GetUsers, nil).OK())
	assert.False(t, d.Dispatch(ctx, tools.Search, map[string]any{"query": "q"}).OK())

	tel.AssertSpanExists(t, "dispatch search")
	tel.AssertSpanAttribute(t, "dispatch search", "error.kind", "RateLimited")
	assert.EqualValues(t, 1, tel.CounterValue(t, MetricInvocations, attribute.String("tool", tools.GetUsers)))
	assert.EqualValues(t, 1, tel.CounterValue(t, MetricErrors,
		attribute.String("tool", tools.Search), attribute.String("kind", "RateLimited")))
	assert.EqualValues(t, 0, tel.CounterValue(t, MetricErrors, attribute.String("tool", tools.GetUsers)))

	log.AssertLogged(t, zapcore.WarnLevel, "tool failed")
	entries := log.FilterMessage("tool failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, tools.Search, fields["tool"])
	assert.NotEmpty(t, fields["request.id"])
}

func TestEnvelope_JSONShape(t *testing.T) {
	data, err := json.Marshal(Failure(failure.Missing("id")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","payload":{"kind":"MissingArgument","message":"missing required argument \"id\"","detail":{"field":"id"}}}`, string(data))

	data, err = json.Marshal(Failure(assert.AnError))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"kind":"InternalError"`))
}

type countingService struct {
	mu      sync.Mutex
	active  int
	maxSeen int
}

func (c *countingService) Dispatch(context.Context, string, map[string]any) Envelope {
	c.mu.Lock()
	c.active++
	if c.active > c.maxSeen {
		c.maxSeen = c.active
	}
	c.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	c.mu.Lock()
	c.active--
	c.mu.Unlock()
	return Success(nil)
}

func TestSequential(t *testing.T) {
	inner := &countingService{}
	s := Serialize(inner)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(context.Background(), tools.Search, nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inner.maxSeen)
}
