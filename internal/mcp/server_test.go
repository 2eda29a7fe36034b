package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/notionctl/internal/config"
	"github.com/fyrsmithlabs/notionctl/internal/credential"
	"github.com/fyrsmithlabs/notionctl/internal/dispatch"
	"github.com/fyrsmithlabs/notionctl/internal/failure"
	"github.com/fyrsmithlabs/notionctl/internal/notion"
	"github.com/fyrsmithlabs/notionctl/internal/notion/notiontest"
	"github.com/fyrsmithlabs/notionctl/internal/tools"
)

type tokenResolver struct{}

func (tokenResolver) Resolve(context.Context) (credential.Credential, error) {
	return credential.Credential{Value: "ntn_test", Source: credential.SourceEnvironment}, nil
}

func connect(t *testing.T, fake *notiontest.Fake) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	session := notion.NewSession(tokenResolver{}, func(config.Secret) notion.Caller { return fake }, nil)
	d := dispatch.New(&tools.Env{Session: session}, dispatch.Options{})

	srv, err := NewServer(nil, d)
	require.NoError(t, err)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := srv.Connect(ctx, serverTransport)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func envelopeOf(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])

	var env map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &env))
	return env
}

func TestNewServer_RequiresDispatcher(t *testing.T) {
	_, err := NewServer(nil, nil)
	assert.Error(t, err)
}

func TestListTools(t *testing.T) {
	cs := connect(t, notiontest.New())

	res, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, res.Tools, 16)

	names := make(map[string]bool)
	for _, tool := range res.Tools {
		assert.True(t, strings.HasPrefix(tool.Name, tools.ProtocolPrefix), tool.Name)
		assert.NotEmpty(t, tool.Description)
		names[tool.Name] = true
	}
	assert.True(t, names["notion_duplicate_page"])
	assert.True(t, names["notion_query_meeting_notes"])
}

func TestCallTool_Success(t *testing.T) {
	fake := notiontest.New().Reply(http.MethodGet, "/pages/abc123", notion.Object{"id": "abc123"})
	cs := connect(t, fake)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "notion_fetch",
		Arguments: map[string]any{"id": "abc123"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	env := envelopeOf(t, res)
	assert.Equal(t, "success", env["status"])
	assert.Equal(t, map[string]any{"id": "abc123"}, env["payload"])
}

func TestCallTool_IntegerArguments(t *testing.T) {
	fake := notiontest.New()
	cs := connect(t, fake)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "notion_search",
		Arguments: map[string]any{"query": "plan", "max_results": 3},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError, "%+v", envelopeOf(t, res))
	assert.Equal(t, 1, fake.Count())
}

func TestCallTool_ErrorEnvelope(t *testing.T) {
	fake := notiontest.New()
	cs := connect(t, fake)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "notion_create_database",
		Arguments: map[string]any{"parent_id": "p"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	env := envelopeOf(t, res)
	assert.Equal(t, "error", env["status"])
	payload := env["payload"].(map[string]any)
	assert.Equal(t, string(failure.MissingArgument), payload["kind"])
	assert.Zero(t, fake.Count())
}

func TestSessionSurvivesMalformedCalls(t *testing.T) {
	fake := notiontest.New().Reply(http.MethodGet, "/pages/abc123", notion.Object{"id": "abc123"})
	cs := connect(t, fake)
	ctx := context.Background()

	// Arguments that are not an object.
	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: "notion_fetch", Arguments: []any{"abc123"}})
	assert.True(t, err != nil || (res != nil && res.IsError), "non-object arguments must fail")

	// A tool that does not exist.
	res, err = cs.CallTool(ctx, &mcp.CallToolParams{Name: "notion_drop_workspace", Arguments: map[string]any{}})
	assert.True(t, err != nil || (res != nil && res.IsError), "unknown tool must fail")

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{Name: "notion_fetch", Arguments: map[string]any{"id": "abc123"}})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "success", envelopeOf(t, res)["status"])
	assert.Equal(t, 1, fake.Count())
}
