// Package mcp exposes the Notion tools over the Model Context Protocol.
//
// It uses the MCP SDK (github.com/modelcontextprotocol/go-sdk/mcp). Every
// tool call is handed to a dispatch.Service and the resulting envelope is
// returned both as JSON text and as structured content.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/notionctl/internal/dispatch"
	"github.com/fyrsmithlabs/notionctl/internal/logging"
	"github.com/fyrsmithlabs/notionctl/internal/tools"
)

// Server is an MCP server backed by a dispatcher.
type Server struct {
	mcp        *mcp.Server
	dispatcher dispatch.Service
	logger     *logging.Logger
}

// Config configures the MCP server.
type Config struct {
	// Name is the server implementation name (default: "notionctl")
	Name string

	// Version is the server version (default: "dev")
	Version string

	// Logger for structured logging
	Logger *logging.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "notionctl",
		Version: "dev",
		Logger:  logging.NewNop(),
	}
}

// NewServer creates a server that registers every tool in the registry.
// Calls are serialized: the dispatcher sees one invocation at a time.
func NewServer(cfg *Config, dispatcher dispatch.Service) (*Server, error) {
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}

	s := &Server{
		mcp: mcp.NewServer(
			&mcp.Implementation{
				Name:    cfg.Name,
				Version: cfg.Version,
			},
			nil,
		),
		dispatcher: dispatch.Serialize(dispatcher),
		logger:     cfg.Logger.Named("mcp"),
	}
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	for _, d := range tools.All() {
		s.mcp.AddTool(&mcp.Tool{
			Name:        d.ProtocolName(),
			Description: d.Description,
			InputSchema: d.InputSchema(),
		}, s.handler(d.Name))
	}
}

func (s *Server) handler(tool string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var raw json.RawMessage
		if req != nil && req.Params != nil {
			raw = req.Params.Arguments
		}

		var env dispatch.Envelope
		args, err := dispatch.DecodeArguments(raw)
		if err != nil {
			env = dispatch.Failure(err)
		} else {
			env = s.dispatcher.Dispatch(ctx, tool, args)
		}

		if !env.OK() {
			s.logger.Debug(ctx, "tool call returned error", zap.String("tool", tool), zap.String("outcome", dispatch.Describe(env)))
		}
		return toResult(env)
	}
}

func toResult(env dispatch.Envelope) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(data)}},
		StructuredContent: json.RawMessage(data),
		IsError:           !env.OK(),
	}, nil
}

// Connect serves one session over transport.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcp.Connect(ctx, transport, nil)
}

// Run starts the MCP server on the stdio transport and blocks until the
// client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info(ctx, "starting MCP server on stdio transport")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}
