// Package http serves the Notion tools over a small JSON API.
//
// POST /api/v1/dispatch takes {"tool": ..., "arguments": {...}} and answers
// with the dispatch envelope. The server also exposes /health, the tool
// catalogue and prometheus metrics.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/notionctl/internal/dispatch"
	"github.com/fyrsmithlabs/notionctl/internal/failure"
	"github.com/fyrsmithlabs/notionctl/internal/logging"
	"github.com/fyrsmithlabs/notionctl/internal/tools"
)

// maxBodyBytes bounds a dispatch request body.
const maxBodyBytes = 4 << 20

// Server provides the HTTP transport.
type Server struct {
	echo       *echo.Echo
	dispatcher dispatch.Service
	logger     *logging.Logger
	config     *Config
	registry   *prometheus.Registry
	dispatches *prometheus.CounterVec
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int

	// Meter receives the otel request instruments. Nil uses the global
	// meter provider.
	Meter metric.Meter
}

// NewServer creates a server that hands every dispatch request to
// dispatcher, one at a time.
func NewServer(dispatcher dispatch.Service, logger *logging.Logger, cfg *Config) (*Server, error) {
	if dispatcher == nil {
		return nil, errors.New("dispatcher cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 9191,
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	s := &Server{
		echo:       echo.New(),
		dispatcher: dispatch.Serialize(dispatcher),
		logger:     logger.Named("http"),
		config:     cfg,
		registry:   registry,
		dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notionctl",
			Subsystem: "http",
			Name:      "dispatches_total",
			Help:      "Tool dispatches served over HTTP by tool and envelope status.",
		}, []string{"tool", "status"}),
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.logRequests)
	e.Use(NewHTTPMetrics(cfg.Meter, s.logger.Underlying()).MetricsMiddleware())

	s.registerRoutes()
	return s, nil
}

func (s *Server) logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		reqID := c.Response().Header().Get(echo.HeaderXRequestID)
		ctx := logging.WithRequestID(c.Request().Context(), reqID)
		c.SetRequest(c.Request().WithContext(ctx))

		err := next(c)

		s.logger.Info(ctx, "http request",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Int("status", c.Response().Status),
			zap.Duration("duration", time.Since(start)),
		)
		return err
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/dispatch", s.handleDispatch)
	v1.GET("/tools", s.handleTools)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// DispatchRequest is the request body for POST /api/v1/dispatch.
type DispatchRequest struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ToolInfo describes one tool in GET /api/v1/tools.
type ToolInfo struct {
	Name         string `json:"name"`
	ProtocolName string `json:"protocol_name"`
	Description  string `json:"description"`
	InputSchema  any    `json:"input_schema"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleTools(c echo.Context) error {
	all := tools.All()
	out := make([]ToolInfo, 0, len(all))
	for _, d := range all {
		out = append(out, ToolInfo{
			Name:         d.Name,
			ProtocolName: d.ProtocolName(),
			Description:  d.Description,
			InputSchema:  d.InputSchema(),
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleDispatch(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := decodeRequest(c.Request().Body)
	if err != nil {
		s.logger.Warn(ctx, "invalid dispatch request", zap.Error(err))
		return s.reply(c, "", dispatch.Failure(err))
	}
	args, err := dispatch.DecodeArguments(req.Arguments)
	if err != nil {
		return s.reply(c, req.Tool, dispatch.Failure(err))
	}
	return s.reply(c, req.Tool, s.dispatcher.Dispatch(ctx, req.Tool, args))
}

func decodeRequest(body io.Reader) (DispatchRequest, error) {
	var req DispatchRequest
	dec := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return req, failure.Wrap(failure.InvalidArgument, err, "request body must be a JSON object").
			With("field", "body").
			With("expected", `{"tool": string, "arguments": object}`)
	}
	if req.Tool == "" {
		return req, failure.Missing("tool")
	}
	return req, nil
}

func (s *Server) reply(c echo.Context, tool string, env dispatch.Envelope) error {
	s.dispatches.WithLabelValues(toolLabel(tool), string(env.Status)).Inc()
	return c.JSON(statusFor(env), env)
}

// toolLabel bounds the tool label to registered names.
func toolLabel(tool string) string {
	if tool == "" {
		return "none"
	}
	if _, err := tools.Lookup(tool); err != nil {
		return "unknown"
	}
	return tool
}

// statusFor maps an envelope to an HTTP status. Argument problems are the
// caller's fault; remote failures are reported as a bad gateway.
func statusFor(env dispatch.Envelope) int {
	p, ok := env.AsError()
	if !ok {
		return http.StatusOK
	}
	switch p.Kind {
	case failure.MissingArgument, failure.InvalidArgument:
		return http.StatusBadRequest
	case failure.UnknownTool:
		return http.StatusNotFound
	case failure.AuthError, failure.RateLimited, failure.RemoteError,
		failure.MalformedResponse, failure.TransportError:
		return http.StatusBadGateway
	case failure.CredentialNotFound:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
