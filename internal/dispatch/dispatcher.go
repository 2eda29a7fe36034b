// Package dispatch routes a tool invocation to its handler and wraps the
// outcome in a response envelope.
//
// Every transport shell (CLI, MCP, HTTP) goes through Dispatcher.Dispatch:
// lookup, argument validation, handler invocation, then envelope. Error
// messages and details are scrubbed of secrets before they leave.
package dispatch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/notionctl/internal/failure"
	"github.com/fyrsmithlabs/notionctl/internal/logging"
	"github.com/fyrsmithlabs/notionctl/internal/secrets"
	"github.com/fyrsmithlabs/notionctl/internal/tools"
)

// Service dispatches one tool invocation.
type Service interface {
	Dispatch(ctx context.Context, tool string, args map[string]any) Envelope
}

// Options configures a Dispatcher. Zero values select no-op or default
// implementations.
type Options struct {
	Logger   *logging.Logger
	Scrubber *secrets.Scrubber
	Tracer   trace.Tracer
	Metrics  *Metrics
}

// Dispatcher executes tools from the static registry.
type Dispatcher struct {
	env      *tools.Env
	logger   *logging.Logger
	scrubber *secrets.Scrubber
	tracer   trace.Tracer
	metrics  *Metrics
}

// New creates a Dispatcher whose handlers run against env.
func New(env *tools.Env, opts Options) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Scrubber == nil {
		opts.Scrubber = secrets.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(instrumentationName)
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil, opts.Logger.Underlying())
	}
	return &Dispatcher{
		env:      env,
		logger:   opts.Logger.Named("dispatch"),
		scrubber: opts.Scrubber,
		tracer:   opts.Tracer,
		metrics:  opts.Metrics,
	}
}

// Dispatch runs tool with args and returns the envelope. It never panics
// and never returns a nil payload for an error.
func (d *Dispatcher) Dispatch(ctx context.Context, tool string, args map[string]any) Envelope {
	id := uuid.NewString()
	ctx = logging.WithRequestID(ctx, id)
	ctx = logging.WithTool(ctx, tool)

	ctx, span := d.tracer.Start(ctx, "dispatch "+tool, trace.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("request.id", id),
	))
	defer span.End()

	d.metrics.IncrementActive(ctx, tool)
	defer d.metrics.DecrementActive(ctx, tool)

	start := time.Now()
	payload, err := d.invoke(ctx, tool, args)
	elapsed := time.Since(start)
	d.metrics.RecordInvocation(ctx, tool, elapsed, err)

	if err != nil {
		fe := d.scrub(failure.As(err))
		span.SetAttributes(attribute.String("error.kind", string(fe.Kind)))
		span.SetStatus(codes.Error, fe.Message)

		fields := []zap.Field{
			zap.String("kind", string(fe.Kind)),
			zap.String("error", fe.Message),
			zap.Duration("duration", elapsed),
		}
		if fe.Kind == failure.InternalError {
			d.logger.Error(ctx, "tool failed", fields...)
		} else {
			d.logger.Warn(ctx, "tool failed", fields...)
		}
		return Failure(fe)
	}

	span.SetStatus(codes.Ok, "")
	d.logger.Debug(ctx, "tool completed", zap.Duration("duration", elapsed))
	return Success(payload)
}

func (d *Dispatcher) invoke(ctx context.Context, tool string, args map[string]any) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = failure.New(failure.InternalError, "tool %s panicked: %v", tool, r)
		}
	}()

	desc, err := tools.Lookup(tool)
	if err != nil {
		return nil, err
	}
	validated, err := desc.Validate(args)
	if err != nil {
		return nil, err
	}

	d.logger.Debug(ctx, "dispatching tool", zap.Strings("arguments", argumentNames(validated)))
	return desc.Handler(ctx, d.env, validated)
}

// scrub returns a copy of fe with secrets removed from its message and
// detail.
func (d *Dispatcher) scrub(fe *failure.Error) *failure.Error {
	out := *fe
	out.Message = d.scrubber.String(fe.Message)
	if fe.Detail != nil {
		if detail, ok := d.scrubber.Value(fe.Detail).(map[string]any); ok {
			out.Detail = detail
		}
	}
	return &out
}

// argumentNames lists argument keys. Values are never logged.
func argumentNames(args map[string]any) []string {
	names := make([]string, 0, len(args))
	for k := range args {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Describe is a short human-readable form of an envelope for log lines.
func Describe(env Envelope) string {
	if p, ok := env.AsError(); ok {
		return fmt.Sprintf("%s: %s", p.Kind, p.Message)
	}
	return string(env.Status)
}
