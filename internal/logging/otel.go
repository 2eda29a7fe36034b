package logging

import (
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// WithOTel returns a logger that also emits every entry through the otelzap
// bridge to provider. Entries get the same redaction as the local output
// and honour the local level. A nil provider returns l unchanged.
func (l *Logger) WithOTel(name string, provider log.LoggerProvider) *Logger {
	if provider == nil {
		return l
	}

	redactor := l.redactor
	if redactor == nil {
		var err error
		redactor, err = NewRedactingEncoder(nil, NewDefaultConfig().Redaction)
		if err != nil {
			return l
		}
	}

	bridge := &redactingCore{
		Core:     otelzap.NewCore(name, otelzap.WithLoggerProvider(provider)),
		level:    l.zap.Core(),
		redactor: redactor,
	}
	z := l.zap.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, bridge)
	}))
	return &Logger{zap: z, redactor: l.redactor}
}

// redactingCore scrubs messages and fields before they reach the wrapped core.
type redactingCore struct {
	zapcore.Core
	level    zapcore.LevelEnabler
	redactor *RedactingEncoder
}

func (c *redactingCore) Enabled(lvl zapcore.Level) bool {
	return c.level.Enabled(lvl) && c.Core.Enabled(lvl)
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{
		Core:     c.Core.With(c.redactor.redactAll(fields)),
		level:    c.level,
		redactor: c.redactor,
	}
}

func (c *redactingCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *redactingCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	ent.Message = c.redactor.scrub(ent.Message)
	return c.Core.Write(ent, c.redactor.redactAll(fields))
}
