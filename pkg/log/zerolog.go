package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ZerologProvider implements LoggerProvider on top of rs/zerolog.
// It is the provider used for real pipeline runs; tests use
// TestLoggerProvider instead.
type ZerologProvider struct {
	mu    sync.RWMutex
	level Level
	root  zerolog.Logger
}

// NewZerologProvider creates a provider that writes human-readable lines
// to stderr. This is the default used when no explicit sink is configured.
func NewZerologProvider(level Level) *ZerologProvider {
	return NewZerologProviderWithWriter(level, zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
}

// NewZerologProviderWithWriter creates a provider that writes to w.
// Pass a raw writer for JSON output, a zerolog.ConsoleWriter for plain
// text, or a zerolog.MultiLevelWriter to fan out to several sinks at
// once, such as stderr plus the dated training log.
func NewZerologProviderWithWriter(level Level, w io.Writer) *ZerologProvider {
	return &ZerologProvider{
		level: level,
		root:  zerolog.New(w).With().Timestamp().Logger(),
	}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	return &zerologLogger{provider: p, logger: p.root}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
// The name is attached under ComponentKey on every record.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{
		provider: p,
		logger:   p.root.With().Str(ComponentKey, name).Logger(),
	}
}

// SetLevel implements LoggerProvider.SetLevel. The new level applies to
// all loggers previously obtained from this provider.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}

func (p *ZerologProvider) enabled(level Level) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.level <= level
}

// zerologLogger adapts a zerolog.Logger to the Logger interface.
// Level filtering happens here rather than inside zerolog so that
// SetLevel on the provider takes effect immediately.
type zerologLogger struct {
	provider *ZerologProvider
	logger   zerolog.Logger
}

// Debug implements Logger.Debug.
func (z *zerologLogger) Debug(msg string, fields ...any) {
	if !z.provider.enabled(LevelDebug) {
		return
	}
	applyFields(z.logger.Debug(), fields).Msg(msg)
}

// Info implements Logger.Info.
func (z *zerologLogger) Info(msg string, fields ...any) {
	if !z.provider.enabled(LevelInfo) {
		return
	}
	applyFields(z.logger.Info(), fields).Msg(msg)
}

// Warn implements Logger.Warn.
func (z *zerologLogger) Warn(msg string, fields ...any) {
	if !z.provider.enabled(LevelWarn) {
		return
	}
	applyFields(z.logger.Warn(), fields).Msg(msg)
}

// Error implements Logger.Error. When the first field is an error value
// it is attached under the standard error key together with a stacktrace
// extracted from it, matching the behaviour of ErrFmtHandler on the slog
// side.
func (z *zerologLogger) Error(msg string, fields ...any) {
	if !z.provider.enabled(LevelError) {
		return
	}
	ev := z.logger.Error()
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			ev = attachError(ev, err)
			fields = fields[1:]
		}
	}
	applyFields(ev, fields).Msg(msg)
}

// With implements Logger.With.
func (z *zerologLogger) With(fields ...any) Logger {
	ctx := z.logger.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key := fieldKey(fields[i])
		switch v := fields[i+1].(type) {
		case zerolog.LogObjectMarshaler:
			ctx = ctx.Object(key, v)
		case error:
			ctx = ctx.AnErr(key, v)
		default:
			ctx = ctx.Interface(key, v)
		}
	}
	return &zerologLogger{provider: z.provider, logger: ctx.Logger()}
}

// Enabled implements Logger.Enabled.
func (z *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return z.provider.enabled(level)
}

func applyFields(ev *zerolog.Event, fields []any) *zerolog.Event {
	for i := 0; i+1 < len(fields); i += 2 {
		key := fieldKey(fields[i])
		switch v := fields[i+1].(type) {
		case zerolog.LogObjectMarshaler:
			ev = ev.Object(key, v)
		case error:
			ev = ev.AnErr(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	return ev
}

func attachError(ev *zerolog.Event, err error) *zerolog.Event {
	if obj, ok := err.(zerolog.LogObjectMarshaler); ok {
		ev = ev.Object(ErrAttrKey, obj)
	} else {
		ev = ev.AnErr(ErrAttrKey, err)
	}
	if st := extractStacktrace(err); st != "" {
		ev = ev.Str(StacktraceAttrKey, st)
	}
	return ev
}

func fieldKey(v any) string {
	if key, ok := v.(string); ok {
		return key
	}
	return fmt.Sprintf("%v", v)
}

var (
	defaultMu       sync.RWMutex
	defaultProvider LoggerProvider = NewZerologProvider(LevelInfo)
)

// SetDefaultProvider replaces the package-level provider. The pipeline
// installs its configured provider here at startup so that components
// reached through GetLoggerWithName share the same sinks.
func SetDefaultProvider(p LoggerProvider) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultProvider = p
}

// DefaultProvider returns the current package-level provider.
func DefaultProvider() LoggerProvider {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultProvider
}

// GetLogger returns the default logger from the package-level provider.
func GetLogger() Logger {
	return DefaultProvider().GetLogger()
}

// GetLoggerWithName returns a component logger from the package-level provider.
func GetLoggerWithName(name string) Logger {
	return DefaultProvider().GetLoggerWithName(name)
}
