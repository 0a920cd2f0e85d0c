// Package logging wraps go.uber.org/zap behind the Logger interface the rest
// of the module depends on.  Engine, registry, stores, and CLI all receive a
// Logger through their constructors; nothing outside this package imports zap
// directly, so the backend can change without touching resolution logic.
//
// The CLI builds one console logger on stderr at startup and publishes it
// with SetDefault; stdout stays reserved for command output.
package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noticeworks/lienclock/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Logger contract
// ─────────────────────────────────────────────────────────────────────────────

// Logger is the structured logging contract for the whole module.
// Implementations must be safe for concurrent use.
type Logger interface {
	// Debug records high-volume diagnostic detail, off in production.
	Debug(msg string, fields ...Field)

	// Info records routine operational events.
	Info(msg string, fields ...Field)

	// Warn records recoverable conditions worth an operator's attention.
	Warn(msg string, fields ...Field)

	// Error records failures scoped to one request or operation.
	Error(msg string, fields ...Field)

	// Fatal records the message and exits the process.  Startup only; never
	// on a resolution path.
	Fatal(msg string, fields ...Field)

	// With returns a child carrying the fields on every entry it emits.
	// The receiver is unchanged.
	With(fields ...Field) Logger

	// Named returns a child whose name extends the receiver's with a dot,
	// e.g. "engine" → "engine.registry".
	Named(name string) Logger
}

// Field is one typed key-value pair on a log entry.  A concrete struct keeps
// call sites explicit and lets the zap adapter translate without reflection
// for the common types.
type Field struct {
	Key   string
	Value interface{}
}

// String constructs a string Field.
func String(key, val string) Field { return Field{Key: key, Value: val} }

// Int constructs an int Field.
func Int(key string, val int) Field { return Field{Key: key, Value: val} }

// Int64 constructs an int64 Field.
func Int64(key string, val int64) Field { return Field{Key: key, Value: val} }

// Float64 constructs a float64 Field.
func Float64(key string, val float64) Field { return Field{Key: key, Value: val} }

// Bool constructs a bool Field.
func Bool(key string, val bool) Field { return Field{Key: key, Value: val} }

// Duration constructs a time.Duration Field.
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }

// Err captures an error under the canonical key "error"; a nil error logs
// as "<nil>".
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Any constructs a Field from an arbitrary value.  Prefer the typed
// constructors; this one falls back to reflection inside zap.
func Any(key string, val interface{}) Field { return Field{Key: key, Value: val} }

// Jurisdiction constructs a Field carrying a jurisdiction code under the
// canonical key "jurisdiction", so log pipelines can aggregate per state.
func Jurisdiction(code fmt.Stringer) Field {
	return Field{Key: "jurisdiction", Value: code.String()}
}

// Date constructs a Field carrying a civil date in YYYY-MM-DD form.
func Date(key string, d common.Date) Field {
	return Field{Key: key, Value: d.String()}
}

// ─────────────────────────────────────────────────────────────────────────────
// Construction
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig carries the logger construction parameters, populated from the
// application configuration.
type LogConfig struct {
	// Level is the minimum severity to emit: "debug", "info", "warn",
	// "error" (case-insensitive).  Anything else means "info".
	Level string `yaml:"level" json:"level"`

	// Format is "json" for aggregation pipelines or "console" for humans.
	// Anything else means "json".
	Format string `yaml:"format" json:"format"`

	// OutputPaths lists the sinks for log entries; "stdout" and "stderr"
	// are special.  Nil means ["stdout"].
	OutputPaths []string `yaml:"output_paths" json:"output_paths"`

	// ErrorOutputPaths lists the sinks for zap's own failures.  Nil means
	// ["stderr"].
	ErrorOutputPaths []string `yaml:"error_output_paths" json:"error_output_paths"`
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewLogger builds a zap-backed Logger from cfg, filling the defaults
// documented on LogConfig.  It fails only when zap cannot open an output
// path.
func NewLogger(cfg LogConfig) (Logger, error) {
	if len(cfg.OutputPaths) == 0 {
		cfg.OutputPaths = []string{"stdout"}
	}
	if len(cfg.ErrorOutputPaths) == 0 {
		cfg.ErrorOutputPaths = []string{"stderr"}
	}

	console := cfg.Format == "console"
	encCfg := zap.NewProductionEncoderConfig()
	encoding := "json"
	if console {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encoding = "console"
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Development:      console,
		Encoding:         encoding,
		EncoderConfig:    encCfg,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: cfg.ErrorOutputPaths,
	}.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("logging: build zap logger: %w", err)
	}
	return &zapLogger{z: z}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// zap adapter
// ─────────────────────────────────────────────────────────────────────────────

type zapLogger struct {
	z *zap.Logger
}

// zapFields translates Field values for zap, without reflection for the
// types the module actually logs.
func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			out = append(out, zap.String(f.Key, v))
		case int:
			out = append(out, zap.Int(f.Key, v))
		case int64:
			out = append(out, zap.Int64(f.Key, v))
		case bool:
			out = append(out, zap.Bool(f.Key, v))
		case float64:
			out = append(out, zap.Float64(f.Key, v))
		case time.Duration:
			out = append(out, zap.Duration(f.Key, v))
		case error:
			out = append(out, zap.NamedError(f.Key, v))
		default:
			out = append(out, zap.Any(f.Key, v))
		}
	}
	return out
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, zapFields(fields)...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, zapFields(fields)...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, zapFields(fields)...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, zapFields(fields)...) }
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.z.Fatal(msg, zapFields(fields)...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(zapFields(fields)...)}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{z: l.z.Named(name)}
}

// ─────────────────────────────────────────────────────────────────────────────
// Nop logger and process default
// ─────────────────────────────────────────────────────────────────────────────

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}
func (nopLogger) Fatal(string, ...Field) {}

func (n nopLogger) With(...Field) Logger { return n }
func (n nopLogger) Named(string) Logger  { return n }

// NewNopLogger returns a Logger that discards everything.  Constructors
// treat a nil Logger as this.
func NewNopLogger() Logger { return nopLogger{} }

var (
	defaultMu sync.RWMutex
	defaultLg Logger = nopLogger{}
)

// SetDefault publishes the process-wide Logger.  Call once at startup;
// a nil argument is ignored.
func SetDefault(l Logger) {
	if l == nil {
		return
	}
	defaultMu.Lock()
	defaultLg = l
	defaultMu.Unlock()
}

// Default returns the process-wide Logger, a nop until SetDefault runs.
// Constructor injection is still the norm; Default exists for the few spots
// with no injection path.
func Default() Logger {
	defaultMu.RLock()
	l := defaultLg
	defaultMu.RUnlock()
	return l
}
