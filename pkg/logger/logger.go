package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/lmittmann/tint"
)

// Level represents the severity of a log message
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// Format selects the output encoding of a logger
type Format string

const (
	TextFormat Format = "text"
	JSONFormat Format = "json"
)

// Logger is the main logger interface
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithPrefix(prefix string) Logger
}

// Config holds logger configuration
type Config struct {
	Level    Level
	Format   Format
	Writer   io.Writer
	NoColor  bool
	ShowTime bool
}

// logger implements Logger on top of a slog handler. Derived loggers share
// the level variable so SetLevel reaches all of them.
type logger struct {
	cfg    Config
	level  *slog.LevelVar
	slog   *slog.Logger
	prefix string
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = newLogger(defaultConfig())
)

func defaultConfig() Config {
	return Config{
		Level:    InfoLevel,
		Format:   TextFormat,
		Writer:   os.Stdout,
		NoColor:  false,
		ShowTime: true,
	}
}

// New creates a new logger with default configuration
func New() Logger {
	return newLogger(defaultConfig())
}

// NewWithConfig creates a new logger with custom configuration
func NewWithConfig(cfg Config) Logger {
	return newLogger(cfg)
}

func newLogger(cfg Config) *logger {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.Format == "" {
		cfg.Format = TextFormat
	}
	lv := new(slog.LevelVar)
	lv.Set(cfg.Level.slogLevel())
	return &logger{
		cfg:   cfg,
		level: lv,
		slog:  slog.New(newHandler(cfg, lv)),
	}
}

func newHandler(cfg Config, lv *slog.LevelVar) slog.Handler {
	replace := func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 && a.Key == slog.TimeKey && !cfg.ShowTime {
			return slog.Attr{}
		}
		return a
	}

	if cfg.Format == JSONFormat {
		return slog.NewJSONHandler(cfg.Writer, &slog.HandlerOptions{
			Level:       lv,
			ReplaceAttr: replace,
		})
	}

	return tint.NewHandler(cfg.Writer, &tint.Options{
		Level:      lv,
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			a = replace(groups, a)
			if a.Value.Kind() == slog.KindAny {
				if _, ok := a.Value.Any().(error); ok {
					return tint.Attr(9, a)
				}
			}
			return a
		},
	})
}

// Configure replaces the default logger
func Configure(cfg Config) {
	l := newLogger(cfg)
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// Default returns the package-level logger
func Default() Logger {
	return current()
}

func current() *logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetLevel sets the global log level
func SetLevel(level Level) {
	current().level.Set(level.slogLevel())
}

// SetNoColor disables color output
func SetNoColor(noColor bool) {
	l := current()
	cfg := l.cfg
	cfg.NoColor = noColor
	cfg.Level = fromSlogLevel(l.level.Level())
	Configure(cfg)
}

// NoColor reports whether the default logger renders without color
func NoColor() bool {
	return current().cfg.NoColor
}

// Helper methods for the default logger
func Debug(args ...interface{})                       { current().Debug(args...) }
func Debugf(format string, args ...interface{})       { current().Debugf(format, args...) }
func Info(args ...interface{})                        { current().Info(args...) }
func Infof(format string, args ...interface{})        { current().Infof(format, args...) }
func Warn(args ...interface{})                        { current().Warn(args...) }
func Warnf(format string, args ...interface{})        { current().Warnf(format, args...) }
func Error(args ...interface{})                       { current().Error(args...) }
func Errorf(format string, args ...interface{})       { current().Errorf(format, args...) }
func Fatal(args ...interface{})                       { current().Fatal(args...) }
func Fatalf(format string, args ...interface{})       { current().Fatalf(format, args...) }
func WithField(key string, value interface{}) Logger  { return current().WithField(key, value) }
func WithFields(fields map[string]interface{}) Logger { return current().WithFields(fields) }
func WithPrefix(prefix string) Logger                 { return current().WithPrefix(prefix) }

const levelFatal = slog.LevelError + 4

func (lv Level) slogLevel() slog.Level {
	switch lv {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	case FatalLevel:
		return levelFatal
	default:
		return slog.LevelInfo
	}
}

func fromSlogLevel(level slog.Level) Level {
	switch {
	case level >= levelFatal:
		return FatalLevel
	case level >= slog.LevelError:
		return ErrorLevel
	case level >= slog.LevelWarn:
		return WarnLevel
	case level >= slog.LevelInfo:
		return InfoLevel
	default:
		return DebugLevel
	}
}

func (l *logger) log(level Level, message string) {
	if l.prefix != "" {
		message = "[" + l.prefix + "] " + message
	}
	l.slog.Log(context.Background(), level.slogLevel(), message)

	if level == FatalLevel {
		os.Exit(1)
	}
}

func (l *logger) derive(s *slog.Logger, prefix string) *logger {
	return &logger{cfg: l.cfg, level: l.level, slog: s, prefix: prefix}
}

func (l *logger) Debug(args ...interface{}) { l.log(DebugLevel, fmt.Sprint(args...)) }
func (l *logger) Debugf(format string, args ...interface{}) {
	l.log(DebugLevel, fmt.Sprintf(format, args...))
}
func (l *logger) Info(args ...interface{}) { l.log(InfoLevel, fmt.Sprint(args...)) }
func (l *logger) Infof(format string, args ...interface{}) {
	l.log(InfoLevel, fmt.Sprintf(format, args...))
}
func (l *logger) Warn(args ...interface{}) { l.log(WarnLevel, fmt.Sprint(args...)) }
func (l *logger) Warnf(format string, args ...interface{}) {
	l.log(WarnLevel, fmt.Sprintf(format, args...))
}
func (l *logger) Error(args ...interface{}) { l.log(ErrorLevel, fmt.Sprint(args...)) }
func (l *logger) Errorf(format string, args ...interface{}) {
	l.log(ErrorLevel, fmt.Sprintf(format, args...))
}
func (l *logger) Fatal(args ...interface{}) { l.log(FatalLevel, fmt.Sprint(args...)) }
func (l *logger) Fatalf(format string, args ...interface{}) {
	l.log(FatalLevel, fmt.Sprintf(format, args...))
}

func (l *logger) WithField(key string, value interface{}) Logger {
	return l.derive(l.slog.With(key, value), l.prefix)
}

func (l *logger) WithFields(fields map[string]interface{}) Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return l.derive(l.slog.With(args...), l.prefix)
}

func (l *logger) WithPrefix(prefix string) Logger {
	return l.derive(l.slog, prefix)
}

// ParseLevel parses a string log level
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}

// ParseFormat parses a string log format, defaulting to text
func ParseFormat(format string) Format {
	if strings.EqualFold(format, string(JSONFormat)) {
		return JSONFormat
	}
	return TextFormat
}
