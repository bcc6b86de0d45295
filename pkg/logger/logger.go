package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// Logger is the structured logger passed through every layer.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
	Fatal(msg string, err error, fields ...Field)

	WithContext(ctx context.Context) Logger
	WithFields(fields ...Field) Logger
	WithRequestID(requestID string) Logger
	WithAdminID(adminID string) Logger
	WithComponent(component string) Logger
}

type Field struct {
	Key   string
	Value any
}

// ZerologLogger implements Logger using zerolog
type ZerologLogger struct {
	logger zerolog.Logger
}

type Config struct {
	Level       Level
	Environment string // "development" or "production"
	ServiceName string
	Version     string
	Output      io.Writer

	// FilePath enables a rotating file sink next to the primary output.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var globalLogger *ZerologLogger

// New builds a logger from cfg without touching the global instance.
func New(cfg Config) *ZerologLogger {
	var output io.Writer = os.Stdout
	if cfg.Output != nil {
		output = cfg.Output
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = "site-api"
	}

	zc := zerolog.New(withFileSink(consoleOrJSON(output, cfg), cfg)).With().Timestamp()
	if cfg.Environment == "production" {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		zc = zc.Str("service", cfg.ServiceName).Str("version", cfg.Version)
	}
	logger := zc.Logger()

	return &ZerologLogger{logger: logger.Level(zerologLevel(cfg.Level))}
}

// Init replaces the process-wide logger returned by Get.
func Init(cfg Config) {
	globalLogger = New(cfg)
}

func Get() Logger {
	if globalLogger == nil {
		Init(Config{
			Level:       LevelInfo,
			Environment: "development",
		})
	}
	return globalLogger
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() Logger {
	return &ZerologLogger{logger: zerolog.Nop()}
}

// consoleOrJSON pretty-prints to stdout outside production unless the caller
// supplied its own writer.
func consoleOrJSON(output io.Writer, cfg Config) io.Writer {
	if cfg.Environment == "production" || cfg.Output != nil {
		return output
	}
	return zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
}

func withFileSink(output io.Writer, cfg Config) io.Writer {
	if cfg.FilePath == "" {
		return output
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    orDefault(cfg.MaxSizeMB, 50),
		MaxBackups: orDefault(cfg.MaxBackups, 5),
		MaxAge:     orDefault(cfg.MaxAgeDays, 28),
		Compress:   true,
	}
	return zerolog.MultiLevelWriter(output, rotator)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func zerologLevel(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	case LevelFatal:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// emit attaches err and fields to e and writes msg.
func emit(e *zerolog.Event, msg string, err error, fields []Field) {
	if err != nil {
		e = e.Err(err)
	}
	for _, f := range fields {
		e = e.Interface(f.Key, f.Value)
	}
	e.Msg(msg)
}

func (l *ZerologLogger) Debug(msg string, fields ...Field) { emit(l.logger.Debug(), msg, nil, fields) }
func (l *ZerologLogger) Info(msg string, fields ...Field)  { emit(l.logger.Info(), msg, nil, fields) }
func (l *ZerologLogger) Warn(msg string, fields ...Field)  { emit(l.logger.Warn(), msg, nil, fields) }

func (l *ZerologLogger) Error(msg string, err error, fields ...Field) {
	emit(l.logger.Error(), msg, err, fields)
}

// Fatal logs and exits the process.
func (l *ZerologLogger) Fatal(msg string, err error, fields ...Field) {
	emit(l.logger.Fatal(), msg, err, fields)
}

// WithContext picks up the request and admin ids stored by the HTTP
// middleware.
func (l *ZerologLogger) WithContext(ctx context.Context) Logger {
	zc := l.logger.With()
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		zc = zc.Str("request_id", requestID)
	}
	if adminID, ok := ctx.Value(ContextKeyAdminID).(string); ok {
		zc = zc.Str("admin_id", adminID)
	}
	return &ZerologLogger{logger: zc.Logger()}
}

func (l *ZerologLogger) WithFields(fields ...Field) Logger {
	zc := l.logger.With()
	for _, f := range fields {
		zc = zc.Interface(f.Key, f.Value)
	}
	return &ZerologLogger{logger: zc.Logger()}
}

func (l *ZerologLogger) WithRequestID(requestID string) Logger {
	if requestID == "" {
		return l
	}
	return l.with("request_id", requestID)
}

func (l *ZerologLogger) WithAdminID(adminID string) Logger { return l.with("admin_id", adminID) }

func (l *ZerologLogger) WithComponent(component string) Logger {
	return l.with("component", component)
}

func (l *ZerologLogger) with(key, value string) *ZerologLogger {
	return &ZerologLogger{logger: l.logger.With().Str(key, value).Logger()}
}
