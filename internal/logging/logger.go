package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	sentryhandler "github.com/getsentry/sentry-go/slog"
)

// Logger wraps slog.Logger with typed event helpers for response-matrix
// builds, game events, analysis runs and HTTP requests.
type Logger struct {
	*slog.Logger
}

type LogConfig struct {
	Level       string
	Environment string
	Service     string
	SentryDSN   string
	AddSource   bool
}

func NewLogger(config LogConfig) (*Logger, error) {
	var level slog.Level
	switch config.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if config.Environment == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	if config.SentryDSN != "" {
		sentryOpts := sentryhandler.Option{
			Level: level,
		}
		handler = sentryOpts.NewSentryHandler(context.Background())
	}

	logger := slog.New(handler)
	logger = logger.With(
		"service", config.Service,
		"environment", config.Environment,
	)

	return &Logger{Logger: logger}, nil
}

func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	return l.Logger.With("correlation_id", getCorrelationID(ctx))
}

func (l *Logger) LogError(ctx context.Context, err error, msg string, fields ...interface{}) {
	if l == nil || l.Logger == nil {
		return
	}
	args := make([]interface{}, 0, len(fields)+4)
	args = append(args, "error", err)
	args = append(args, "correlation_id", getCorrelationID(ctx))
	args = append(args, fields...)
	l.Logger.Error(msg, args...)
}

func (l *Logger) LogInfo(ctx context.Context, msg string, fields ...interface{}) {
	if l == nil || l.Logger == nil {
		return
	}
	args := make([]interface{}, 0, len(fields)+2)
	args = append(args, "correlation_id", getCorrelationID(ctx))
	args = append(args, fields...)
	l.Logger.Info(msg, args...)
}

func (l *Logger) LogDebug(ctx context.Context, msg string, fields ...interface{}) {
	if l == nil || l.Logger == nil {
		return
	}
	args := make([]interface{}, 0, len(fields)+2)
	args = append(args, "correlation_id", getCorrelationID(ctx))
	args = append(args, fields...)
	l.Logger.Debug(msg, args...)
}

func (l *Logger) LogWarn(ctx context.Context, msg string, fields ...interface{}) {
	if l == nil || l.Logger == nil {
		return
	}
	args := make([]interface{}, 0, len(fields)+2)
	args = append(args, "correlation_id", getCorrelationID(ctx))
	args = append(args, fields...)
	l.Logger.Warn(msg, args...)
}

type contextKey string

const correlationIDKey contextKey = "correlation_id"

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

func getCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return generateCorrelationID()
}

func generateCorrelationID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

// MatrixEventFields describes a response-matrix build event.
type MatrixEventFields struct {
	DictionaryID string
	WordLength   int
	WordCount    int
	BuildMS      int64
}

func (l *Logger) LogMatrixBuilt(ctx context.Context, fields MatrixEventFields) {
	if l == nil || l.Logger == nil {
		return
	}
	l.Logger.Info("response matrix built",
		"correlation_id", getCorrelationID(ctx),
		"dictionary_id", fields.DictionaryID,
		"word_length", fields.WordLength,
		"word_count", fields.WordCount,
		"build_ms", fields.BuildMS,
	)
}

// GameEventFields describes a single-session lifecycle event.
type GameEventFields struct {
	EventType string
	GameID    string
	Strategy  string
	Attempts  int
}

func (l *Logger) LogGameEvent(ctx context.Context, fields GameEventFields) {
	if l == nil || l.Logger == nil {
		return
	}
	l.Logger.Info("game event",
		"correlation_id", getCorrelationID(ctx),
		"event_type", fields.EventType,
		"game_id", fields.GameID,
		"strategy", fields.Strategy,
		"attempts", fields.Attempts,
	)
}

// AnalysisEventFields describes an analysis-run completion.
type AnalysisEventFields struct {
	Strategy     string
	DictionaryID string
	Games        int
	Wins         int
	DurationMS   int64
}

func (l *Logger) LogAnalysisCompleted(ctx context.Context, fields AnalysisEventFields) {
	if l == nil || l.Logger == nil {
		return
	}
	l.Logger.Info("analysis completed",
		"correlation_id", getCorrelationID(ctx),
		"strategy", fields.Strategy,
		"dictionary_id", fields.DictionaryID,
		"games", fields.Games,
		"wins", fields.Wins,
		"duration_ms", fields.DurationMS,
	)
}

type RequestFields struct {
	Method    string
	URL       string
	UserAgent string
	IP        string
	Duration  time.Duration
	Status    int
}

func (l *Logger) LogRequest(ctx context.Context, fields RequestFields) {
	if l == nil || l.Logger == nil {
		return
	}
	l.Logger.Info("HTTP request completed",
		"correlation_id", getCorrelationID(ctx),
		"method", fields.Method,
		"url", fields.URL,
		"user_agent", fields.UserAgent,
		"ip", fields.IP,
		"duration_ms", fields.Duration.Milliseconds(),
		"status", fields.Status,
	)
}
