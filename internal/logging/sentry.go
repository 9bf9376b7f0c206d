package logging

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

type SentryConfig struct {
	DSN              string
	Environment      string
	Release          string
	TracesSampleRate float64
	Debug            bool
}

func InitSentry(config SentryConfig) error {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              config.DSN,
		Environment:      config.Environment,
		Release:          config.Release,
		TracesSampleRate: config.TracesSampleRate,
		Debug:            config.Debug,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			event.ServerName = "wordle-solver-engine"
			return event
		},
		AttachStacktrace: true,
		Transport: &sentry.HTTPTransport{
			Timeout: 5 * time.Second,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Sentry: %w", err)
	}
	return nil
}

// RecoveryMiddleware captures panics in HTTP handlers and reports them
// to Sentry before re-panicking so the process's own recover chain
// (if any) still runs.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				sentry.CurrentHub().Recover(rec)
				sentry.Flush(2 * time.Second)
				panic(rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func CaptureError(ctx context.Context, err error, tags map[string]string, extra map[string]interface{}) {
	withScope(ctx, func(scope *sentry.Scope) {
		applyScope(scope, tags, extra)
		scope.SetLevel(sentry.LevelError)
		sentry.CaptureException(err)
	})
}

func CaptureMessage(ctx context.Context, message string, level sentry.Level, tags map[string]string, extra map[string]interface{}) {
	withScope(ctx, func(scope *sentry.Scope) {
		applyScope(scope, tags, extra)
		scope.SetLevel(level)
		sentry.CaptureMessage(message)
	})
}

func AddBreadcrumb(ctx context.Context, category, message, level string, data map[string]interface{}) {
	breadcrumb := &sentry.Breadcrumb{
		Category:  category,
		Message:   message,
		Level:     parseBreadcrumbLevel(level),
		Timestamp: time.Now(),
		Data:      data,
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.AddBreadcrumb(breadcrumb, nil)
	} else {
		sentry.AddBreadcrumb(breadcrumb)
	}
}

func FlushSentry(timeout time.Duration) {
	sentry.Flush(timeout)
}

func withScope(ctx context.Context, fn func(scope *sentry.Scope)) {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.WithScope(fn)
		return
	}
	sentry.WithScope(fn)
}

func applyScope(scope *sentry.Scope, tags map[string]string, extra map[string]interface{}) {
	for k, v := range tags {
		scope.SetTag(k, v)
	}
	for k, v := range extra {
		scope.SetExtra(k, v)
	}
}

func parseBreadcrumbLevel(level string) sentry.Level {
	switch level {
	case "debug":
		return sentry.LevelDebug
	case "info":
		return sentry.LevelInfo
	case "warning":
		return sentry.LevelWarning
	case "error":
		return sentry.LevelError
	case "fatal":
		return sentry.LevelFatal
	default:
		return sentry.LevelInfo
	}
}
