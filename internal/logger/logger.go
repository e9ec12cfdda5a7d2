// Package logger sets up the process-wide slog logger and attaches the ids
// carried in a request context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "request_id"
	ClientIDKey  ctxKey = "client_id"
	AdminIDKey   ctxKey = "admin_id"
)

// contextKeys are copied onto WithContext loggers in this order.
var contextKeys = []ctxKey{RequestIDKey, ClientIDKey, AdminIDKey}

var (
	mu      sync.RWMutex
	current *slog.Logger
)

// ParseLevel reads LOG_LEVEL values. Anything unrecognised is info.
func ParseLevel(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// New builds a logger on w. Format "json" writes JSON lines, anything else logfmt-style text.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Init installs a stdout logger as both this package's and slog's default.
func Init(level, format string) {
	Set(New(os.Stdout, level, format))
}

func Set(l *slog.Logger) {
	mu.Lock()
	current = l
	mu.Unlock()
	slog.SetDefault(l)
}

func Get() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l == nil {
		Init("info", "json")
		return Get()
	}
	return l
}

// WithContext returns Get() annotated with the request, client and admin ids found in ctx.
func WithContext(ctx context.Context) *slog.Logger {
	l := Get()
	if ctx == nil {
		return l
	}
	for _, key := range contextKeys {
		if v := ctx.Value(key); v != nil {
			l = l.With(string(key), v)
		}
	}
	return l
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func NewRequestID() string {
	return uuid.NewString()
}

// Fatal logs at error level and exits with status 1.
func Fatal(msg string, args ...any) {
	Get().Error(msg, args...)
	os.Exit(1)
}
