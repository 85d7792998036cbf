package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// log is the process-wide base logger. Its zero value discards everything,
// so packages can log before Init runs (tests never call it).
var log zerolog.Logger

type ctxKey struct{}

// Init configures the base logger. Development environments get console
// output; everything else writes JSON lines.
func Init(env, level, service string) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(parseLevel(level))

	var output io.Writer = os.Stdout
	if isDevelopment(env) {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	log = zerolog.New(output).
		With().
		Timestamp().
		Str("service", service).
		Caller().
		Logger()
}

func isDevelopment(env string) bool {
	switch strings.ToLower(env) {
	case "", "dev", "development", "local":
		return true
	}
	return false
}

// parseLevel maps LOG_LEVEL to a zerolog level, defaulting to info.
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func Get() *zerolog.Logger {
	return &log
}

// WithContext returns the request-scoped logger, or the base logger.
func WithContext(ctx context.Context) *zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
		return l
	}
	return &log
}

func NewContext(ctx context.Context, l *zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

func WithRequestID(requestID string) zerolog.Logger {
	return log.With().Str("request_id", requestID).Logger()
}

func WithUserID(l zerolog.Logger, userID string) zerolog.Logger {
	return l.With().Str("user_id", userID).Logger()
}

func WithSessionID(l zerolog.Logger, sid string) zerolog.Logger {
	return l.With().Str("session_id", sid).Logger()
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

// BackendCall logs one round trip to the remote backend. Failures are
// warnings; the caller decides whether they surface as errors.
func BackendCall(ctx context.Context, backend, op string, duration time.Duration, err error) {
	l := WithContext(ctx)
	if err != nil {
		l.Warn().
			Str("backend", backend).
			Str("op", op).
			Dur("duration_ms", duration).
			Err(err).
			Msg("Backend call failed")
		return
	}
	l.Debug().
		Str("backend", backend).
		Str("op", op).
		Dur("duration_ms", duration).
		Msg("Backend call")
}

// StoreMutation logs a change to a cart or wishlist.
func StoreMutation(ctx context.Context, kind, op, productID string, count int) {
	WithContext(ctx).Debug().
		Str("store", kind).
		Str("op", op).
		Str("product_id", productID).
		Int("count", count).
		Msg("Store mutated")
}

func ServiceStart(name, version, port, backend string) {
	log.Info().
		Str("version", version).
		Str("port", port).
		Str("backend", backend).
		Msgf("%s started", name)
}

func ServiceStop(name string) {
	log.Info().Msgf("%s stopped", name)
}
