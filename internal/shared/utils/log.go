package utils

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Fields are extra key/values attached to a log line
type Fields map[string]interface{}

// InitLogger configures the global zerolog logger. Production writes JSON
// lines at info, everything else gets the console writer at debug.
// LOG_LEVEL overrides the level in both cases.
func InitLogger(env string) {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.DebugLevel
	if env == "production" {
		level = zerolog.InfoLevel
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil {
			level = parsed
		} else {
			log.Warn().Str("LOG_LEVEL", raw).Msg("⚠️ Unknown log level, keeping default")
		}
	}
	zerolog.SetGlobalLevel(level)
}

func withFields(event *zerolog.Event, fields Fields) *zerolog.Event {
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	return event
}

func LogInfo(msg string, fields Fields) {
	withFields(log.Info(), fields).Msg(msg)
}

func LogError(msg string, err error, fields Fields) {
	withFields(log.Error().Err(err), fields).Msg(msg)
}

func LogWarn(msg string, fields Fields) {
	withFields(log.Warn(), fields).Msg(msg)
}

// MaskPhone keeps the country code and last three digits of a phone number
// so WhatsApp logs stay traceable without storing the full number.
func MaskPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) <= 6 {
		return strings.Repeat("*", len(digits))
	}
	return digits[:3] + strings.Repeat("*", len(digits)-6) + digits[len(digits)-3:]
}
