package utils

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestMaskPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+254712345678", "254******678"},
		{"254 712 345 678", "254******678"},
		{"12345", "*****"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskPhone(tt.in), tt.in)
	}
}

func TestInitLogger_LevelOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	InitLogger("production")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	t.Setenv("LOG_LEVEL", "")
	InitLogger("development")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
