package logging

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecretRedaction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "api_key", input: "AIzaSyD-fake-key-1234567890"},
		{name: "empty", input: ""},
		{name: "symbols", input: "p@ssw0rd!#$"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, "[REDACTED]", Secret(tt.input).String())
			assert.Equal(t, "[REDACTED]", Secret(tt.input).GoString())
			assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", Secret(tt.input)))
			assert.Equal(t, "[REDACTED]", fmt.Sprintf("%#v", Secret(tt.input)))
		})
	}
}

func TestMaskKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
		want string
	}{
		{name: "typical_key", key: "AIzaSyD1234567890abcdef", want: "AIza...cdef"},
		{name: "minimum_maskable", key: "abcdefghi", want: "abcd...fghi"},
		{name: "too_short", key: "12345678", want: "[REDACTED]"},
		{name: "empty", key: "", want: "[REDACTED]"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, MaskKey(tt.key))
		})
	}
}

func TestRedact(t *testing.T) {
	t.Parallel()

	out := Redact("error: key AIzaSyDfake rejected", []string{"AIzaSyDfake"})
	assert.Equal(t, "error: key [REDACTED] rejected", out)

	// Trivially short secrets are left alone to avoid mangling messages.
	out = Redact("exit code 1", []string{"1"})
	assert.Equal(t, "exit code 1", out)
}
