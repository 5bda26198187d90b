package errclass_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KhanhRomVN/termi-tool/internal/errclass"
)

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil",
			err:  nil,
			want: false,
		},
		{
			name: "quota_text",
			err:  errors.New("429: Quota exceeded for quota metric 'GenerateContent requests'"),
			want: true,
		},
		{
			name: "rate_text",
			err:  errors.New("rate limit reached, slow down"),
			want: true,
		},
		{
			name: "limit_text",
			err:  errors.New("request limit hit for this project"),
			want: true,
		},
		{
			name: "resource_exhausted",
			err:  errors.New("rpc error: code = RESOURCE_EXHAUSTED desc = try later"),
			want: true,
		},
		{
			name: "throttled",
			err:  errors.New("request was throttled by upstream"),
			want: true,
		},
		{
			name: "status_429",
			err:  errclass.StatusError{Code: 429},
			want: true,
		},
		{
			name: "status_503",
			err:  errclass.StatusError{Code: 503, Body: "model is busy"},
			want: true,
		},
		{
			name: "status_500",
			err:  errclass.StatusError{Code: 500},
			want: true,
		},
		{
			name: "status_400",
			err:  errclass.StatusError{Code: 400, Body: "invalid argument"},
			want: false,
		},
		{
			name: "invalid_key",
			err:  errclass.StatusError{Code: 403, Body: "API key not valid"},
			want: false,
		},
		{
			name: "wrapped_status",
			err:  fmt.Errorf("annotate: %w", errclass.StatusError{Code: 429}),
			want: true,
		},
		{
			name: "unrelated",
			err:  errors.New("connection refused"),
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, errclass.IsTransient(tt.err))
		})
	}
}

func TestUserErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errclass.UserError{
		Message:    "No Gemini accounts configured",
		Suggestion: "Run 'termi-tool accounts add' first",
	}
	assert.Contains(t, err.Error(), "No Gemini accounts configured")
	assert.Contains(t, err.Error(), "accounts add")

	inner := errors.New("boom")
	wrapped := errclass.UserError{Err: inner}
	assert.Equal(t, "boom", wrapped.Error())
	assert.ErrorIs(t, wrapped, inner)
}

func TestConfigErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errclass.ConfigError{
		Field:      "cooldown",
		Value:      "-1s",
		Message:    "must be positive",
		Suggestion: "Use a duration like '5s'",
	}
	msg := err.Error()
	assert.Contains(t, msg, "cooldown")
	assert.Contains(t, msg, "-1s")
	assert.Contains(t, msg, "must be positive")
}

func TestStatusErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "api error: status 429", errclass.StatusError{Code: 429}.Error())
	assert.Equal(t, "api error: status 403: denied", errclass.StatusError{Code: 403, Body: "denied"}.Error())
}
