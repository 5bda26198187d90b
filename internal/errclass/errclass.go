// Package errclass defines the error types shared across termi-tool and
// the failure classification used by credential rotation.
package errclass

import (
	"errors"
	"fmt"
	"strings"
)

// UserError is an error that should be shown to the user with helpful context.
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError is a configuration problem with helpful context.
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// StatusError carries an HTTP status code from the generation API so the
// classifier can distinguish throttling from genuine request failures.
type StatusError struct {
	Code int
	Body string
}

func (e StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api error: status %d", e.Code)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Code, e.Body)
}

// transientPatterns are substrings that mark a failure as specific to one
// credential's quota or rate state. The first three come straight from the
// Gemini error text; the rest cover the wording other providers use.
var transientPatterns = []string{
	"quota",
	"rate",
	"limit",
	"resource_exhausted",
	"too many requests",
	"throttl",
	"overloaded",
}

// IsTransient reports whether err indicates a quota, rate-limiting, or
// throttling condition. Such failures are tied to the credential that made
// the call and are worth retrying with a different one; everything else is
// treated as permanent for that credential.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var statusErr StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case 429, 500, 503:
			return true
		}
	}

	text := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(text, pattern) {
			return true
		}
	}
	return false
}
