// Package rotator executes units of work against a set of API credentials,
// advancing through them in round-robin order when a call fails and pausing
// between full passes over the set.
package rotator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/KhanhRomVN/termi-tool/internal/accounts"
	"github.com/KhanhRomVN/termi-tool/internal/errclass"
	"github.com/KhanhRomVN/termi-tool/internal/logging"
)

const (
	// DefaultCooldown is the pause after every credential has failed once.
	DefaultCooldown = 5 * time.Second
	// DefaultPause is the pause between consecutive credentials in a cycle.
	DefaultPause = 1 * time.Second
)

// ErrNoCredentials is returned when Execute is called with an empty
// credential set. No work function is invoked in that case.
var ErrNoCredentials = errors.New("no credentials configured")

// ExhaustedError reports that every credential failed across the configured
// number of cycles (or until the context expired). Failures holds the last
// error observed per credential name.
type ExhaustedError struct {
	Cycles   int
	Failures map[string]error
	Cause    error
}

func (e *ExhaustedError) Error() string {
	names := make([]string, 0, len(e.Failures))
	for name := range e.Failures {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "all credentials exhausted after %d cycle(s)", e.Cycles)
	if e.Cause != nil {
		fmt.Fprintf(&b, " (%v)", e.Cause)
	}
	for _, name := range names {
		fmt.Fprintf(&b, "\n  %s: %v", name, e.Failures[name])
	}
	return b.String()
}

func (e *ExhaustedError) Unwrap() error {
	return e.Cause
}

// Options configures a Rotator. Zero values fall back to the defaults
// above; MaxCycles zero means retry until the context expires.
type Options struct {
	Cooldown   time.Duration
	Pause      time.Duration
	MaxCycles  int
	Classifier func(error) bool
	Logger     *logging.Logger
}

// Work is one attempt against a single credential. A nil error is success;
// any other error is classified transient or permanent by the rotator.
type Work[T any] func(ctx context.Context, cred accounts.Credential) (T, error)

// Rotator owns an ordered credential set and the index of the active
// credential. It never writes back to the account store: rotation is
// request-scoped and in-memory only.
//
// A Rotator is not safe for concurrent Execute calls; callers that need
// that must serialize access themselves.
type Rotator struct {
	creds      []accounts.Credential
	active     int
	cooldown   time.Duration
	pause      time.Duration
	maxCycles  int
	classifier func(error) bool
	logger     *logging.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// New seeds a rotator from the account store: the full credential list in
// registration order, with the active index taken from the store's current
// pointer (first credential when unset).
func New(store accounts.Store, opts Options) (*Rotator, error) {
	creds, err := store.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	active := 0
	if current, ok := store.Current(); ok {
		for i, cred := range creds {
			if cred.Name == current {
				active = i
				break
			}
		}
	}

	return newRotator(creds, active, opts), nil
}

// NewWithCredentials builds a rotator over an explicit credential list,
// starting from the given active index.
func NewWithCredentials(creds []accounts.Credential, active int, opts Options) *Rotator {
	if active < 0 || active >= len(creds) {
		active = 0
	}
	return newRotator(creds, active, opts)
}

func newRotator(creds []accounts.Credential, active int, opts Options) *Rotator {
	r := &Rotator{
		creds:      creds,
		active:     active,
		cooldown:   opts.Cooldown,
		pause:      opts.Pause,
		maxCycles:  opts.MaxCycles,
		classifier: opts.Classifier,
		logger:     opts.Logger,
		sleep:      sleepCtx,
	}
	if r.cooldown <= 0 {
		r.cooldown = DefaultCooldown
	}
	if r.pause <= 0 {
		r.pause = DefaultPause
	}
	if r.classifier == nil {
		r.classifier = errclass.IsTransient
	}
	if r.logger == nil {
		r.logger = logging.New(false, true)
	}
	return r
}

// Size returns the number of credentials in the set.
func (r *Rotator) Size() int {
	return len(r.creds)
}

// Active returns the credential the next Execute call starts from.
func (r *Rotator) Active() (accounts.Credential, bool) {
	if len(r.creds) == 0 {
		return accounts.Credential{}, false
	}
	return r.creds[r.active], true
}

// Execute runs work against the credential set, starting from the active
// credential and rotating on failure. On success the succeeding credential
// becomes active. When every credential has failed once, the attempt record
// is cleared, the rotator sleeps the cool-down, and a new cycle begins from
// the credential that was active when Execute was called.
func Execute[T any](ctx context.Context, r *Rotator, work Work[T]) (T, error) {
	var zero T

	if len(r.creds) == 0 {
		return zero, ErrNoCredentials
	}

	size := len(r.creds)
	start := r.active
	idx := start
	tried := make(map[string]struct{}, size)
	failures := make(map[string]error, size)
	cycles := 0

	for {
		if err := ctx.Err(); err != nil {
			return zero, exhausted(cycles, failures, err)
		}

		cred := r.creds[idx]
		value, err := work(ctx, cred)
		if err == nil {
			r.active = idx
			r.logger.Debug("request succeeded with account %s", cred.Name)
			return value, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			failures[cred.Name] = err
			return zero, exhausted(cycles, failures, ctxErr)
		}

		tried[cred.Name] = struct{}{}
		failures[cred.Name] = err

		if r.classifier(err) {
			r.logger.Warn("account %s is rate-limited, rotating: %v", cred.Name, err)
		} else {
			// A permanent failure means this credential is unusable, not
			// that the operation is impossible: skip it and keep rotating.
			r.logger.Error("account %s failed permanently, skipping: %v", cred.Name, err)
		}

		if len(tried) == size {
			cycles++
			if r.maxCycles > 0 && cycles >= r.maxCycles {
				return zero, exhausted(cycles, failures, nil)
			}
			r.logger.Warn("all %d account(s) tried without success, cooling down", size)
			tried = make(map[string]struct{}, size)
			if err := r.sleep(ctx, r.cooldown); err != nil {
				return zero, exhausted(cycles, failures, err)
			}
			idx = start
			continue
		}

		idx = (idx + 1) % size
		if err := r.sleep(ctx, r.pause); err != nil {
			return zero, exhausted(cycles, failures, err)
		}
	}
}

func exhausted(cycles int, failures map[string]error, cause error) error {
	if len(failures) == 0 && cause != nil {
		return cause
	}
	return &ExhaustedError{Cycles: cycles, Failures: failures, Cause: cause}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
