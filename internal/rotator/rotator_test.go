package rotator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KhanhRomVN/termi-tool/internal/accounts"
)

var errQuota = errors.New("quota exceeded for this key")

// sleepRecorder replaces the rotator's sleep so tests run instantly while
// still observing every pause and cool-down.
type sleepRecorder struct {
	pauses    int
	cooldowns int
}

func instrument(r *Rotator) *sleepRecorder {
	rec := &sleepRecorder{}
	cooldown := r.cooldown
	r.sleep = func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d == cooldown {
			rec.cooldowns++
		} else {
			rec.pauses++
		}
		return nil
	}
	return rec
}

func creds(names ...string) []accounts.Credential {
	out := make([]accounts.Credential, len(names))
	for i, name := range names {
		out[i] = accounts.Credential{Name: name, Key: "key-" + name}
	}
	return out
}

func TestEmptySetFailsWithoutInvokingWork(t *testing.T) {
	t.Parallel()

	r := NewWithCredentials(nil, 0, Options{})
	invoked := false

	_, err := Execute(context.Background(), r, func(context.Context, accounts.Credential) (string, error) {
		invoked = true
		return "", nil
	})

	assert.ErrorIs(t, err, ErrNoCredentials)
	assert.False(t, invoked)
}

func TestSuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	r := NewWithCredentials(creds("A", "B", "C"), 0, Options{})
	instrument(r)

	value, err := Execute(context.Background(), r, func(_ context.Context, c accounts.Credential) (string, error) {
		return "result-" + c.Name, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "result-A", value)
	active, ok := r.Active()
	require.True(t, ok)
	assert.Equal(t, "A", active.Name)
}

func TestRoundRobinOrderFromActiveIndex(t *testing.T) {
	t.Parallel()

	// Start at index 1: visiting order must be B, C, A.
	r := NewWithCredentials(creds("A", "B", "C"), 1, Options{MaxCycles: 1})
	instrument(r)

	var visited []string
	_, err := Execute(context.Background(), r, func(_ context.Context, c accounts.Credential) (string, error) {
		visited = append(visited, c.Name)
		return "", errQuota
	})

	var exhaustedErr *ExhaustedError
	require.ErrorAs(t, err, &exhaustedErr)
	assert.Equal(t, []string{"B", "C", "A"}, visited)
}

func TestExactlyNTriesBeforeCooldown(t *testing.T) {
	t.Parallel()

	r := NewWithCredentials(creds("A", "B", "C", "D"), 0, Options{})
	rec := instrument(r)

	attempts := 0
	value, err := Execute(context.Background(), r, func(_ context.Context, c accounts.Credential) (string, error) {
		attempts++
		if attempts <= 4 {
			return "", errQuota
		}
		return "late-success", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "late-success", value)
	// One full pass of 4 failures, one cool-down, then success on retry.
	assert.Equal(t, 1, rec.cooldowns)
	assert.Equal(t, 3, rec.pauses)
	assert.Equal(t, 5, attempts)
}

func TestSuccessSetsActiveIndex(t *testing.T) {
	t.Parallel()

	// A and B fail transiently, C succeeds: no cool-down, active becomes C.
	r := NewWithCredentials(creds("A", "B", "C"), 0, Options{})
	rec := instrument(r)

	value, err := Execute(context.Background(), r, func(_ context.Context, c accounts.Credential) (string, error) {
		if c.Name == "C" {
			return "annotations-for-C", nil
		}
		return "", errQuota
	})

	require.NoError(t, err)
	assert.Equal(t, "annotations-for-C", value)
	assert.Zero(t, rec.cooldowns)

	active, ok := r.Active()
	require.True(t, ok)
	assert.Equal(t, "C", active.Name)

	// The next Execute starts from C.
	var first string
	_, err = Execute(context.Background(), r, func(_ context.Context, c accounts.Credential) (string, error) {
		if first == "" {
			first = c.Name
		}
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "C", first)
}

func TestAttemptRecordResetsAfterCycle(t *testing.T) {
	t.Parallel()

	// Both accounts fail permanently on cycle 1, transiently on cycle 2,
	// then A succeeds on cycle 3: exactly two cool-downs.
	r := NewWithCredentials(creds("A", "B"), 0, Options{})
	rec := instrument(r)

	attempts := map[string]int{}
	value, err := Execute(context.Background(), r, func(_ context.Context, c accounts.Credential) (string, error) {
		attempts[c.Name]++
		switch {
		case attempts[c.Name] == 1:
			return "", errors.New("API key not valid") // permanent
		case c.Name == "A" && attempts[c.Name] == 3:
			return "ok", nil
		default:
			return "", errQuota // transient
		}
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", value)
	assert.Equal(t, 2, rec.cooldowns)
	// A was retried after failing in earlier cycles: the record reset.
	assert.Equal(t, 3, attempts["A"])
	assert.Equal(t, 2, attempts["B"])
}

func TestPermanentFailuresStillRotate(t *testing.T) {
	t.Parallel()

	// A mix of permanent and transient failures must not change the
	// visiting order.
	r := NewWithCredentials(creds("A", "B", "C"), 2, Options{MaxCycles: 1})
	instrument(r)

	var visited []string
	_, err := Execute(context.Background(), r, func(_ context.Context, c accounts.Credential) (string, error) {
		visited = append(visited, c.Name)
		if c.Name == "A" {
			return "", errors.New("permission denied for key")
		}
		return "", errQuota
	})

	var exhaustedErr *ExhaustedError
	require.ErrorAs(t, err, &exhaustedErr)
	assert.Equal(t, []string{"C", "A", "B"}, visited)
}

func TestMaxCyclesReturnsExhaustedError(t *testing.T) {
	t.Parallel()

	r := NewWithCredentials(creds("A", "B"), 0, Options{MaxCycles: 2})
	rec := instrument(r)

	_, err := Execute(context.Background(), r, func(_ context.Context, c accounts.Credential) (string, error) {
		return "", errQuota
	})

	var exhaustedErr *ExhaustedError
	require.ErrorAs(t, err, &exhaustedErr)
	assert.Equal(t, 2, exhaustedErr.Cycles)
	assert.ErrorIs(t, exhaustedErr.Failures["A"], errQuota)
	assert.ErrorIs(t, exhaustedErr.Failures["B"], errQuota)
	// The bound was hit at the end of cycle 2, before a third cool-down.
	assert.Equal(t, 1, rec.cooldowns)
}

func TestNewCycleRestartsFromCycleStart(t *testing.T) {
	t.Parallel()

	r := NewWithCredentials(creds("A", "B", "C"), 1, Options{MaxCycles: 2})
	instrument(r)

	var visited []string
	_, err := Execute(context.Background(), r, func(_ context.Context, c accounts.Credential) (string, error) {
		visited = append(visited, c.Name)
		return "", errQuota
	})

	var exhaustedErr *ExhaustedError
	require.ErrorAs(t, err, &exhaustedErr)
	// Cycle 2 begins again from B, the credential active at the start.
	assert.Equal(t, []string{"B", "C", "A", "B", "C", "A"}, visited)
}

func TestContextCancellationDuringCooldown(t *testing.T) {
	t.Parallel()

	r := NewWithCredentials(creds("A"), 0, Options{})
	ctx, cancel := context.WithCancel(context.Background())

	r.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := Execute(ctx, r, func(_ context.Context, c accounts.Credential) (string, error) {
		return "", errQuota
	})

	var exhaustedErr *ExhaustedError
	require.ErrorAs(t, err, &exhaustedErr)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeadlineProducesExhaustedError(t *testing.T) {
	t.Parallel()

	r := NewWithCredentials(creds("A", "B"), 0, Options{
		Cooldown: time.Millisecond,
		Pause:    time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Execute(ctx, r, func(_ context.Context, c accounts.Credential) (string, error) {
		return "", errQuota
	})

	var exhaustedErr *ExhaustedError
	require.ErrorAs(t, err, &exhaustedErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, exhaustedErr.Failures, "A")
}

type staticStore struct {
	creds   []accounts.Credential
	current string
}

func (s staticStore) List() ([]accounts.Credential, error) { return s.creds, nil }

func (s staticStore) Current() (string, bool) { return s.current, s.current != "" }

func TestNewSeedsActiveFromStore(t *testing.T) {
	t.Parallel()

	store := staticStore{creds: creds("A", "B", "C"), current: "B"}
	r, err := New(store, Options{})
	require.NoError(t, err)

	active, ok := r.Active()
	require.True(t, ok)
	assert.Equal(t, "B", active.Name)
	assert.Equal(t, 3, r.Size())
}

func TestNewDefaultsToFirstCredential(t *testing.T) {
	t.Parallel()

	// An unknown or unset pointer falls back to the first credential.
	for _, current := range []string{"", "nobody@gmail.com"} {
		r, err := New(staticStore{creds: creds("A", "B"), current: current}, Options{})
		require.NoError(t, err)

		active, ok := r.Active()
		require.True(t, ok)
		assert.Equal(t, "A", active.Name)
	}
}

func TestSleepCtxHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sleepCtx(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)

	assert.NoError(t, sleepCtx(context.Background(), 0))
}
