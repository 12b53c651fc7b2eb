package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRefused = errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold uint32) (*Breaker, *clock) {
	c := &clock{t: time.Unix(1700000000, 0)}
	b := New("test", Settings{Threshold: threshold, Cooldown: time.Minute})
	b.now = c.now
	return b, c
}

func fail() (string, error)    { return "", errRefused }
func succeed() (string, error) { return "ok", nil }

func TestBreakerDefaults(t *testing.T) {
	b := New("backend", Settings{})
	assert.Equal(t, "backend", b.Name())
	assert.Equal(t, uint32(5), b.settings.Threshold)
	assert.Equal(t, 30*time.Second, b.settings.Cooldown)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerOpensOnTransportFailures(t *testing.T) {
	b, _ := newTestBreaker(3)

	for i := 0; i < 2; i++ {
		_, err := Do(b, fail)
		assert.ErrorIs(t, err, errRefused)
	}
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, uint32(2), b.Failures())

	_, _ = Do(b, fail)
	assert.Equal(t, StateOpen, b.State())

	_, err := Do(b, func() (string, error) {
		t.Fatal("must not run while open")
		return "", nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.True(t, IsOpen(err))
}

func TestBreakerSuccessResetsRun(t *testing.T) {
	b, _ := newTestBreaker(2)

	_, _ = Do(b, fail)
	result, err := Do(b, succeed)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, uint32(0), b.Failures())

	_, _ = Do(b, fail)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	b, _ := newTestBreaker(1)

	_, err := Do(b, func() (string, error) {
		return "", fmt.Errorf("post: %w", context.Canceled)
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, b.State())

	assert.False(t, IsTransportFailure(nil))
	assert.False(t, IsTransportFailure(context.Canceled))
	assert.True(t, IsTransportFailure(context.DeadlineExceeded))
	assert.True(t, IsTransportFailure(errRefused))
}

func TestBreakerHalfOpenTrial(t *testing.T) {
	tests := []struct {
		name  string
		trial func() (string, error)
		want  State
	}{
		{"success closes", succeed, StateClosed},
		{"failure reopens", fail, StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, c := newTestBreaker(1)
			_, _ = Do(b, fail)
			require.Equal(t, StateOpen, b.State())

			c.advance(59 * time.Second)
			assert.Equal(t, StateOpen, b.State())
			c.advance(time.Second)
			assert.Equal(t, StateHalfOpen, b.State())

			_, _ = Do(b, tt.trial)
			assert.Equal(t, tt.want, b.State())
		})
	}
}

func TestBreakerSingleTrial(t *testing.T) {
	b, c := newTestBreaker(1)
	_, _ = Do(b, fail)
	c.advance(time.Minute)

	_, err := Do(b, func() (string, error) {
		_, inner := Do(b, succeed)
		assert.ErrorIs(t, inner, ErrTooManyRequests)
		assert.True(t, IsOpen(inner))
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerPanicCountsAsFailure(t *testing.T) {
	b, _ := newTestBreaker(1)

	assert.Panics(t, func() {
		_, _ = Do(b, func() (string, error) { panic("boom") })
	})
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerStateChanges(t *testing.T) {
	var transitions []string
	b, c := newTestBreaker(1)
	b.settings.OnStateChange = func(name string, from, to State) {
		assert.Equal(t, "test", name)
		transitions = append(transitions, from.String()+"->"+to.String())
	}

	_, _ = Do(b, fail)
	c.advance(time.Minute)
	_, _ = Do(b, succeed)

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}
