package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errTransient = errors.New("transient")

func TestRetry(t *testing.T) {
	noWait := &FixedBackoff{}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), 3, noWait, func(attempt int) (bool, error) {
			calls++
			if attempt < 2 {
				return true, errTransient
			}
			return false, nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), 2, noWait, func(int) (bool, error) {
			calls++
			return true, errTransient
		})
		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 3, calls, "one attempt plus two retries")
	})

	t.Run("permanent errors stop immediately", func(t *testing.T) {
		calls := 0
		permanent := errors.New("bad request")
		err := Retry(context.Background(), 5, noWait, func(int) (bool, error) {
			calls++
			return false, permanent
		})
		assert.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("zero retries means one attempt", func(t *testing.T) {
		calls := 0
		_ = Retry(context.Background(), 0, noWait, func(int) (bool, error) {
			calls++
			return true, errTransient
		})
		assert.Equal(t, 1, calls)
	})

	t.Run("canceled context stops waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := Retry(ctx, 3, &FixedBackoff{Delay: time.Hour}, func(int) (bool, error) {
			return true, errTransient
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
