package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/stretchr/testify/require"
)

func TestDo_SingleAttemptByDefault(t *testing.T) {
	calls := 0
	err := DefaultRetryConfig().Do(context.Background(), func() error {
		calls++
		return errors.New("fail")
	})
	require.EqualError(t, err, "fail")
	require.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	rc := &RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond}
	calls := 0
	err := rc.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDo_UnrecoverableStops(t *testing.T) {
	rc := &RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond}
	calls := 0
	err := rc.Do(context.Background(), func() error {
		calls++
		return retry.Unrecoverable(errors.New("permanent"))
	})
	require.EqualError(t, err, "permanent")
	require.Equal(t, 1, calls)
}
