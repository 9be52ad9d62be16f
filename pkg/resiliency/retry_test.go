package resiliency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
)

func TestRetryGetEventuallySucceeds(t *testing.T) {
	t.Parallel()

	attempts := 0
	val, err := RetryGet(context.Background(), ShortExponentialBackoff(5*time.Second), func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("not yet")
		}
		return "ready", nil
	})

	require.NoError(t, err)
	require.Equal(t, "ready", val)
	require.Equal(t, 3, attempts)
}

func TestRetryGetStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	attempts := 0
	_, err := RetryGet(context.Background(), ShortExponentialBackoff(5*time.Second), func() (int, error) {
		attempts++
		return 0, Permanent(boom)
	})

	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, attempts)
}

func TestRetryGetReportsLastAttemptOnTimeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	refused := errors.New("connection refused")
	_, err := RetryGet(ctx, ShortExponentialBackoff(time.Minute), func() (int, error) {
		return 0, refused
	})

	require.ErrorIs(t, err, refused)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMakePanicError(t *testing.T) {
	t.Parallel()

	require.NoError(t, MakePanicError(nil, logr.Discard()))

	err := MakePanicError("something broke", logr.Discard())
	require.Error(t, err)
	require.Contains(t, err.Error(), "something broke")
}

func TestRecoverStoresPanic(t *testing.T) {
	t.Parallel()

	run := func() (err error) {
		defer Recover(logr.Discard(), &err)
		panic(errors.New("session exploded"))
	}

	err := run()
	require.Error(t, err)
	require.Contains(t, err.Error(), "session exploded")

	noPanic := func() (err error) {
		defer Recover(logr.Discard(), &err)
		return nil
	}
	require.NoError(t, noPanic())
}
