package async

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAwait(t *testing.T) {
	f := Run(context.Background(), 10*time.Millisecond, func() (int, error) { return 42, nil })

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestRunPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	f := Run(context.Background(), 0, func() (string, error) { return "", boom })

	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestThenRunsExactlyOneContinuation(t *testing.T) {
	got := make(chan string, 2)
	f := Run(context.Background(), 5*time.Millisecond, func() (string, error) { return "ok", nil })
	f.Then(func(v string) { got <- v }, func(err error) { got <- "error" })

	select {
	case v := <-got:
		assert.Equal(t, "ok", v)
	case <-time.After(time.Second):
		t.Fatal("continuation never ran")
	}

	// Registering after completion runs immediately.
	<-f.Done()
	f.Then(func(v string) { got <- "late:" + v }, nil)
	assert.Equal(t, "late:ok", <-got)
	assert.Len(t, got, 0)
}

func TestThenOnError(t *testing.T) {
	boom := errors.New("boom")
	errs := make(chan error, 1)
	Run(context.Background(), 0, func() (int, error) { return 0, boom }).
		Then(func(int) { t.Error("value continuation must not run") }, func(err error) { errs <- err })

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, boom)
	case <-time.After(time.Second):
		t.Fatal("error continuation never ran")
	}
}

func TestRunCancelledBeforeDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	called := make(chan struct{}, 1)
	f := Run(ctx, time.Hour, func() (int, error) {
		called <- struct{}{}
		return 1, nil
	})
	cancel()

	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, called, 0)
}

func TestAwaitHonoursCallerContext(t *testing.T) {
	f := Run(context.Background(), time.Hour, func() (int, error) { return 1, nil })
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
