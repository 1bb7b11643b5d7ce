package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	s := New(context.Background(), nil)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Add("rollover", "0 0 * * *", noop))
	require.NoError(t, s.Add("snapshot", "", noop))
	require.Error(t, s.Add("broken", "every day", noop))
	require.Equal(t, 1, s.Len())
}

func TestRun_PassesContextAndSurvivesErrors(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "medcal")
	s := New(ctx, time.UTC)

	var got any
	s.run("ok", func(ctx context.Context) error {
		got = ctx.Value(key{})
		return nil
	})
	require.Equal(t, "medcal", got)

	require.NotPanics(t, func() {
		s.run("failing", func(context.Context) error { return errors.New("boom") })
	})
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(ctx, time.UTC)
	require.NoError(t, s.Add("noop", "* * * * *", func(context.Context) error { return nil }))

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
