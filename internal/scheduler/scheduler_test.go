package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartRejectsBadSpec(t *testing.T) {
	s := New(func(context.Context) error { return nil })
	err := s.Start(context.Background(), "not a cron spec")
	require.Error(t, err)
}

func TestTicksSkipWhileRunInProgress(t *testing.T) {
	var started atomic.Int32
	release := make(chan struct{})

	s := New(func(context.Context) error {
		started.Add(1)
		<-release
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// @every fires fast enough that several ticks land inside the first run
	require.NoError(t, s.Start(ctx, "@every 100ms"))
	defer s.Stop()

	assert.Eventually(t, func() bool { return started.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(350 * time.Millisecond)
	assert.Equal(t, int32(1), started.Load())

	close(release)
}
