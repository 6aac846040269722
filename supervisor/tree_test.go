package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynastyglobe/globe"
	"dynastyglobe/logging"
)

type countingTicker struct {
	n atomic.Int64
}

func (c *countingTicker) Tick() globe.Frame {
	return globe.Frame{Index: uint64(c.n.Add(1))}
}

// flakyService fails its first run and then blocks until cancelled.
type flakyService struct {
	runs atomic.Int32
}

func (s *flakyService) Serve(ctx context.Context) error {
	if s.runs.Add(1) == 1 {
		return errors.New("boom")
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestNewTreeDefaults(t *testing.T) {
	tree := NewTree(logging.NewSlogLogger(), TreeConfig{})
	assert.Equal(t, DefaultTreeConfig(), tree.config)
}

func TestFrameLoopTicksUntilCancelled(t *testing.T) {
	ticker := &countingTicker{}
	loop := NewFrameLoop(ticker, 200)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Serve(ctx) }()

	require.Eventually(t, func() bool { return ticker.n.Load() >= 5 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("frame loop did not stop")
	}
}

func TestTreeRestartsFailedService(t *testing.T) {
	tree := NewTree(logging.NewSlogLogger(), TreeConfig{
		FailureBackoff:  10 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})

	svc := &flakyService{}
	ticker := &countingTicker{}
	tree.AddAPIService(svc)
	tree.AddRenderService(NewFrameLoop(ticker, 100))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	require.Eventually(t, func() bool { return svc.runs.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return ticker.n.Load() > 0 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-errCh:
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}

	report, err := tree.UnstoppedServiceReport()
	require.NoError(t, err)
	assert.Empty(t, report)
}
