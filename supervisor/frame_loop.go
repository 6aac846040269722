package supervisor

import (
	"context"
	"time"

	"dynastyglobe/globe"
	"dynastyglobe/logging"
)

// Ticker is the engine surface the frame loop drives.
type Ticker interface {
	Tick() globe.Frame
}

// FrameLoop ticks the engine at a fixed rate for hosts without a display.
type FrameLoop struct {
	engine   Ticker
	interval time.Duration
}

// NewFrameLoop ticks engine fps times per second.
func NewFrameLoop(engine Ticker, fps int) *FrameLoop {
	if fps < 1 {
		fps = 1
	}
	return &FrameLoop{engine: engine, interval: time.Second / time.Duration(fps)}
}

// Serve ticks until ctx is cancelled.
func (f *FrameLoop) Serve(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	logging.Debug().Dur("interval", f.interval).Msg("frame loop started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			f.engine.Tick()
		}
	}
}

func (f *FrameLoop) String() string {
	return "frame-loop"
}
