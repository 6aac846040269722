package globe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dynastyglobe/dataset"
	"dynastyglobe/logging"
	"dynastyglobe/metrics"
	"dynastyglobe/territory"
)

var (
	// ErrUnknownKey is returned by Select for keys outside the registry.
	ErrUnknownKey = dataset.ErrUnknownKey

	// ErrSuperseded is returned when a newer selection started before this
	// one completed. The result was discarded.
	ErrSuperseded = errors.New("selection superseded")
)

// Phase is the overlay lifecycle state.
type Phase int

const (
	Idle Phase = iota
	Loading
	Active
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// MarshalText lets Phase serialise as its name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Config holds the engine's timing parameters.
type Config struct {
	RotationStep float64
	TimeStep     float64
	FetchTimeout time.Duration // bound for SelectAsync fetches, 0 for none
}

// DefaultConfig returns the stock per-frame increments.
func DefaultConfig() Config {
	return Config{
		RotationStep: DefaultRotationStep,
		TimeStep:     DefaultTimeStep,
		FetchTimeout: 30 * time.Second,
	}
}

// State is a point-in-time snapshot of the engine.
type State struct {
	Phase      Phase   `json:"phase"`
	Key        string  `json:"key,omitempty"`         // attached dynasty
	PendingKey string  `json:"pending_key,omitempty"` // latest selection still loading
	Generation uint64  `json:"generation"`
	Patches    int     `json:"patches"`
	Frame      uint64  `json:"frame"`
	Rotation   float64 `json:"rotation"`
}

// Engine holds at most one active territory group and swaps it when a new
// dynasty is selected. Selections may run concurrently; the most recently
// started one wins. Tick is expected to be called from a single host loop.
type Engine struct {
	cfg     Config
	scene   Scene
	source  dataset.Source
	builder *territory.Builder

	mu         sync.Mutex
	clock      Clock
	active     *territory.Group
	activeKey  string
	pendingKey string
	generation uint64

	wg sync.WaitGroup
}

// NewEngine wires an engine to its scene, dataset source and builder.
func NewEngine(cfg Config, scene Scene, source dataset.Source, builder *territory.Builder) *Engine {
	if scene == nil {
		scene = NopScene{}
	}
	return &Engine{
		cfg:     cfg,
		scene:   scene,
		source:  source,
		builder: builder,
		clock:   NewClock(cfg.RotationStep, cfg.TimeStep),
	}
}

// Select loads, builds and attaches the territory for key, replacing the
// current overlay. Unknown keys return ErrUnknownKey without fetching. A
// failed fetch leaves the current overlay in place.
func (e *Engine) Select(ctx context.Context, key string) error {
	if !dataset.Known(key) {
		metrics.RecordSelection("unknown")
		logging.Debug().Str("dynasty", key).Msg("ignoring unknown dynasty")
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.pendingKey = key
	e.mu.Unlock()

	ds, err := e.source.Fetch(ctx, key)
	if err != nil {
		e.mu.Lock()
		if gen == e.generation {
			e.pendingKey = ""
		}
		e.mu.Unlock()

		metrics.RecordSelection("failed")
		logging.Error().Err(err).Str("dynasty", key).Bool("transient", dataset.IsTransient(err)).Msg("failed to load dynasty")
		return fmt.Errorf("select %s: %w", key, err)
	}

	if !e.current(gen) {
		return e.superseded(key, gen)
	}

	start := time.Now()
	group := e.builder.Build(key, ds)
	metrics.BuildDuration.Observe(time.Since(start).Seconds())

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return e.superseded(key, gen)
	}
	if e.active != nil {
		e.scene.Remove(e.active)
	}
	e.scene.Add(group)
	e.active = group
	e.activeKey = key
	e.pendingKey = ""
	e.mu.Unlock()

	metrics.RecordSelection("applied")
	metrics.ActivePatches.Set(float64(group.Len()))
	logging.Info().
		Str("dynasty", key).
		Int("patches", group.Len()).
		Int("triangles", group.TriangleCount()).
		Uint64("generation", gen).
		Msg("loaded dynasty")
	return nil
}

// SelectAsync runs Select on its own goroutine. Errors are logged by Select.
func (e *Engine) SelectAsync(key string) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ctx := context.Background()
		if e.cfg.FetchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, e.cfg.FetchTimeout)
			defer cancel()
		}
		_ = e.Select(ctx, key)
	}()
}

// Wait blocks until every SelectAsync call has returned.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Tick advances the clock one frame, advances the shader time of every
// active patch and draws the frame.
func (e *Engine) Tick() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.clock.Advance()
	if e.active != nil {
		e.active.Advance(e.clock.TimeStep)
	}

	f := Frame{
		Index:    idx,
		Rotation: e.clock.Rotation(),
		Elapsed:  e.clock.Time(),
		Key:      e.activeKey,
		Patches:  e.active.Len(),
	}
	if f.Patches > 0 {
		f.Time = e.active.Patches[0].Time()
	}

	e.scene.Draw(f)
	metrics.Ticks.Inc()
	return f
}

// State returns a snapshot of the lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := State{
		Key:        e.activeKey,
		PendingKey: e.pendingKey,
		Generation: e.generation,
		Patches:    e.active.Len(),
		Frame:      e.clock.Frames(),
		Rotation:   e.clock.Rotation(),
	}
	switch {
	case e.pendingKey != "":
		s.Phase = Loading
	case e.active != nil:
		s.Phase = Active
	default:
		s.Phase = Idle
	}
	return s
}

// Active returns the attached group, or nil.
func (e *Engine) Active() *territory.Group {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Clear detaches the active group and cancels any pending selection.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	e.pendingKey = ""
	if e.active != nil {
		e.scene.Remove(e.active)
		e.active = nil
		e.activeKey = ""
	}
	metrics.ActivePatches.Set(0)
}

func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

func (e *Engine) superseded(key string, gen uint64) error {
	metrics.RecordSelection("superseded")
	logging.Debug().Str("dynasty", key).Uint64("generation", gen).Msg("discarding superseded selection")
	return fmt.Errorf("select %s: %w", key, ErrSuperseded)
}
