package globe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynastyglobe/dataset"
	"dynastyglobe/territory"
)

// recordingScene tracks attached groups and fails the test if two are ever
// attached at once.
type recordingScene struct {
	t *testing.T

	mu       sync.Mutex
	attached []*territory.Group
	events   []string
	frames   []Frame
	maxLive  int
}

func newRecordingScene(t *testing.T) *recordingScene {
	return &recordingScene{t: t}
}

func (s *recordingScene) Add(g *territory.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = append(s.attached, g)
	s.events = append(s.events, "add:"+g.Key)
	if len(s.attached) > s.maxLive {
		s.maxLive = len(s.attached)
	}
}

func (s *recordingScene) Remove(g *territory.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.attached {
		if a == g {
			s.attached = append(s.attached[:i], s.attached[i+1:]...)
			s.events = append(s.events, "remove:"+g.Key)
			return
		}
	}
	s.t.Errorf("remove of group %q that is not attached", g.Key)
}

func (s *recordingScene) Draw(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.attached) > 1 {
		s.t.Errorf("frame %d drawn with %d groups attached", f.Index, len(s.attached))
	}
	s.frames = append(s.frames, f)
}

func (s *recordingScene) live() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, len(s.attached))
	for i, g := range s.attached {
		keys[i] = g.Key
	}
	return keys
}

// gatedSource blocks each fetch until the test releases it.
type gatedSource struct {
	mu      sync.Mutex
	gates   map[string]chan error
	started chan string
	calls   map[string]int
}

func newGatedSource() *gatedSource {
	return &gatedSource{
		gates:   make(map[string]chan error),
		started: make(chan string, 16),
		calls:   make(map[string]int),
	}
}

func (s *gatedSource) gate(key string) chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gates[key]
	if !ok {
		g = make(chan error, 1)
		s.gates[key] = g
	}
	return g
}

func (s *gatedSource) release(key string, err error) {
	s.gate(key) <- err
}

func (s *gatedSource) Fetch(ctx context.Context, key string) (*territory.Dataset, error) {
	s.mu.Lock()
	s.calls[key]++
	s.mu.Unlock()

	s.started <- key
	select {
	case err := <-s.gate(key):
		if err != nil {
			return nil, err
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return fixture(key, 2), nil
}

func (s *gatedSource) callCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

// fixture returns a dataset with n non-degenerate polygons.
func fixture(name string, n int) *territory.Dataset {
	polys := make([]territory.Polygon, n)
	for i := range polys {
		lng, lat := 100+float64(i)*5, 30.0
		polys[i] = territory.Polygon{Rings: []territory.Ring{{
			{Lng: lng, Lat: lat},
			{Lng: lng + 2, Lat: lat},
			{Lng: lng + 2, Lat: lat + 2},
			{Lng: lng, Lat: lat + 2},
		}}}
	}
	return &territory.Dataset{Name: name, Features: []territory.Feature{{Name: name, Polygons: polys}}}
}

// staticSource returns fixture data immediately.
type staticSource struct {
	err error
}

func (s staticSource) Fetch(_ context.Context, key string) (*territory.Dataset, error) {
	if s.err != nil {
		return nil, s.err
	}
	return fixture(key, 3), nil
}

func newEngine(scene Scene, src dataset.Source) *Engine {
	return NewEngine(DefaultConfig(), scene, src, territory.NewBuilder(territory.DefaultOptions()))
}

func waitStarted(t *testing.T, src *gatedSource, want string) {
	t.Helper()
	select {
	case got := <-src.started:
		require.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("fetch for %q never started", want)
	}
}

func TestSelectExclusiveOverlay(t *testing.T) {
	scene := newRecordingScene(t)
	e := newEngine(scene, staticSource{})
	ctx := context.Background()

	require.NoError(t, e.Select(ctx, "tang"))
	assert.Equal(t, []string{"tang"}, scene.live())

	require.NoError(t, e.Select(ctx, "song_n"))
	assert.Equal(t, []string{"song_n"}, scene.live())
	assert.Equal(t, []string{"add:tang", "remove:tang", "add:song_n"}, scene.events)
	assert.Equal(t, 1, scene.maxLive)

	st := e.State()
	assert.Equal(t, Active, st.Phase)
	assert.Equal(t, "song_n", st.Key)
	assert.Equal(t, 3, st.Patches)
}

func TestSelectSameKeyRebuilds(t *testing.T) {
	scene := newRecordingScene(t)
	e := newEngine(scene, staticSource{})

	require.NoError(t, e.Select(context.Background(), "ming"))
	first := e.Active()
	require.NoError(t, e.Select(context.Background(), "ming"))

	assert.NotSame(t, first, e.Active())
	assert.Equal(t, []string{"ming"}, scene.live())
}

func TestSelectLastWriterWins(t *testing.T) {
	scene := newRecordingScene(t)
	src := newGatedSource()
	e := newEngine(scene, src)
	ctx := context.Background()

	errA := make(chan error, 1)
	go func() { errA <- e.Select(ctx, "tang") }()
	waitStarted(t, src, "tang")

	errB := make(chan error, 1)
	go func() { errB <- e.Select(ctx, "song_n") }()
	waitStarted(t, src, "song_n")

	st := e.State()
	assert.Equal(t, Loading, st.Phase)
	assert.Equal(t, "song_n", st.PendingKey)
	assert.Equal(t, uint64(2), st.Generation)

	// B resolves first, then A.
	src.release("song_n", nil)
	require.NoError(t, <-errB)
	src.release("tang", nil)
	assert.ErrorIs(t, <-errA, ErrSuperseded)

	assert.Equal(t, []string{"song_n"}, scene.live())
	assert.Equal(t, []string{"add:song_n"}, scene.events)

	st = e.State()
	assert.Equal(t, Active, st.Phase)
	assert.Equal(t, "song_n", st.Key)
	assert.Empty(t, st.PendingKey)
}

func TestSelectLateResultDiscarded(t *testing.T) {
	scene := newRecordingScene(t)
	src := newGatedSource()
	e := newEngine(scene, src)
	ctx := context.Background()

	errA := make(chan error, 1)
	go func() { errA <- e.Select(ctx, "qin") }()
	waitStarted(t, src, "qin")

	errB := make(chan error, 1)
	go func() { errB <- e.Select(ctx, "yuan") }()
	waitStarted(t, src, "yuan")

	// A resolves first but B was requested later, so A never attaches.
	src.release("qin", nil)
	assert.ErrorIs(t, <-errA, ErrSuperseded)
	assert.Empty(t, scene.live())

	src.release("yuan", nil)
	require.NoError(t, <-errB)
	assert.Equal(t, []string{"yuan"}, scene.live())
}

func TestSelectUnknownKey(t *testing.T) {
	scene := newRecordingScene(t)
	src := newGatedSource()
	e := newEngine(scene, src)

	err := e.Select(context.Background(), "atlantis")
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Zero(t, src.callCount("atlantis"))
	assert.Empty(t, scene.events)

	st := e.State()
	assert.Equal(t, Idle, st.Phase)
	assert.Zero(t, st.Generation)
}

func TestSelectUnknownKeyKeepsActive(t *testing.T) {
	scene := newRecordingScene(t)
	e := newEngine(scene, staticSource{})

	require.NoError(t, e.Select(context.Background(), "han_west"))
	assert.ErrorIs(t, e.Select(context.Background(), "nope"), ErrUnknownKey)
	assert.Equal(t, []string{"han_west"}, scene.live())
	assert.Equal(t, "han_west", e.State().Key)
}

func TestSelectFetchFailurePreservesState(t *testing.T) {
	scene := newRecordingScene(t)
	src := &switchableSource{}
	e := newEngine(scene, src)
	ctx := context.Background()

	require.NoError(t, e.Select(ctx, "tang"))
	before := e.Active()

	src.err = fmt.Errorf("%w: connection refused", dataset.ErrFetch)
	err := e.Select(ctx, "qing")
	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrFetch)

	assert.Same(t, before, e.Active())
	assert.Equal(t, []string{"tang"}, scene.live())
	st := e.State()
	assert.Equal(t, Active, st.Phase)
	assert.Equal(t, "tang", st.Key)
	assert.Empty(t, st.PendingKey)
}

func TestSelectFetchFailureFromIdle(t *testing.T) {
	e := newEngine(newRecordingScene(t), staticSource{err: dataset.ErrParse})

	err := e.Select(context.Background(), "tang")
	assert.ErrorIs(t, err, dataset.ErrParse)
	assert.Equal(t, Idle, e.State().Phase)
}

type switchableSource struct {
	err error
}

func (s *switchableSource) Fetch(ctx context.Context, key string) (*territory.Dataset, error) {
	return staticSource{err: s.err}.Fetch(ctx, key)
}

func TestTickAnimationIsExact(t *testing.T) {
	scene := newRecordingScene(t)
	e := newEngine(scene, staticSource{})
	require.NoError(t, e.Select(context.Background(), "tang"))

	const n = 5000
	var f Frame
	for i := 0; i < n; i++ {
		f = e.Tick()
	}

	step := DefaultTimeStep
	rot := DefaultRotationStep
	for _, p := range e.Active().Patches {
		assert.Equal(t, float64(n)*step, p.Time())
		assert.Equal(t, uint64(n), p.Ticks())
	}
	assert.Equal(t, uint64(n), f.Index)
	assert.Equal(t, math.Mod(float64(n)*rot, 2*math.Pi), f.Rotation)
	assert.Equal(t, float64(n)*step, f.Time)
	assert.Len(t, scene.frames, n)
}

func TestTickRotationWraps(t *testing.T) {
	e := newEngine(nil, staticSource{})

	// 2π / 0.0009 ≈ 6981.3 frames per revolution.
	var f Frame
	for i := 0; i < 7000; i++ {
		f = e.Tick()
	}
	assert.GreaterOrEqual(t, f.Rotation, 0.0)
	assert.Less(t, f.Rotation, 2*math.Pi)
	assert.InDelta(t, 7000*0.0009-2*math.Pi, f.Rotation, 1e-9)
}

func TestTickNewGroupStartsAtZero(t *testing.T) {
	e := newEngine(newRecordingScene(t), staticSource{})
	require.NoError(t, e.Select(context.Background(), "tang"))
	for i := 0; i < 10; i++ {
		e.Tick()
	}

	require.NoError(t, e.Select(context.Background(), "ming"))
	for _, p := range e.Active().Patches {
		assert.Zero(t, p.Time())
	}

	f := e.Tick()
	assert.Equal(t, uint64(11), f.Index)
	assert.Equal(t, DefaultTimeStep, f.Time)
	assert.Equal(t, "ming", f.Key)
}

func TestTickIdle(t *testing.T) {
	scene := newRecordingScene(t)
	e := newEngine(scene, staticSource{})

	f := e.Tick()
	assert.Equal(t, uint64(1), f.Index)
	assert.Zero(t, f.Patches)
	assert.Zero(t, f.Time)
	assert.Len(t, scene.frames, 1)
}

func TestSelectAsync(t *testing.T) {
	scene := newRecordingScene(t)
	e := newEngine(scene, staticSource{})

	e.SelectAsync("qing")
	e.SelectAsync("atlantis")
	e.Wait()

	assert.Equal(t, []string{"qing"}, scene.live())
}

func TestTickDuringSelections(t *testing.T) {
	scene := newRecordingScene(t)
	e := newEngine(scene, staticSource{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, k := range dataset.Keys() {
			e.SelectAsync(k)
		}
		e.Wait()
	}()

	for {
		e.Tick()
		select {
		case <-done:
			assert.LessOrEqual(t, len(scene.live()), 1)
			assert.Equal(t, 1, scene.maxLive)
			return
		default:
		}
	}
}

func TestClear(t *testing.T) {
	scene := newRecordingScene(t)
	e := newEngine(scene, staticSource{})
	require.NoError(t, e.Select(context.Background(), "tang"))

	e.Clear()
	assert.Empty(t, scene.live())
	assert.Equal(t, Idle, e.State().Phase)
	assert.Nil(t, e.Active())
}

func TestMultiScene(t *testing.T) {
	a, b := newRecordingScene(t), newRecordingScene(t)
	e := newEngine(MultiScene{a, b}, staticSource{})

	require.NoError(t, e.Select(context.Background(), "yuan"))
	e.Tick()

	for _, s := range []*recordingScene{a, b} {
		assert.Equal(t, []string{"yuan"}, s.live())
		assert.Len(t, s.frames, 1)
	}
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "active", Active.String())
	assert.Equal(t, "unknown", Phase(42).String())
}

func TestErrUnknownKeyMatchesDataset(t *testing.T) {
	assert.True(t, errors.Is(fmt.Errorf("wrap: %w", ErrUnknownKey), dataset.ErrUnknownKey))
}
