// Package globe owns the active territory overlay and the animation clock
// that drives it.
package globe

import "dynastyglobe/territory"

// Frame describes one animation step handed to the scene.
type Frame struct {
	Index    uint64  `json:"index"`
	Rotation float64 `json:"rotation"` // globe rotation about the polar axis, radians in [0, 2π)
	Elapsed  float64 `json:"elapsed"`  // frames × time step since start
	Time     float64 `json:"time"`     // shader time of the active patches
	Key      string  `json:"key,omitempty"`
	Patches  int     `json:"patches"`
}

// Scene is the rendering side of the engine. Add and Remove are called with
// the engine lock held and must not call back into the engine.
type Scene interface {
	Add(g *territory.Group)
	Remove(g *territory.Group)
	Draw(f Frame)
}

// MultiScene fans every call out to each scene in order.
type MultiScene []Scene

func (m MultiScene) Add(g *territory.Group) {
	for _, s := range m {
		s.Add(g)
	}
}

func (m MultiScene) Remove(g *territory.Group) {
	for _, s := range m {
		s.Remove(g)
	}
}

func (m MultiScene) Draw(f Frame) {
	for _, s := range m {
		s.Draw(f)
	}
}

// NopScene discards everything. Useful for headless runs and benchmarks.
type NopScene struct{}

func (NopScene) Add(*territory.Group)    {}
func (NopScene) Remove(*territory.Group) {}
func (NopScene) Draw(Frame)              {}
