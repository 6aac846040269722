package server

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"dynastyglobe/globe"
	"dynastyglobe/territory"
)

// PatchData is the wire form of one territory patch. Vertices and normals are
// in patch space; Offset is the model translation.
type PatchData struct {
	Feature   string       `json:"feature"`
	Vertices  [][3]float32 `json:"vertices"`
	Normals   [][3]float32 `json:"normals"`
	Indices   []uint32     `json:"indices"`
	Offset    [3]float32   `json:"offset"`
	Intensity   float64      `json:"intensity"`
	Shader      string       `json:"shader,omitempty"`
	Transparent bool         `json:"transparent"`
	DoubleSided bool         `json:"double_sided"`
}

// TerritoryData is sent when a group is attached.
type TerritoryData struct {
	Key     string      `json:"key"`
	Name    string      `json:"name"`
	Patches []PatchData `json:"patches"`
}

// ClearedData is sent when a group is detached.
type ClearedData struct {
	Key string `json:"key"`
}

type errorData struct {
	Error string `json:"error"`
	Key   string `json:"key,omitempty"`
}

// NewTerritoryData converts a group to its wire form.
func NewTerritoryData(g *territory.Group) TerritoryData {
	td := TerritoryData{
		Key:     g.Key,
		Name:    g.Name,
		Patches: make([]PatchData, 0, g.Len()),
	}
	for _, p := range g.Patches {
		td.Patches = append(td.Patches, PatchData{
			Feature:   p.Feature,
			Vertices:  vec3s(p.Mesh.Positions),
			Normals:   vec3s(p.Mesh.Normals),
			Indices:   p.Mesh.Indices,
			Offset:    [3]float32(p.Offset),
			Intensity: p.Material.Intensity,
			Shader:    p.Material.Program.Name,

			Transparent: p.Material.Transparent,
			DoubleSided: p.Material.DoubleSided,
		})
	}
	return td
}

func vec3s(in []mgl32.Vec3) [][3]float32 {
	out := make([][3]float32, len(in))
	for i, v := range in {
		out[i] = [3]float32(v)
	}
	return out
}

// StreamScene is a globe.Scene that mirrors the overlay to websocket
// clients. Attach and detach are broadcast immediately; frames are sampled
// every broadcastEvery ticks.
type StreamScene struct {
	hub            *Hub
	broadcastEvery uint64

	mu      sync.Mutex
	current *TerritoryData
	last    globe.Frame
}

var _ globe.Scene = (*StreamScene)(nil)

// NewStreamScene returns a scene broadcasting through hub and installs itself
// as the hub greeting so new clients receive the current overlay.
func NewStreamScene(hub *Hub, broadcastEvery int) *StreamScene {
	if broadcastEvery < 1 {
		broadcastEvery = 1
	}
	s := &StreamScene{hub: hub, broadcastEvery: uint64(broadcastEvery)}
	hub.SetGreeting(s.greeting)
	return s
}

func (s *StreamScene) Add(g *territory.Group) {
	td := NewTerritoryData(g)

	s.mu.Lock()
	s.current = &td
	s.mu.Unlock()

	s.hub.BroadcastJSON(MessageTypeTerritory, td)
}

func (s *StreamScene) Remove(g *territory.Group) {
	s.mu.Lock()
	if s.current != nil && s.current.Key == g.Key {
		s.current = nil
	}
	s.mu.Unlock()

	s.hub.BroadcastJSON(MessageTypeCleared, ClearedData{Key: g.Key})
}

func (s *StreamScene) Draw(f globe.Frame) {
	s.mu.Lock()
	s.last = f
	s.mu.Unlock()

	if f.Index%s.broadcastEvery == 0 {
		s.hub.BroadcastJSON(MessageTypeFrame, f)
	}
}

func (s *StreamScene) greeting() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := []Message{{Type: MessageTypeFrame, Data: s.last}}
	if s.current != nil {
		msgs = append(msgs, Message{Type: MessageTypeTerritory, Data: *s.current})
	}
	return msgs
}
