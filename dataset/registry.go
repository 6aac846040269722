// Package dataset resolves dynasty keys to GeoJSON resources and loads them
// into territory datasets.
package dataset

// Entry is one selectable dynasty.
type Entry struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	File  string `json:"file"`
	Start int    `json:"start"` // first year, negative for BCE
	End   int    `json:"end"`
}

// registry is the closed set of dynasties, in chronological order.
var registry = []Entry{
	{Key: "qin", Name: "Qin", File: "qin.geojson", Start: -221, End: -206},
	{Key: "han_west", Name: "Western Han", File: "han_west.geojson", Start: -202, End: 9},
	{Key: "han_east", Name: "Eastern Han", File: "han_east.geojson", Start: 25, End: 220},
	{Key: "tang", Name: "Tang", File: "tang.geojson", Start: 618, End: 907},
	{Key: "song_n", Name: "Northern Song", File: "song_n.geojson", Start: 960, End: 1127},
	{Key: "song_s", Name: "Southern Song", File: "song_s.geojson", Start: 1127, End: 1279},
	{Key: "yuan", Name: "Yuan", File: "yuan.geojson", Start: 1271, End: 1368},
	{Key: "ming", Name: "Ming", File: "ming.geojson", Start: 1368, End: 1644},
	{Key: "qing", Name: "Qing", File: "qing.geojson", Start: 1644, End: 1912},
}

var byKey = func() map[string]Entry {
	m := make(map[string]Entry, len(registry))
	for _, e := range registry {
		m[e.Key] = e
	}
	return m
}()

// Lookup returns the registry entry for key.
func Lookup(key string) (Entry, bool) {
	e, ok := byKey[key]
	return e, ok
}

// Known reports whether key is in the registry.
func Known(key string) bool {
	_, ok := byKey[key]
	return ok
}

// Entries returns a copy of the registry in chronological order.
func Entries() []Entry {
	out := make([]Entry, len(registry))
	copy(out, registry)
	return out
}

// Keys returns the registry keys in chronological order.
func Keys() []string {
	keys := make([]string, len(registry))
	for i, e := range registry {
		keys[i] = e.Key
	}
	return keys
}
