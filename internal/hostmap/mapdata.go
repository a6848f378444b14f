// Package hostmap models the host engine's map files and event records.
package hostmap

import "encoding/json"

// Layers is the number of stacked tile layers in a host map.
const Layers = 6

// MapData is the subset of a host map file the generators read and write.
// Data is laid out layer-major: z*Height*Width + y*Width + x.
type MapData struct {
	DisplayName string   `json:"displayName"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Data        []int    `json:"data"`
	Events      []*Event `json:"events"`

	// Extra keeps every other host field so a load/save round trip is lossless.
	Extra map[string]json.RawMessage `json:"-"`
}

// MapInfo is one entry of the host's map index.
type MapInfo struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID int    `json:"parentId"`
	Order    int    `json:"order"`
}

// Index returns the flat offset of tile (x, y) on layer z.
func (m *MapData) Index(x, y, z int) int {
	return z*m.Height*m.Width + y*m.Width + x
}

// InBounds reports whether (x, y, z) addresses a tile of the map.
func (m *MapData) InBounds(x, y, z int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height && z >= 0 && z < Layers
}

// Tile returns the tile id at (x, y, z), or 0 when out of range.
func (m *MapData) Tile(x, y, z int) int {
	if !m.InBounds(x, y, z) {
		return 0
	}
	i := m.Index(x, y, z)
	if i >= len(m.Data) {
		return 0
	}
	return m.Data[i]
}

// SetTile writes a tile id; out-of-range writes are ignored.
func (m *MapData) SetTile(x, y, z, id int) {
	if !m.InBounds(x, y, z) {
		return
	}
	if i := m.Index(x, y, z); i < len(m.Data) {
		m.Data[i] = id
	}
}

// Layer returns a copy of layer z.
func (m *MapData) Layer(z int) []int {
	size := m.Width * m.Height
	start := z * size
	if z < 0 || start+size > len(m.Data) {
		return nil
	}
	out := make([]int, size)
	copy(out, m.Data[start:start+size])
	return out
}

// Resize replaces the map's geometry and clears every layer.
func (m *MapData) Resize(width, height int) {
	m.Width = width
	m.Height = height
	m.Data = make([]int, width*height*Layers)
}

// Clone deep-copies the map, events included.
func (m *MapData) Clone() *MapData {
	if m == nil {
		return nil
	}
	out := *m
	out.Data = append([]int(nil), m.Data...)
	out.Events = make([]*Event, len(m.Events))
	for i, evt := range m.Events {
		out.Events[i] = evt.Clone()
	}
	if m.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &out
}

// FindEventWithCode returns the first event that has a page running a
// command with the given code.
func (m *MapData) FindEventWithCode(code int) *Event {
	for _, evt := range m.Events {
		if evt != nil && evt.HasCommand(code) {
			return evt
		}
	}
	return nil
}

// FindEventByName returns the first event with the given name.
func (m *MapData) FindEventByName(name string) *Event {
	for _, evt := range m.Events {
		if evt != nil && evt.Name == name {
			return evt
		}
	}
	return nil
}

// PutEvent stores evt at index evt.ID, growing the list with nil holes like
// the host does.
func (m *MapData) PutEvent(evt *Event) {
	for len(m.Events) <= evt.ID {
		m.Events = append(m.Events, nil)
	}
	m.Events[evt.ID] = evt
}

var knownMapKeys = map[string]bool{
	"displayName": true, "width": true, "height": true, "data": true, "events": true,
}

func (m *MapData) UnmarshalJSON(b []byte) error {
	type plain MapData
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if knownMapKeys[k] {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]json.RawMessage)
		}
		p.Extra[k] = v
	}
	*m = MapData(p)
	return nil
}

func (m MapData) MarshalJSON() ([]byte, error) {
	type plain MapData
	base, err := json.Marshal(plain(m))
	if err != nil || len(m.Extra) == 0 {
		return base, err
	}
	merged := make(map[string]json.RawMessage, len(m.Extra)+len(knownMapKeys))
	for k, v := range m.Extra {
		merged[k] = v
	}
	var known map[string]json.RawMessage
	if err := json.Unmarshal(base, &known); err != nil {
		return nil, err
	}
	for k, v := range known {
		merged[k] = v
	}
	return json.Marshal(merged)
}
