package telemetry

import "sort"

// Clade records where a lineage came from and how often it reproduced.
type Clade struct {
	ID         int `csv:"clade"`
	Parent     int `csv:"parent"`
	OriginTick int `csv:"origin_tick"`
	Births     int `csv:"births"`
}

// LineageTracker records clade ancestry and birth events.
type LineageTracker struct {
	clades map[int]*Clade
}

// NewLineageTracker creates an empty tracker.
func NewLineageTracker() *LineageTracker {
	return &LineageTracker{
		clades: make(map[int]*Clade),
	}
}

// RecordOrigin registers a clade. Root clades use their own id as parent.
// Registering a known clade is a no-op.
func (lt *LineageTracker) RecordOrigin(id, parent, tick int) {
	if _, ok := lt.clades[id]; ok {
		return
	}
	lt.clades[id] = &Clade{ID: id, Parent: parent, OriginTick: tick}
}

// RecordBirth records one birth of a child in clade child from a parent in
// clade parent. A child clade seen for the first time originates here.
func (lt *LineageTracker) RecordBirth(parent, child, tick int) {
	lt.RecordOrigin(child, parent, tick)
	lt.clades[child].Births++
}

// Get returns the record for a clade, or nil if unknown.
func (lt *LineageTracker) Get(id int) *Clade {
	return lt.clades[id]
}

// Count returns the number of clades ever recorded.
func (lt *LineageTracker) Count() int {
	return len(lt.clades)
}

// Ancestry returns the chain of clade ids from id back to its root.
func (lt *LineageTracker) Ancestry(id int) []int {
	var chain []int
	for {
		c, ok := lt.clades[id]
		if !ok {
			return chain
		}
		chain = append(chain, id)
		if c.Parent == id {
			return chain
		}
		id = c.Parent
	}
}

// All returns every clade record ordered by id.
func (lt *LineageTracker) All() []Clade {
	out := make([]Clade, 0, len(lt.clades))
	for _, c := range lt.clades {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
