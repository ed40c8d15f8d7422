package app

import (
	"math"
	"sort"

	"github.com/snjsomnath/threejsEditor-sub001/internal/building"
	"github.com/snjsomnath/threejsEditor-sub001/internal/geom"
)

// Entry is one building in the editor along with its ground centroid.
type Entry struct {
	Building building.Building
	Center   geom.Point // footprint bounds center, (x, z)
	order    int        // insertion order, for navigation
}

func newEntry(b building.Building, order int) *Entry {
	return &Entry{
		Building: b,
		Center:   geom.Bounds(b.Footprint()).Center(),
		order:    order,
	}
}

// BuildingManager keeps the editor's buildings and the current selection.
type BuildingManager struct {
	entries   map[building.ID]*Entry
	currentID building.ID // empty when nothing is selected
	nextOrder int
}

// NewBuildingManager creates an empty manager.
func NewBuildingManager() *BuildingManager {
	return &BuildingManager{entries: make(map[building.ID]*Entry)}
}

// Put adds or replaces a building. Replacing keeps its navigation position.
func (bm *BuildingManager) Put(b building.Building) *Entry {
	order := bm.nextOrder
	if e, ok := bm.entries[b.ID]; ok {
		order = e.order
	} else {
		bm.nextOrder++
	}
	e := newEntry(b, order)
	bm.entries[b.ID] = e
	return e
}

// Get returns the building's entry.
func (bm *BuildingManager) Get(id building.ID) (*Entry, bool) {
	e, ok := bm.entries[id]
	return e, ok
}

// Remove removes a building by ID.
func (bm *BuildingManager) Remove(id building.ID) bool {
	if _, ok := bm.entries[id]; !ok {
		return false
	}
	delete(bm.entries, id)
	if bm.currentID == id {
		bm.currentID = ""
	}
	return true
}

// Len is the number of buildings.
func (bm *BuildingManager) Len() int { return len(bm.entries) }

// Entries returns all buildings in insertion order.
func (bm *BuildingManager) Entries() []*Entry {
	out := make([]*Entry, 0, len(bm.entries))
	for _, e := range bm.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].order < out[j].order })
	return out
}

// FindClosest returns all buildings sorted by distance from pos to their
// centers, closest first. Ties go to the most recently added.
func (bm *BuildingManager) FindClosest(pos geom.Point) []*Entry {
	type sortKey struct {
		distance float64
		entry    *Entry
	}
	keys := make([]sortKey, 0, len(bm.entries))
	for _, e := range bm.entries {
		keys = append(keys, sortKey{geom.Dist(e.Center, pos), e})
	}
	sort.Slice(keys, func(i, j int) bool {
		if math.Abs(keys[i].distance-keys[j].distance) < 1e-4 {
			return keys[i].entry.order > keys[j].entry.order
		}
		return keys[i].distance < keys[j].distance
	})

	out := make([]*Entry, len(keys))
	for i, k := range keys {
		out[i] = k.entry
	}
	return out
}

// Current returns the selected building, if any.
func (bm *BuildingManager) Current() (*Entry, bool) {
	if bm.currentID == "" {
		return nil, false
	}
	return bm.Get(bm.currentID)
}

// SetCurrent selects e; nil clears the selection.
func (bm *BuildingManager) SetCurrent(e *Entry) {
	if e == nil {
		bm.currentID = ""
		return
	}
	bm.currentID = e.Building.ID
}

// Iter selects and returns the next or previous building in insertion order,
// wrapping around. With nothing selected it starts from the first or last.
func (bm *BuildingManager) Iter(next bool) *Entry {
	entries := bm.Entries()
	if len(entries) == 0 {
		bm.currentID = ""
		return nil
	}

	pos := -1
	for i, e := range entries {
		if e.Building.ID == bm.currentID {
			pos = i
			break
		}
	}

	var newPos int
	switch {
	case pos == -1 && next:
		newPos = 0
	case pos == -1:
		newPos = len(entries) - 1
	case next:
		newPos = (pos + 1) % len(entries)
	default:
		newPos = (pos - 1 + len(entries)) % len(entries)
	}

	e := entries[newPos]
	bm.currentID = e.Building.ID
	return e
}
