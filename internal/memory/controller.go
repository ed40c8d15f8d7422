// Package memory manages the fixed-capacity instance buffers windows are
// drawn from.
//
// Every window occupies one slot, the same index in each layer's buffer. Live
// slots are always the dense prefix [0, Len()); buildings own lists of slot
// indices into it. Removing a building compacts the prefix in a single pass
// and remaps every survivor's indices.
package memory

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/snjsomnath/threejsEditor-sub001/internal/building"
	"github.com/snjsomnath/threejsEditor-sub001/internal/debuglog"
	"github.com/snjsomnath/threejsEditor-sub001/internal/mesh"
	"github.com/snjsomnath/threejsEditor-sub001/internal/transform"
)

var memoryLogger = debuglog.New("memory")

// ErrCapacityExceeded is returned when an allocation would grow the live
// prefix past the pool's capacity.
var ErrCapacityExceeded = errors.New("instance capacity exceeded")

// ErrSlotOutOfRange is returned for writes outside the live prefix.
var ErrSlotOutOfRange = errors.New("slot out of range")

// LayerMesh pairs a layer with the mesh it instances.
type LayerMesh struct {
	Layer Layer
	Mesh  *mesh.Mesh
}

// Pool owns the instance buffers of every layer and the slot bookkeeping
// shared between them.
type Pool struct {
	capacity int
	count    int

	buffers   [NumLayers]*InstanceBuffer
	drawables []*Drawable
	scene     Scene

	owners    map[building.ID][]int
	slotOwner []building.ID // "" for unowned (orphaned) slots
	orphans   int

	compactor *Compactor
	hooks     []func(remap []int)
	stats     Stats
	disposed  bool
}

// Stats tracks slot usage and compaction activity.
type Stats struct {
	TotalBuildings       int
	Capacity             int
	ActiveSlots          int // live prefix length
	OwnedSlots           int
	OrphanedSlots        int
	Layers               int
	GPUBytes             int64
	CompactionEvents     int
	SlotsRelocated       int
	SlotsReclaimed       int
	LastCompactionTimeUs float64
	CapacityOverflows    int
}

// NewPool allocates capacity slots for each of the given layers and
// registers one drawable per layer with the scene.
func NewPool(scene Scene, capacity int, layers ...LayerMesh) (*Pool, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("pool capacity must be positive, got %d", capacity)
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("pool needs at least one layer")
	}
	if scene == nil {
		scene = NullScene{}
	}

	p := &Pool{
		capacity:  capacity,
		scene:     scene,
		owners:    make(map[building.ID][]int),
		slotOwner: make([]building.ID, capacity),
		compactor: newCompactor(),
	}
	for _, lm := range layers {
		if lm.Layer < 0 || lm.Layer >= NumLayers {
			return nil, fmt.Errorf("unknown layer %d", lm.Layer)
		}
		if p.buffers[lm.Layer] != nil {
			return nil, fmt.Errorf("layer %s given twice", lm.Layer)
		}
		if lm.Mesh == nil {
			return nil, fmt.Errorf("layer %s has no mesh", lm.Layer)
		}
		buf := newInstanceBuffer(lm.Layer, capacity)
		p.buffers[lm.Layer] = buf
		p.drawables = append(p.drawables, &Drawable{
			Layer:  lm.Layer,
			Mesh:   lm.Mesh,
			buffer: buf,
			pool:   p,
		})
	}

	for i, d := range p.drawables {
		if err := scene.AddInstanced(d); err != nil {
			for _, added := range p.drawables[:i] {
				scene.RemoveInstanced(added)
			}
			return nil, fmt.Errorf("registering %s drawable: %w", d.Layer, err)
		}
	}

	memoryLogger.Debugf("pool created with %d layers × %d slots (%s GPU)",
		len(p.drawables), capacity, formatNumber(p.gpuBytes()))
	return p, nil
}

// Len is the length of the live prefix.
func (p *Pool) Len() int { return p.count }

// Capacity is the fixed number of slots.
func (p *Pool) Capacity() int { return p.capacity }

// Free is the number of slots still available to Allocate.
func (p *Pool) Free() int { return p.capacity - p.count }

// Orphans is the number of hidden, unowned slots in the live prefix.
func (p *Pool) Orphans() int { return p.orphans }

// HasLayer reports whether the pool carries the layer.
func (p *Pool) HasLayer(l Layer) bool {
	return l >= 0 && l < NumLayers && p.buffers[l] != nil
}

// Drawables returns the per-layer drawables, in registration order.
func (p *Pool) Drawables() []*Drawable { return p.drawables }

// Slots returns a copy of the slot indices owned by the building, in the
// order they were allocated.
func (p *Pool) Slots(id building.ID) []int {
	return append([]int(nil), p.owners[id]...)
}

// Count is the number of slots owned by the building.
func (p *Pool) Count(id building.ID) int { return len(p.owners[id]) }

// Buildings returns the ids owning at least one slot, sorted.
func (p *Pool) Buildings() []building.ID {
	ids := make([]building.ID, 0, len(p.owners))
	for id := range p.owners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// OnCompact registers a hook run after every compaction with the old→new
// slot mapping; dropped slots map to -1.
func (p *Pool) OnCompact(hook func(remap []int)) {
	p.hooks = append(p.hooks, hook)
}

// Allocate appends instances to the live prefix on behalf of the building.
// When the pool fills up it stops, keeping what was placed, and returns
// ErrCapacityExceeded along with the number allocated.
func (p *Pool) Allocate(id building.ID, instances []Instance) (int, error) {
	placed := 0
	for _, inst := range instances {
		if p.count >= p.capacity {
			p.stats.CapacityOverflows++
			return placed, fmt.Errorf("%w: building %s placed %d of %d windows (%d/%d slots live)",
				ErrCapacityExceeded, id, placed, len(instances), p.count, p.capacity)
		}
		slot := p.count
		p.count++
		p.slotOwner[slot] = id
		p.owners[id] = append(p.owners[id], slot)
		p.write(slot, inst)
		placed++
	}
	return placed, nil
}

// Write overwrites every layer of a live slot.
func (p *Pool) Write(slot int, inst Instance) error {
	if slot < 0 || slot >= p.count {
		return fmt.Errorf("%w: write to %d, %d live", ErrSlotOutOfRange, slot, p.count)
	}
	p.write(slot, inst)
	return nil
}

// WriteLayer overwrites one layer of a live slot. Layers the pool does not
// carry are ignored.
func (p *Pool) WriteLayer(l Layer, slot int, m mgl32.Mat4) error {
	if slot < 0 || slot >= p.count {
		return fmt.Errorf("%w: write to %d, %d live", ErrSlotOutOfRange, slot, p.count)
	}
	if buf := p.buffer(l); buf != nil {
		buf.set(slot, m)
	}
	return nil
}

// Read returns the matrices of a slot. Layers the pool does not carry read
// as hidden.
func (p *Pool) Read(slot int) Instance {
	var inst Instance
	for l := range inst {
		inst[l] = transform.Hidden
		if buf := p.buffers[l]; buf != nil && slot >= 0 && slot < p.capacity {
			inst[l] = buf.matrices[slot]
		}
	}
	return inst
}

func (p *Pool) write(slot int, inst Instance) {
	for l, buf := range p.buffers {
		if buf != nil {
			buf.set(slot, inst[l])
		}
	}
}

func (p *Pool) buffer(l Layer) *InstanceBuffer {
	if l < 0 || l >= NumLayers {
		return nil
	}
	return p.buffers[l]
}

// Truncate keeps the building's first n slots and hides the rest. The hidden
// slots become orphans: they stay in the live prefix, drawn at zero scale,
// until the next compaction reclaims them.
func (p *Pool) Truncate(id building.ID, n int) int {
	slots := p.owners[id]
	if n < 0 {
		n = 0
	}
	if n >= len(slots) {
		return 0
	}
	for _, slot := range slots[n:] {
		p.write(slot, hiddenInstance)
		p.slotOwner[slot] = ""
	}
	dropped := len(slots) - n
	p.orphans += dropped
	if n == 0 {
		delete(p.owners, id)
	} else {
		p.owners[id] = slots[:n:n]
	}
	memoryLogger.Debugf("building %s truncated to %d slots, %d orphaned (%d total)", id, n, dropped, p.orphans)
	return dropped
}

// Remove frees every slot the building owns and compacts the live prefix,
// reclaiming orphans along the way. It returns the number of slots the
// building held.
func (p *Pool) Remove(id building.ID) int {
	slots, ok := p.owners[id]
	if !ok {
		return 0
	}
	delete(p.owners, id)
	p.compactor.compact(p, func(_ int, owner building.ID) bool {
		return owner != "" && owner != id
	})
	memoryLogger.Debugf("building %s removed, %d slots freed, %d live", id, len(slots), p.count)
	return len(slots)
}

// Compact reclaims orphaned slots, returning how many were reclaimed.
func (p *Pool) Compact() int {
	if p.orphans == 0 {
		return 0
	}
	before := p.count
	p.compactor.compact(p, func(_ int, owner building.ID) bool {
		return owner != ""
	})
	return before - p.count
}

// Clear drops every slot.
func (p *Pool) Clear() {
	for _, buf := range p.buffers {
		if buf == nil {
			continue
		}
		for i := 0; i < p.count; i++ {
			buf.matrices[i] = transform.Hidden
		}
		buf.markDirty(0, p.count)
	}
	for i := 0; i < p.count; i++ {
		p.slotOwner[i] = ""
	}
	p.count = 0
	p.orphans = 0
	p.owners = make(map[building.ID][]int)
	memoryLogger.Debug("pool cleared")
}

// Dispose detaches the drawables from the scene. The pool must not be used
// afterwards.
func (p *Pool) Dispose() {
	if p.disposed {
		return
	}
	for _, d := range p.drawables {
		p.scene.RemoveInstanced(d)
	}
	p.disposed = true
	memoryLogger.Debug("pool disposed")
}

// Disposed reports whether Dispose has run.
func (p *Pool) Disposed() bool { return p.disposed }

// ValidateIntegrity checks that every owned slot is live, owned exactly once
// and attributed to its owner, and that owned plus orphaned slots account
// for the whole live prefix.
func (p *Pool) ValidateIntegrity() error {
	var problems []string

	seen := make(map[int]building.ID)
	owned := 0
	for id, slots := range p.owners {
		if len(slots) == 0 {
			problems = append(problems, fmt.Sprintf("building %s tracked with no slots", id))
		}
		for _, slot := range slots {
			owned++
			if slot < 0 || slot >= p.count {
				problems = append(problems, fmt.Sprintf("building %s owns slot %d outside live prefix [0,%d)", id, slot, p.count))
				continue
			}
			if prev, dup := seen[slot]; dup {
				problems = append(problems, fmt.Sprintf("slot %d owned by both %s and %s", slot, prev, id))
			}
			seen[slot] = id
			if p.slotOwner[slot] != id {
				problems = append(problems, fmt.Sprintf("building %s slot %d mismatch: slot points to %q", id, slot, p.slotOwner[slot]))
			}
		}
	}

	orphans := 0
	for i := 0; i < p.count; i++ {
		if p.slotOwner[i] == "" {
			orphans++
		}
	}
	if orphans != p.orphans {
		problems = append(problems, fmt.Sprintf("%d unowned slots, %d orphans tracked", orphans, p.orphans))
	}
	if owned+p.orphans != p.count {
		problems = append(problems, fmt.Sprintf("%d owned + %d orphaned slots, %d live", owned, p.orphans, p.count))
	}
	if p.count > p.capacity {
		problems = append(problems, fmt.Sprintf("%d live slots exceed capacity %d", p.count, p.capacity))
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		memoryLogger.Errorf("slot integrity check failed with %d errors:", len(problems))
		for _, problem := range problems {
			memoryLogger.Errorf("  - %s", problem)
		}
		return fmt.Errorf("slot integrity check failed with %d errors: %s", len(problems), problems[0])
	}
	return nil
}

// Stats returns current slot statistics.
func (p *Pool) Stats() Stats {
	p.stats.TotalBuildings = len(p.owners)
	p.stats.Capacity = p.capacity
	p.stats.ActiveSlots = p.count
	p.stats.OrphanedSlots = p.orphans
	p.stats.OwnedSlots = p.count - p.orphans
	p.stats.Layers = len(p.drawables)
	p.stats.GPUBytes = p.gpuBytes()
	return p.stats
}

func (p *Pool) gpuBytes() int64 {
	return int64(len(p.drawables)) * int64(p.capacity) * bytesPerMatrix
}

// PrintStats outputs slot statistics with visual bars.
func (p *Pool) PrintStats() {
	stats := p.Stats()

	util := float64(stats.ActiveSlots) / float64(stats.Capacity)
	orphanUtil := 0.0
	if stats.ActiveSlots > 0 {
		orphanUtil = float64(stats.OrphanedSlots) / float64(stats.ActiveSlots)
	}

	memoryLogger.Print("===== Instance Pool Stats =====")
	memoryLogger.Printf("%d compactions (%d slots relocated, %d reclaimed, %.2fμs last), %d capacity overflows",
		stats.CompactionEvents, stats.SlotsRelocated, stats.SlotsReclaimed, stats.LastCompactionTimeUs,
		stats.CapacityOverflows,
	)
	memoryLogger.Printf("%s %.1f%% slots live (%d/%d), %d buildings, %s GPU across %d layers",
		makeUtilizationBar(util, 12),
		util*100,
		stats.ActiveSlots,
		stats.Capacity,
		stats.TotalBuildings,
		formatNumber(stats.GPUBytes),
		stats.Layers,
	)
	memoryLogger.Printf("%s %.1f%% of live slots orphaned (%d)",
		makeUtilizationBar(orphanUtil, 12), orphanUtil*100, stats.OrphanedSlots)
	for _, d := range p.drawables {
		memoryLogger.Printf("  [%8s] %s (%s triangles per instance)",
			d.Layer, d, formatNumber(int64(d.Mesh.TriangleCount())))
	}
	memoryLogger.Print("===============================")
}

// makeUtilizationBar creates a visual bar for utilization percentage.
func makeUtilizationBar(utilization float64, width int) string {
	utilization = max(0, min(1, utilization))
	filled := int(utilization * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// formatNumber formats large numbers with K/M suffixes for readability.
func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000.0)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000.0)
}

var hiddenInstance = Instance{transform.Hidden, transform.Hidden, transform.Hidden}
