package memory

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/snjsomnath/threejsEditor-sub001/internal/mesh"
	"github.com/snjsomnath/threejsEditor-sub001/internal/transform"
)

// Layer identifies one of the instanced meshes every window is drawn with.
type Layer int

const (
	LayerGlass Layer = iota
	LayerFrame
	LayerOverhang

	NumLayers = 3
)

func (l Layer) String() string {
	switch l {
	case LayerGlass:
		return "glass"
	case LayerFrame:
		return "frame"
	case LayerOverhang:
		return "overhang"
	default:
		return "unknown"
	}
}

// Instance is one window: a matrix per layer, indexed by Layer.
type Instance [NumLayers]mgl32.Mat4

// bytesPerMatrix is the GPU footprint of one instance matrix (16 float32s).
const bytesPerMatrix = 16 * 4

// InstanceBuffer is the CPU-side copy of one layer's instance matrices. It
// is allocated at full capacity up front and tracks the range of slots
// written since the renderer last uploaded it.
type InstanceBuffer struct {
	layer    Layer
	matrices []mgl32.Mat4

	// Half-open dirty range; empty when lo >= hi.
	dirtyLo, dirtyHi int
}

func newInstanceBuffer(layer Layer, capacity int) *InstanceBuffer {
	b := &InstanceBuffer{
		layer:    layer,
		matrices: make([]mgl32.Mat4, capacity),
	}
	for i := range b.matrices {
		b.matrices[i] = transform.Hidden
	}
	return b
}

func (b *InstanceBuffer) set(slot int, m mgl32.Mat4) {
	b.matrices[slot] = m
	b.markDirty(slot, slot+1)
}

func (b *InstanceBuffer) markDirty(lo, hi int) {
	if lo >= hi {
		return
	}
	if b.dirtyLo >= b.dirtyHi {
		b.dirtyLo, b.dirtyHi = lo, hi
		return
	}
	b.dirtyLo = min(b.dirtyLo, lo)
	b.dirtyHi = max(b.dirtyHi, hi)
}

// Drawable is what a Scene sees of one layer: a mesh, instanced Count()
// times with the matrices in Instances().
type Drawable struct {
	Layer Layer
	Mesh  *mesh.Mesh

	buffer *InstanceBuffer
	pool   *Pool
}

// Count is the number of instances to draw, the pool's active length.
func (d *Drawable) Count() int { return d.pool.count }

// Capacity is the fixed number of instance slots backing the drawable.
func (d *Drawable) Capacity() int { return len(d.buffer.matrices) }

// Instances returns the live matrices, slots [0, Count()).
func (d *Drawable) Instances() []mgl32.Mat4 { return d.buffer.matrices[:d.pool.count] }

// TakeDirty returns the slot range written since the last call, clipped to
// the live prefix, and marks the buffer clean.
func (d *Drawable) TakeDirty() (lo, hi int, ok bool) {
	b := d.buffer
	lo, hi = b.dirtyLo, min(b.dirtyHi, d.pool.count)
	b.dirtyLo, b.dirtyHi = 0, 0
	if lo >= hi {
		return 0, 0, false
	}
	return lo, hi, true
}

func (d *Drawable) String() string {
	return fmt.Sprintf("%s: %s × %d/%d", d.Layer, d.Mesh.Name, d.Count(), d.Capacity())
}

// Scene is the render-side registry instanced drawables attach to.
type Scene interface {
	AddInstanced(d *Drawable) error
	RemoveInstanced(d *Drawable)
}

// NullScene discards drawables, for running the pool without a GPU.
type NullScene struct{}

func (NullScene) AddInstanced(*Drawable) error { return nil }
func (NullScene) RemoveInstanced(*Drawable)    {}
