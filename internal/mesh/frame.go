package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rclancey/earcut"
)

// Frame builds a window frame for a width x height opening: a rectangle with a
// rectangular hole inset by thickness, extruded by thickness. The result is
// normalized to unit outer size so that instance matrices scaling by
// (width, height, 1) restore it; depth stays in meters.
func Frame(width, height, thickness float64) (*Mesh, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("frame must have positive size, got %vx%v", width, height)
	}
	if thickness <= 0 || 2*thickness >= width || 2*thickness >= height {
		return nil, fmt.Errorf("frame thickness %v leaves no opening in %vx%v", thickness, width, height)
	}

	// Inset of the hole in unit coordinates.
	ix := float32(thickness / width)
	iy := float32(thickness / height)
	h := float32(0.5)

	outer := [4]mgl32.Vec2{{-h, -h}, {h, -h}, {h, h}, {-h, h}}
	inner := [4]mgl32.Vec2{{-h + ix, -h + iy}, {h - ix, -h + iy}, {h - ix, h - iy}, {-h + ix, h - iy}}

	face, err := triangulateWithHole(outer[:], inner[:])
	if err != nil {
		return nil, err
	}

	m := &Mesh{Name: fmt.Sprintf("frame %.3gx%.3g/%.3g", width, height, thickness)}
	front := float32(thickness / 2)
	back := -front
	for _, tri := range face {
		a, b, c := tri[0], tri[1], tri[2]
		m.appendTriangle(a.Vec3(front), b.Vec3(front), c.Vec3(front), mgl32.Vec3{0, 0, 1})
		m.appendTriangle(a.Vec3(back), c.Vec3(back), b.Vec3(back), mgl32.Vec3{0, 0, -1})
	}

	// Rims: the outer ring faces away from the opening, the inner ring faces
	// into it.
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		m.appendRim(outer[i], outer[j], front, back, false)
		m.appendRim(inner[i], inner[j], front, back, true)
	}
	return m, nil
}

// appendRim extrudes one side p->q of a counter-clockwise ring.
func (m *Mesh) appendRim(p, q mgl32.Vec2, front, back float32, inward bool) {
	d := q.Sub(p)
	n := mgl32.Vec3{d.Y(), -d.X(), 0}.Normalize() // right of a CCW ring is outward
	if inward {
		n = n.Mul(-1)
		m.appendQuad(p.Vec3(front), q.Vec3(front), q.Vec3(back), p.Vec3(back), n)
		return
	}
	m.appendQuad(p.Vec3(back), q.Vec3(back), q.Vec3(front), p.Vec3(front), n)
}

// triangulateWithHole triangulates the ring outer minus the ring hole with
// earcut, and returns triangles wound counter-clockwise.
func triangulateWithHole(outer, hole []mgl32.Vec2) ([][3]mgl32.Vec2, error) {
	if len(outer) < 3 || len(hole) < 3 {
		return nil, fmt.Errorf("degenerate ring (%d outer, %d hole vertices)", len(outer), len(hole))
	}

	// Flat coordinate array required by earcut: [x0, y0, x1, y1, ...], with
	// the hole starting at vertex len(outer).
	points := append(append([]mgl32.Vec2{}, outer...), hole...)
	coords := make([]float64, 0, 2*len(points))
	for _, p := range points {
		coords = append(coords, float64(p.X()), float64(p.Y()))
	}

	indices, err := earcut.Earcut(coords, []int{len(outer)}, 2 /* dim */)
	if err != nil {
		return nil, fmt.Errorf("triangulation failed: %w", err)
	}
	if len(indices) == 0 || len(indices)%3 != 0 {
		return nil, fmt.Errorf("invalid triangle index count %d", len(indices))
	}

	triangles := make([][3]mgl32.Vec2, 0, len(indices)/3)
	for i := 0; i < len(indices); i += 3 {
		a, b, c := points[indices[i]], points[indices[i+1]], points[indices[i+2]]
		cross := b.Sub(a).X()*c.Sub(a).Y() - b.Sub(a).Y()*c.Sub(a).X()
		if cross < 0 {
			b, c = c, b
		}
		triangles = append(triangles, [3]mgl32.Vec2{a, b, c})
	}
	return triangles, nil
}

type frameKey struct {
	width, height, thickness float64
}

// FrameCache builds each distinct frame once and shares it between every
// instance that uses it.
type FrameCache struct {
	frames map[frameKey]*Mesh
}

func NewFrameCache() *FrameCache {
	return &FrameCache{frames: make(map[frameKey]*Mesh)}
}

// Get returns the frame for the given dimensions, building it on first use.
func (c *FrameCache) Get(width, height, thickness float64) (*Mesh, error) {
	key := frameKey{width, height, thickness}
	if m, ok := c.frames[key]; ok {
		return m, nil
	}
	m, err := Frame(width, height, thickness)
	if err != nil {
		return nil, err
	}
	c.frames[key] = m
	return m, nil
}

// Len returns the number of distinct frames built.
func (c *FrameCache) Len() int {
	return len(c.frames)
}
