// Package mesh builds the shared geometry every window instance is drawn with.
// Geometry lives in a unit local frame: X along the wall, Y up, Z out of the
// wall. Instance matrices scale it to size, so one mesh serves all instances
// of a layer.
package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// FloatsPerVertex is the interleaved layout: position (vec3), normal (vec3).
const FloatsPerVertex = 6

// Mesh is a non-indexed triangle list.
type Mesh struct {
	Name     string
	Vertices []float32
}

// VertexCount returns the number of vertices in the triangle list.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / FloatsPerVertex
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return m.VertexCount() / 3
}

// Position returns the position of vertex i.
func (m *Mesh) Position(i int) mgl32.Vec3 {
	o := i * FloatsPerVertex
	return mgl32.Vec3{m.Vertices[o], m.Vertices[o+1], m.Vertices[o+2]}
}

// Normal returns the normal of vertex i.
func (m *Mesh) Normal(i int) mgl32.Vec3 {
	o := i*FloatsPerVertex + 3
	return mgl32.Vec3{m.Vertices[o], m.Vertices[o+1], m.Vertices[o+2]}
}

func (m *Mesh) String() string {
	return fmt.Sprintf("%s (%d triangles)", m.Name, m.TriangleCount())
}

// appendTriangle adds one flat-shaded triangle.
func (m *Mesh) appendTriangle(a, b, c, n mgl32.Vec3) {
	for _, p := range [3]mgl32.Vec3{a, b, c} {
		m.Vertices = append(m.Vertices, p[0], p[1], p[2], n[0], n[1], n[2])
	}
}

// appendQuad adds a flat quad a-b-c-d, counter-clockwise seen from n.
func (m *Mesh) appendQuad(a, b, c, d, n mgl32.Vec3) {
	m.appendTriangle(a, b, c, n)
	m.appendTriangle(a, c, d, n)
}

// Quad returns a unit plane centered at the origin facing +Z. Used for glass.
func Quad() *Mesh {
	m := &Mesh{Name: "glass"}
	n := mgl32.Vec3{0, 0, 1}
	m.appendQuad(
		mgl32.Vec3{-0.5, -0.5, 0},
		mgl32.Vec3{0.5, -0.5, 0},
		mgl32.Vec3{0.5, 0.5, 0},
		mgl32.Vec3{-0.5, 0.5, 0},
		n,
	)
	return m
}

// Box returns a unit cube centered at the origin. Used for overhangs.
func Box() *Mesh {
	m := &Mesh{Name: "overhang"}
	h := float32(0.5)
	corners := func(axis int, sign float32) (a, b, c, d, n mgl32.Vec3) {
		// u, v complete a right-handed frame with the face normal.
		u, v := (axis+1)%3, (axis+2)%3
		if sign < 0 {
			u, v = v, u
		}
		at := func(su, sv float32) mgl32.Vec3 {
			var p mgl32.Vec3
			p[axis] = sign * h
			p[u] = su * h
			p[v] = sv * h
			return p
		}
		n[axis] = sign
		return at(-1, -1), at(1, -1), at(1, 1), at(-1, 1), n
	}
	for axis := 0; axis < 3; axis++ {
		for _, sign := range []float32{1, -1} {
			a, b, c, d, n := corners(axis, sign)
			m.appendQuad(a, b, c, d, n)
		}
	}
	return m
}
