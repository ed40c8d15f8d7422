// Package geom provides the 2D footprint primitives the facade pipeline works
// on:
// - Points and vectors on the ground plane (X is world x, Y is world z)
// - Bounding boxes
// - Polygon winding and per-edge outward normals
package geom

import (
	"math"
)

// Point represents a 2D point or vector on the ground plane.
type Point struct {
	X float64
	Y float64
}

// Box represents an axis-aligned rectangle.
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

// Edge is one side of a footprint polygon.
type Edge struct {
	Index  int
	Start  Point
	End    Point
	Normal Point // outward-facing unit normal
	Length float64
}

func MakePoint(x, y float64) Point   { return Point{X: x, Y: y} }
func MakeBox(x, y, w, h float64) Box { return Box{X: x, Y: y, W: w, H: h} }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }
func (p Point) Len() float64          { return math.Hypot(p.X, p.Y) }

func Dot(p, q Point) float64 { return p.X*q.X + p.Y*q.Y }

func Dist(p, q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Lerp returns the point at parameter t along p->q.
func Lerp(p, q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Center returns the center of the box.
func (b Box) Center() Point { return Point{b.X + 0.5*b.W, b.Y + 0.5*b.H} }

// SignedArea returns the shoelace area of the closed polygon. Positive for
// counter-clockwise winding.
func SignedArea(poly []Point) float64 {
	if len(poly) < 3 {
		return 0
	}
	area := 0.0
	for i := range poly {
		p, q := poly[i], poly[(i+1)%len(poly)]
		area += p.X*q.Y - q.X*p.Y
	}
	return 0.5 * area
}

// Bounds returns the axis-aligned bounding box of the points.
func Bounds(points []Point) Box {
	if len(points) == 0 {
		return Box{}
	}
	xmin, xmax := math.MaxFloat64, -math.MaxFloat64
	ymin, ymax := math.MaxFloat64, -math.MaxFloat64
	for _, p := range points {
		xmin = math.Min(xmin, p.X)
		xmax = math.Max(xmax, p.X)
		ymin = math.Min(ymin, p.Y)
		ymax = math.Max(ymax, p.Y)
	}
	return MakeBox(xmin, ymin, xmax-xmin, ymax-ymin)
}

// Edges returns the sides of the closed polygon with outward normals. The
// closing edge (last point back to the first) is included. Zero-length edges
// are dropped. Returns nil for fewer than 3 points or a degenerate polygon.
func Edges(poly []Point) []Edge {
	if len(poly) < 3 {
		return nil
	}
	area := SignedArea(poly)
	if math.Abs(area) < 1e-12 {
		return nil
	}

	edges := make([]Edge, 0, len(poly))
	for i := range poly {
		start, end := poly[i], poly[(i+1)%len(poly)]
		d := end.Sub(start)
		length := d.Len()
		if length < 1e-12 {
			continue // repeated point
		}
		dir := d.Scale(1 / length)

		// Right-hand normal points outward for counter-clockwise polygons.
		normal := Point{dir.Y, -dir.X}
		if area < 0 {
			normal = normal.Scale(-1)
		}
		edges = append(edges, Edge{
			Index:  i,
			Start:  start,
			End:    end,
			Normal: normal,
			Length: length,
		})
	}
	return edges
}
