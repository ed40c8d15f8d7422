package layout

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/snjsomnath/threejsEditor-sub001/internal/geom"
)

// WorldUp is the vertical axis of the scene.
var WorldUp = mgl64.Vec3{0, 1, 0}

// PlaceParams carries the per-building vertical layout inputs.
type PlaceParams struct {
	Floors       int
	FloorHeight  float64
	WindowHeight float64
	Spacing      float64 // vertical gap between rows and to the slabs
	Offset       float64 // push along the outward normal
	RefWidth     float64 // ScaleX is relative to this
}

// Placement is one window instance: center, orientation and width scale.
type Placement struct {
	Position mgl64.Vec3
	Tangent  mgl64.Vec3
	Normal   mgl64.Vec3
	Rotation mgl64.Quat
	ScaleX   float64

	Edge, Floor, Row, Column int
}

// Basis returns the rotation matrix whose columns are tangent, up and normal.
func (p Placement) Basis() mgl64.Mat3 {
	return mgl64.Mat3FromCols(p.Tangent, WorldUp, p.Normal)
}

// RowsPerFloor returns how many rows of windows stack on one floor. At least
// one row is always placed, centered in the floor when it does not fit.
func RowsPerFloor(floorHeight, windowHeight, spacing float64) int {
	usable := floorHeight - 2*spacing
	rows := int(math.Floor((usable + spacing) / (windowHeight + spacing)))
	if rows < 1 {
		rows = 1
	}
	return rows
}

// rowCenters returns the heights of row centers above a floor's slab.
func rowCenters(floorHeight, windowHeight, spacing float64) []float64 {
	rows := RowsPerFloor(floorHeight, windowHeight, spacing)
	usable := floorHeight - 2*spacing
	stack := float64(rows)*windowHeight + float64(rows-1)*spacing
	first := spacing + (usable-stack)/2 + windowHeight/2

	out := make([]float64, rows)
	for i := range out {
		out[i] = first + float64(i)*(windowHeight+spacing)
	}
	return out
}

// ColumnParams returns the edge parameter t in [0,1] of every window center.
func ColumnParams(edgeLength float64, r Result) []float64 {
	if r.NumWindows == 0 || edgeLength <= 0 {
		return nil
	}
	out := make([]float64, r.NumWindows)
	for i := range out {
		along := r.Margin + float64(i)*(r.Width+r.Spacing) + r.Width/2
		out[i] = along / edgeLength
	}
	return out
}

// FacadeBasis returns the orientation of a wall: tangent, up and outward
// normal. The tangent is derived as up x normal so the basis is always a
// proper rotation, whichever way the footprint winds.
func FacadeBasis(e geom.Edge) (tangent, normal mgl64.Vec3) {
	normal = mgl64.Vec3{e.Normal.X, 0, e.Normal.Y}.Normalize()
	tangent = WorldUp.Cross(normal).Normalize()
	return tangent, normal
}

// Place expands a solved edge arrangement into placements for every floor,
// row and column, ordered floor-major then row then column.
func Place(e geom.Edge, p PlaceParams, r Result) []Placement {
	if r.NumWindows == 0 || p.Floors < 1 || p.FloorHeight <= 0 {
		return nil
	}

	columns := ColumnParams(e.Length, r)
	rows := rowCenters(p.FloorHeight, p.WindowHeight, p.Spacing)
	tangent, normal := FacadeBasis(e)
	rotation := mgl64.Mat4ToQuat(mgl64.Mat3FromCols(tangent, WorldUp, normal).Mat4())

	scaleX := 1.0
	if p.RefWidth > 0 {
		scaleX = r.Width / p.RefWidth
	}

	// Ground-plane positions are shared by every floor and row.
	ground := make([]mgl64.Vec3, len(columns))
	for i, t := range columns {
		pt := geom.Lerp(e.Start, e.End, t)
		ground[i] = mgl64.Vec3{pt.X, 0, pt.Y}.Add(normal.Mul(p.Offset))
	}

	out := make([]Placement, 0, p.Floors*len(rows)*len(columns))
	for floor := 0; floor < p.Floors; floor++ {
		base := float64(floor) * p.FloorHeight
		for row, h := range rows {
			for col, g := range ground {
				out = append(out, Placement{
					Position: mgl64.Vec3{g.X(), base + h, g.Z()},
					Tangent:  tangent,
					Normal:   normal,
					Rotation: rotation,
					ScaleX:   scaleX,
					Edge:     e.Index,
					Floor:    floor,
					Row:      row,
					Column:   col,
				})
			}
		}
	}
	return out
}
