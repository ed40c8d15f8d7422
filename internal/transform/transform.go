// Package transform turns window placements into per-instance matrices, and
// provides the stateless decompose/interpolate/recompose helpers animations
// are built on.
package transform

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/snjsomnath/threejsEditor-sub001/internal/layout"
)

// Hidden is the zero-scale matrix used for slots that must not draw.
var Hidden = mgl32.Scale3D(0, 0, 0)

// Params are the reference sizes a placement's scale is relative to.
type Params struct {
	RefWidth    float64
	RefHeight   float64
	GlassOffset float64 // glass sits this far in front of the frame

	// Overhang is a slab above the window, projecting from the wall. Depth
	// zero means no overhang.
	OverhangDepth     float64
	OverhangThickness float64
	FrameThickness    float64
}

// Transforms holds the matrices of one window.
type Transforms struct {
	Glass    mgl32.Mat4
	Frame    mgl32.Mat4
	Overhang mgl32.Mat4
}

// Build returns the glass and frame matrices for a placement: rotation from
// the placement basis, scale (width*scale, height, 1), the frame on the
// placement point and the glass nudged along the outward normal so the two
// are never coplanar. The overhang is Hidden unless p.OverhangDepth > 0.
func Build(pl layout.Placement, p Params) Transforms {
	rot := pl.Rotation.Mat4()
	width := p.RefWidth * pl.ScaleX
	scale := mgl64.Scale3D(width, p.RefHeight, 1)

	frame := mgl64.Translate3D(pl.Position.Elem()).Mul4(rot).Mul4(scale)

	glassAt := pl.Position.Add(pl.Normal.Mul(p.GlassOffset))
	glass := mgl64.Translate3D(glassAt.Elem()).Mul4(rot).Mul4(scale)

	out := Transforms{
		Glass:    toMat32(glass),
		Frame:    toMat32(frame),
		Overhang: Hidden,
	}

	if p.OverhangDepth > 0 {
		// Rest the slab on top of the frame, flush with the wall behind it.
		lift := p.RefHeight/2 + p.OverhangThickness/2
		at := pl.Position.
			Add(layout.WorldUp.Mul(lift)).
			Add(pl.Normal.Mul(p.OverhangDepth / 2))
		size := mgl64.Scale3D(width+2*p.FrameThickness, p.OverhangThickness, p.OverhangDepth)
		out.Overhang = toMat32(mgl64.Translate3D(at.Elem()).Mul4(rot).Mul4(size))
	}
	return out
}

func toMat32(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}
