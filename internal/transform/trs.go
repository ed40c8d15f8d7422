package transform

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// minScale below which an axis is treated as collapsed (a hidden slot).
const minScale = 1e-6

// TRS is a matrix split into translation, rotation and scale.
type TRS struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// Decompose splits an affine matrix without shear. A collapsed axis has no
// recoverable rotation; the identity is returned so that interpolation can
// take its orientation from the other end.
func Decompose(m mgl32.Mat4) TRS {
	c0, c1, c2 := m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()
	s := mgl32.Vec3{c0.Len(), c1.Len(), c2.Len()}
	out := TRS{
		Translation: m.Col(3).Vec3(),
		Rotation:    mgl32.QuatIdent(),
		Scale:       s,
	}
	if s.X() < minScale || s.Y() < minScale || s.Z() < minScale {
		return out
	}

	// Flip one axis of a mirrored basis so the rotation stays proper.
	if c0.Cross(c1).Dot(c2) < 0 {
		s[0] = -s[0]
		out.Scale = s
	}
	rot := mgl32.Mat3FromCols(c0.Mul(1/s.X()), c1.Mul(1/s.Y()), c2.Mul(1/s.Z()))
	out.Rotation = mgl32.Mat4ToQuat(rot.Mat4()).Normalize()
	return out
}

// Collapsed reports whether the transform hides its geometry.
func (t TRS) Collapsed() bool {
	return abs32(t.Scale.X()) < minScale || abs32(t.Scale.Y()) < minScale || abs32(t.Scale.Z()) < minScale
}

// Mat4 recomposes T * R * S.
func (t TRS) Mat4() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation.Elem()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.Elem()))
}

// Interpolate blends a to b: translation and scale linearly, rotation along
// the shortest arc. t is clamped to [0,1] and the endpoints return a and b
// as given.
func Interpolate(a, b TRS, t float32) TRS {
	switch {
	case t <= 0:
		return a
	case t >= 1:
		return b
	}

	// A collapsed end has no placement of its own; it grows from (or shrinks
	// into) the other end in place.
	ra, rb := a.Rotation, b.Rotation
	ta, tb := a.Translation, b.Translation
	if a.Collapsed() {
		ra, ta = rb, tb
	} else if b.Collapsed() {
		rb, tb = ra, ta
	}

	return TRS{
		Translation: lerp3(ta, tb, t),
		Rotation:    Slerp(ra, rb, t),
		Scale:       lerp3(a.Scale, b.Scale, t),
	}
}

// Slerp is spherical interpolation along the shortest arc.
func Slerp(a, b mgl32.Quat, t float32) mgl32.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.QuatSlerp(a, b, t).Normalize()
}

// EaseOutCubic maps linear progress to 1 - (1-p)^3.
func EaseOutCubic(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	return 1 - math.Pow(1-p, 3)
}

func lerp3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
