package app

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/snjsomnath/threejsEditor-sub001/internal/geom"
)

const (
	minDistance = 5.0
	maxDistance = 800.0
	minPitch    = 0.05
	maxPitch    = math.Pi/2 - 0.05

	defaultDistance = 60.0
	defaultYaw      = math.Pi / 4
	defaultPitch    = math.Pi / 5
	fieldOfView     = 45.0 // degrees
)

// View is an orbit camera around a point on the ground plane.
type View struct {
	Target        geom.Point // ground position looked at, (x, z)
	Distance      float64
	Yaw, Pitch    float64 // radians; yaw 0 looks down -z
	Width, Height int
}

// NewView creates a new view state with default values.
func NewView(width, height int) *View {
	return &View{
		Distance: defaultDistance,
		Yaw:      defaultYaw,
		Pitch:    defaultPitch,
		Width:    width,
		Height:   height,
	}
}

// SetDistance sets the orbit radius, clamping to valid range.
func (v *View) SetDistance(d float64) {
	v.Distance = math.Max(minDistance, math.Min(maxDistance, d))
}

// Zoom scales the distance; positive steps move closer.
func (v *View) Zoom(steps float64) {
	v.SetDistance(v.Distance * math.Pow(0.87, steps))
}

// Orbit rotates around the target, keeping the camera above the ground.
func (v *View) Orbit(dYaw, dPitch float64) {
	v.Yaw = math.Mod(v.Yaw+dYaw, 2*math.Pi)
	v.Pitch = math.Max(minPitch, math.Min(maxPitch, v.Pitch+dPitch))
}

// Pan moves the target in the camera's ground frame: right along the screen
// and forward into it. Distances scale with the orbit radius.
func (v *View) Pan(right, forward float64) {
	s := v.Distance * 0.02
	sin, cos := math.Sincos(v.Yaw)
	v.Target = v.Target.Add(geom.MakePoint(
		(right*cos-forward*sin)*s,
		(-right*sin-forward*cos)*s,
	))
}

// SetViewport updates the viewport dimensions.
func (v *View) SetViewport(width, height int) {
	v.Width = width
	v.Height = height
}

// ResetTo recenters on pos at the default distance and angles.
func (v *View) ResetTo(pos geom.Point) {
	v.Target = pos
	v.Distance = defaultDistance
	v.Yaw = defaultYaw
	v.Pitch = defaultPitch
}

// Eye is the camera position in world space.
func (v *View) Eye() mgl32.Vec3 {
	sinY, cosY := math.Sincos(v.Yaw)
	sinP, cosP := math.Sincos(v.Pitch)
	return mgl32.Vec3{
		float32(v.Target.X + v.Distance*cosP*sinY),
		float32(v.Distance * sinP),
		float32(v.Target.Y + v.Distance*cosP*cosY),
	}
}

// ViewProj is the combined projection and view matrix.
func (v *View) ViewProj() mgl32.Mat4 {
	aspect := float32(1)
	if v.Width > 0 && v.Height > 0 {
		aspect = float32(v.Width) / float32(v.Height)
	}
	far := float32(v.Distance*4 + 500)
	proj := mgl32.Perspective(mgl32.DegToRad(fieldOfView), aspect, 0.5, far)
	target := mgl32.Vec3{float32(v.Target.X), 0, float32(v.Target.Y)}
	view := mgl32.LookAtV(v.Eye(), target, mgl32.Vec3{0, 1, 0})
	return proj.Mul4(view)
}
