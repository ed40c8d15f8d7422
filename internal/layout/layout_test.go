package layout

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snjsomnath/threejsEditor-sub001/internal/geom"
)

const (
	refWidth     = 1.2
	refSpacing   = 1.0
	windowHeight = 1.5
)

func params(length, ratio, floorHeight float64) SolveParams {
	return SolveParams{
		EdgeLength:   length,
		RefWidth:     refWidth,
		WindowHeight: windowHeight,
		RefSpacing:   refSpacing,
		TargetRatio:  ratio,
		FloorHeight:  floorHeight,
	}
}

func TestSolveEnvelope(t *testing.T) {
	for length := 0.6; length <= 60; length += 0.35 {
		for _, ratio := range []float64{0.05, 0.2, 0.4, 0.6, 0.9} {
			r, ok := Solve(params(length, ratio, 3))
			if !ok {
				continue
			}
			require.Greater(t, r.NumWindows, 0)
			assert.InDelta(t, length, r.Span(), 1e-6, "length=%v ratio=%v", length, ratio)
			assert.GreaterOrEqual(t, r.Width, MinWidthFactor*refWidth-1e-9)
			assert.LessOrEqual(t, r.Width, MaxWidthFactor*refWidth+1e-9)
			assert.GreaterOrEqual(t, r.Spacing, MinSpacingFactor*refSpacing-1e-9)
			assert.LessOrEqual(t, r.Spacing, MaxSpacingFactor*refSpacing+1e-9)
			assert.LessOrEqual(t, r.NumWindows, MaxWindowsPerEdge)
		}
	}
}

func TestSolveWidestFit(t *testing.T) {
	tests := []struct {
		name                  string
		p                     SolveParams
		windows               int
		width, spacing, ratio float64
	}{
		// 3 - 2*0.5 = 2m fits, capped at 1.5*1.2.
		{"single capped window", params(3, 0.1, 3), 1, 1.8, 0.6, 0.3},
		{"capped width, spacing takes the rest", params(10, 0.4, 3), 4, 1.8, 0.56, 0.36},
		{"fewer windows for a lower target", params(10, 0.2, 3), 3, 1.8, 1.15, 0.27},
		{"minimum spacing", params(20, 0.4, 3), 9, 5.0 / 3, 0.5, 0.375},
		{"narrow windows at minimum spacing", params(20, 0.3, 3), 14, 12.5 / 14, 0.5, 0.3125},
		{"against window height", params(10, 0.6, 0), 7, 6.0 / 7, 0.5, 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := Solve(tt.p)
			require.True(t, ok)
			assert.Equal(t, tt.windows, r.NumWindows)
			assert.InDelta(t, tt.width, r.Width, 1e-9)
			assert.InDelta(t, tt.spacing, r.Spacing, 1e-9)
			assert.InDelta(t, tt.spacing, r.Margin, 1e-9)
			assert.InDelta(t, tt.ratio, r.Ratio, 1e-9)
			assert.InDelta(t, 1-math.Abs(tt.ratio-tt.p.TargetRatio), r.Score, 1e-9)
			assert.InDelta(t, tt.p.EdgeLength, r.Span(), 1e-9)
		})
	}
}

func TestSolveWidthIsWidestThatFits(t *testing.T) {
	// For every count the solver picks, the window is either at the maximum
	// width or exactly as wide as minimum spacing allows.
	for length := 0.6; length <= 60; length += 0.35 {
		for _, ratio := range []float64{0.1, 0.2, 0.4} {
			r, ok := Solve(params(length, ratio, 3))
			if !ok {
				continue
			}
			n := float64(r.NumWindows)
			fit := (length - (n+1)*MinSpacingFactor*refSpacing) / n
			assert.InDelta(t, math.Min(fit, MaxWidthFactor*refWidth), r.Width, 1e-9,
				"length=%v ratio=%v", length, ratio)
		}
	}
}

func TestSolveInfeasible(t *testing.T) {
	tests := []struct {
		name string
		p    SolveParams
	}{
		{"shorter than half a window", params(0.5, 0.4, 3)},
		{"zero length", params(0, 0.4, 3)},
		{"too short for spacing", params(1.0, 0.4, 3)},
		{"zero target", params(20, 0, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Solve(tt.p)
			assert.False(t, ok)
		})
	}
}

func TestRowsPerFloor(t *testing.T) {
	assert.Equal(t, 1, RowsPerFloor(3, 1.5, 1))   // 1m usable, window does not fit
	assert.Equal(t, 1, RowsPerFloor(3.5, 1.5, 1)) // 1.5m usable
	assert.Equal(t, 2, RowsPerFloor(6, 1.5, 1))   // 4m usable
	assert.Equal(t, 3, RowsPerFloor(8.5, 1.5, 1))
}

func TestRowCentersAreCentered(t *testing.T) {
	for _, fh := range []float64{3, 6, 8.5} {
		rows := rowCenters(fh, 1.5, 1)
		mid := (rows[0] + rows[len(rows)-1]) / 2
		assert.InDelta(t, fh/2, mid, 1e-9, "floor height %v", fh)
	}
}

func TestPlace(t *testing.T) {
	edge := geom.Edges([]geom.Point{
		geom.MakePoint(0, 0),
		geom.MakePoint(20, 0),
		geom.MakePoint(20, 20),
		geom.MakePoint(0, 20),
	})[0]
	r, ok := Solve(params(edge.Length, 0.4, 3))
	require.True(t, ok)

	pp := PlaceParams{
		Floors:       3,
		FloorHeight:  3,
		WindowHeight: windowHeight,
		Spacing:      refSpacing,
		Offset:       0.05,
		RefWidth:     refWidth,
	}
	placements := Place(edge, pp, r)
	require.Len(t, placements, 3*1*r.NumWindows)

	for _, p := range placements {
		// Outward normal of the z=0 edge of a counter-clockwise square.
		assert.InDelta(t, 0, p.Normal.X(), 1e-12)
		assert.InDelta(t, -1, p.Normal.Z(), 1e-12)
		assert.InDelta(t, -0.05, p.Position.Z(), 1e-9, "pushed out along the normal")
		assert.InDelta(t, float64(p.Floor)*3+1.5, p.Position.Y(), 1e-9)
		assert.InDelta(t, r.Width/refWidth, p.ScaleX, 1e-12)
		assert.InDelta(t, 1.0, p.Basis().Det(), 1e-9, "proper rotation")

		// The quaternion rotates +Z onto the normal.
		rotated := p.Rotation.Rotate(mgl64.Vec3{0, 0, 1})
		assert.True(t, rotated.ApproxEqualThreshold(p.Normal, 1e-9))
	}

	first := placements[0]
	assert.InDelta(t, r.Margin+r.Width/2, first.Position.X(), 1e-9)
	last := placements[r.NumWindows-1]
	assert.InDelta(t, 20-r.Margin-r.Width/2, last.Position.X(), 1e-9)
}

func TestPlaceNoWindows(t *testing.T) {
	edge := geom.Edge{Start: geom.MakePoint(0, 0), End: geom.MakePoint(1, 0), Normal: geom.MakePoint(0, -1), Length: 1}
	assert.Nil(t, Place(edge, PlaceParams{Floors: 2, FloorHeight: 3}, Result{}))
	assert.Nil(t, ColumnParams(1, Result{}))
}
