// Package layout solves how windows are arranged along each facade edge and
// expands that arrangement into 3D placements across floors and rows.
//
// Both stages are pure functions: the same edge and parameters always yield
// the same arrangement, so the instance pool can recompute placements on every
// edit without keeping any layout state of its own.
package layout

import (
	"math"
)

// Envelope bounds, as multiples of the reference window width and spacing.
// No arrangement outside this envelope is accepted even if it would better
// match the target ratio.
const (
	MinWidthFactor   = 0.7
	MaxWidthFactor   = 1.5
	MinSpacingFactor = 0.5
	MaxSpacingFactor = 1.5

	// MaxWindowsPerEdge caps the candidate search.
	MaxWindowsPerEdge = 50

	// MinEdgeFactor skips walls shorter than this fraction of a reference
	// window.
	MinEdgeFactor = 0.5

	boundsSlack = 1e-9
)

// SolveParams describes one facade edge and the target it should meet.
type SolveParams struct {
	EdgeLength   float64
	RefWidth     float64
	WindowHeight float64
	RefSpacing   float64
	TargetRatio  float64

	// FloorHeight is the wall height the ratio is measured against. Zero
	// measures against WindowHeight.
	FloorHeight float64
}

// Result is the solved arrangement for a single edge. Placement is centered:
// NumWindows*Width + (NumWindows-1)*Spacing + 2*Margin == EdgeLength.
type Result struct {
	NumWindows int
	Width      float64
	Spacing    float64
	Margin     float64
	Ratio      float64 // achieved window-to-wall ratio
	Score      float64 // 1 - |Ratio - target|
}

// MinEdgeLength is the shortest wall that is considered for windows at all.
func MinEdgeLength(refWidth float64) float64 {
	return MinEdgeFactor * refWidth
}

// Solve searches window counts for the arrangement whose window-to-wall ratio
// is closest to the target. Each count uses the widest window that fits with
// minimum spacing; counts whose resulting spacing leaves the envelope are
// skipped. The score is not monotonic in the count, so every count up to the
// cap is tried. Returns false when no count fits the envelope, in which case
// the edge gets no windows.
func Solve(p SolveParams) (Result, bool) {
	if p.EdgeLength <= 0 || p.RefWidth <= 0 || p.RefSpacing <= 0 || p.WindowHeight <= 0 {
		return Result{}, false
	}
	if p.TargetRatio <= 0 {
		return Result{}, false // blank wall requested
	}
	if p.EdgeLength < MinEdgeLength(p.RefWidth) {
		return Result{}, false
	}

	wallHeight := p.FloorHeight
	if wallHeight <= 0 {
		wallHeight = p.WindowHeight
	}
	wallArea := p.EdgeLength * wallHeight

	minWidth, maxWidth := MinWidthFactor*p.RefWidth, MaxWidthFactor*p.RefWidth
	minSpacing, maxSpacing := MinSpacingFactor*p.RefSpacing, MaxSpacingFactor*p.RefSpacing

	maxCount := int(math.Floor(p.EdgeLength / minWidth))
	if maxCount > MaxWindowsPerEdge {
		maxCount = MaxWindowsPerEdge
	}

	var best Result
	found := false
	for n := 1; n <= maxCount; n++ {
		count := float64(n)

		// Widest window that still leaves minimum spacing in all n+1 gaps,
		// capped at the widest allowed; the gaps share what is left.
		width := (p.EdgeLength - (count+1)*minSpacing) / count
		if width < minWidth-boundsSlack {
			continue
		}
		width = math.Min(width, maxWidth)

		spacing := (p.EdgeLength - count*width) / (count + 1)
		if spacing < minSpacing-boundsSlack || spacing > maxSpacing+boundsSlack {
			continue
		}

		ratio := count * width * p.WindowHeight / wallArea
		score := 1 - math.Abs(ratio-p.TargetRatio)
		if !found || score > best.Score {
			best = Result{
				NumWindows: n,
				Width:      width,
				Spacing:    spacing,
				Margin:     spacing,
				Ratio:      ratio,
				Score:      score,
			}
			found = true
		}
		if score >= 1 {
			break // perfect match
		}
	}
	return best, found
}

// Span returns the length the arrangement covers, margins included.
func (r Result) Span() float64 {
	if r.NumWindows == 0 {
		return 0
	}
	n := float64(r.NumWindows)
	return n*r.Width + (n-1)*r.Spacing + 2*r.Margin
}
