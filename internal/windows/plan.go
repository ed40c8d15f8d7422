package windows

import (
	"github.com/snjsomnath/threejsEditor-sub001/internal/building"
	"github.com/snjsomnath/threejsEditor-sub001/internal/config"
	"github.com/snjsomnath/threejsEditor-sub001/internal/geom"
	"github.com/snjsomnath/threejsEditor-sub001/internal/layout"
	"github.com/snjsomnath/threejsEditor-sub001/internal/memory"
	"github.com/snjsomnath/threejsEditor-sub001/internal/transform"
)

// EdgeLayout records what happened on one facade edge.
type EdgeLayout struct {
	Edge    geom.Edge
	Short   bool // below the minimum edge length, never solved
	Solved  bool
	Result  layout.Result
	Windows int // placements across all floors and rows
}

// Plan is a building's full window arrangement, ready for the pool.
type Plan struct {
	Building  building.ID
	Edges     []EdgeLayout
	Instances []memory.Instance
}

// Windows is the number of instances in the plan.
func (p Plan) Windows() int { return len(p.Instances) }

// Planner turns building definitions into instance matrices. It holds no
// state besides the configuration.
type Planner struct {
	cfg       config.WindowConfig
	overhangs bool
}

// NewPlanner returns a planner for cfg. Overhang matrices are only produced
// when the configuration enables the overhang layer.
func NewPlanner(cfg config.WindowConfig) Planner {
	return Planner{cfg: cfg, overhangs: cfg.EnableOverhangs}
}

// Plan runs the pipeline for one building: edges, per-edge solve, placement
// over floors and rows, then per-placement matrices. Degenerate footprints
// and short or infeasible edges contribute no windows.
func (pl Planner) Plan(b building.Building) Plan {
	plan := Plan{Building: b.ID}
	if b.Floors < 1 || b.FloorHeight <= 0 {
		return plan
	}

	cfg := pl.cfg
	params := transform.Params{
		RefWidth:          cfg.WindowWidth,
		RefHeight:         cfg.WindowHeight,
		GlassOffset:       cfg.GlassOffset,
		OverhangThickness: cfg.OverhangThickness,
		FrameThickness:    cfg.FrameThickness,
	}
	if pl.overhangs && b.WindowOverhang {
		params.OverhangDepth = b.WindowOverhangDepth
		if params.OverhangDepth <= 0 {
			params.OverhangDepth = cfg.OverhangDepth
		}
	}
	place := layout.PlaceParams{
		Floors:       b.Floors,
		FloorHeight:  b.FloorHeight,
		WindowHeight: cfg.WindowHeight,
		Spacing:      cfg.WindowSpacing,
		Offset:       cfg.OffsetDistance,
		RefWidth:     cfg.WindowWidth,
	}

	for _, e := range geom.Edges(b.Footprint()) {
		el := EdgeLayout{Edge: e}
		if e.Length < layout.MinEdgeLength(cfg.WindowWidth) {
			el.Short = true
			plan.Edges = append(plan.Edges, el)
			continue
		}
		el.Result, el.Solved = layout.Solve(layout.SolveParams{
			EdgeLength:   e.Length,
			RefWidth:     cfg.WindowWidth,
			WindowHeight: cfg.WindowHeight,
			RefSpacing:   cfg.WindowSpacing,
			TargetRatio:  b.WindowToWallRatio,
			FloorHeight:  b.FloorHeight,
		})
		if el.Solved {
			for _, p := range layout.Place(e, place, el.Result) {
				tr := transform.Build(p, params)
				plan.Instances = append(plan.Instances, memory.Instance{
					memory.LayerGlass:    tr.Glass,
					memory.LayerFrame:    tr.Frame,
					memory.LayerOverhang: tr.Overhang,
				})
				el.Windows++
			}
		}
		plan.Edges = append(plan.Edges, el)
	}
	return plan
}
