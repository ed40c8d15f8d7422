// Package windows keeps every building's windows in one shared instance pool
// and keeps them in step with building edits.
package windows

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/snjsomnath/threejsEditor-sub001/internal/animation"
	"github.com/snjsomnath/threejsEditor-sub001/internal/building"
	"github.com/snjsomnath/threejsEditor-sub001/internal/config"
	"github.com/snjsomnath/threejsEditor-sub001/internal/debuglog"
	"github.com/snjsomnath/threejsEditor-sub001/internal/memory"
	"github.com/snjsomnath/threejsEditor-sub001/internal/mesh"
	"github.com/snjsomnath/threejsEditor-sub001/internal/transform"
)

var windowsLogger = debuglog.New("windows")

// Service owns the pool, the animation manager and the planner.
type Service struct {
	cfg     config.WindowConfig
	planner Planner
	pool    *memory.Pool
	anims   *animation.Manager
	frames  *mesh.FrameCache
}

// New builds the pool for cfg and registers its drawables with scene: glass
// and frame, plus the overhang layer when enabled. The driver is started and
// stopped by smooth updates.
func New(cfg config.WindowConfig, scene memory.Scene, driver animation.Driver, opts ...animation.Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("window config: %w", err)
	}

	// Every window shares the reference frame, scaled per instance; the side
	// borders widen and narrow with the window.
	frames := mesh.NewFrameCache()
	frame, err := frames.Get(cfg.WindowWidth, cfg.WindowHeight, cfg.FrameThickness)
	if err != nil {
		return nil, fmt.Errorf("building frame mesh: %w", err)
	}
	layers := []memory.LayerMesh{
		{Layer: memory.LayerGlass, Mesh: mesh.Quad()},
		{Layer: memory.LayerFrame, Mesh: frame},
	}
	if cfg.EnableOverhangs {
		layers = append(layers, memory.LayerMesh{Layer: memory.LayerOverhang, Mesh: mesh.Box()})
	}

	pool, err := memory.NewPool(scene, cfg.MaxWindows, layers...)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		driver = &animation.FrameDriver{}
	}
	anims := animation.NewManager(pool, driver, opts...)
	pool.OnCompact(anims.Remap)

	return &Service{
		cfg:     cfg,
		planner: NewPlanner(cfg),
		pool:    pool,
		anims:   anims,
		frames:  frames,
	}, nil
}

// Planner exposes the pipeline used for every building.
func (s *Service) Planner() Planner { return s.planner }

// FrameMesh returns the shared frame mesh drawn by the frame layer.
func (s *Service) FrameMesh() (*mesh.Mesh, error) {
	return s.frames.Get(s.cfg.WindowWidth, s.cfg.WindowHeight, s.cfg.FrameThickness)
}

// Pool exposes the instance pool, for renderers and diagnostics.
func (s *Service) Pool() *memory.Pool { return s.pool }

// Animations exposes the animation manager.
func (s *Service) Animations() *animation.Manager { return s.anims }

// AddBuildingWindows replaces the building's windows: any existing slots are
// released, then one slot per placement is appended at the tail. When the
// pool fills up the windows placed so far are kept and a wrapped
// memory.ErrCapacityExceeded is returned.
func (s *Service) AddBuildingWindows(b building.Building) (int, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	plan := s.planner.Plan(b)
	s.release(b.ID)
	return s.allocate(b.ID, plan.Instances)
}

// UpdateBuildingWindows is a full replace, the same as AddBuildingWindows.
func (s *Service) UpdateBuildingWindows(b building.Building) (int, error) {
	return s.AddBuildingWindows(b)
}

// UpdateBuildingWindowsEfficient rewrites matrices in place when it can.
// With the same number of windows every slot is overwritten; with fewer the
// leading slots are overwritten and the rest hidden, leaving orphans for the
// next compaction; with more the building is re-added.
func (s *Service) UpdateBuildingWindowsEfficient(b building.Building) (int, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	plan := s.planner.Plan(b)
	slots := s.pool.Slots(b.ID)
	if len(plan.Instances) > len(slots) {
		s.release(b.ID)
		return s.allocate(b.ID, plan.Instances)
	}

	s.anims.Cancel(b.ID)
	for i, inst := range plan.Instances {
		if err := s.pool.Write(slots[i], inst); err != nil {
			return i, fmt.Errorf("updating building %s: %w", b.ID, err)
		}
	}
	if len(plan.Instances) < len(slots) {
		s.pool.Truncate(b.ID, len(plan.Instances))
	}
	windowsLogger.Debugf("building %s updated in place (%d windows, %d before)", b.ID, len(plan.Instances), len(slots))
	return len(plan.Instances), nil
}

// UpdateBuildingWindowsSmooth is UpdateBuildingWindowsEfficient with the
// in-place rewrites eased over the configured duration. Surplus slots shrink
// to nothing and are truncated when the animation completes; new windows are
// appended directly.
func (s *Service) UpdateBuildingWindowsSmooth(b building.Building) (int, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	plan := s.planner.Plan(b)
	slots := s.pool.Slots(b.ID)
	want := len(plan.Instances)

	// Start from wherever the slots are now, mid-animation included.
	current := make([]memory.Instance, len(slots))
	for i, slot := range slots {
		current[i] = s.pool.Read(slot)
	}
	targets := make([]memory.Instance, len(slots))
	for i := range slots {
		if i < want {
			targets[i] = plan.Instances[i]
		} else {
			targets[i] = hiddenInstance
		}
	}

	var allocErr error
	placed := min(want, len(slots))
	if want > len(slots) {
		n, err := s.allocate(b.ID, plan.Instances[len(slots):])
		placed += n
		allocErr = err
	}

	var onComplete func()
	if want < len(slots) {
		id := b.ID
		onComplete = func() { s.pool.Truncate(id, want) }
	}
	if err := s.anims.Animate(b.ID, slots, current, targets, s.cfg.AnimationDuration.Duration, onComplete); err != nil {
		return placed, err
	}
	windowsLogger.Debugf("building %s animating %d slots to %d windows", b.ID, len(slots), want)
	return placed, allocErr
}

// RemoveBuildingWindows releases the building's slots and compacts the pool.
// It returns the number of windows removed.
func (s *Service) RemoveBuildingWindows(id building.ID) int {
	return s.release(id)
}

// ClearAllWindows drops every building's windows.
func (s *Service) ClearAllWindows() {
	s.anims.CancelAll()
	s.pool.Clear()
}

// BuildingWindowCount is the number of windows the building owns.
func (s *Service) BuildingWindowCount(id building.ID) int {
	return s.pool.Count(id)
}

// TotalWindowCount is the pool's active length, the number of instances
// drawn. It includes hidden orphans awaiting compaction.
func (s *Service) TotalWindowCount() int {
	return s.pool.Len()
}

// Tick advances in-flight animations; call it once per frame.
func (s *Service) Tick() {
	s.anims.Tick()
}

// Stats returns the pool statistics.
func (s *Service) Stats() memory.Stats {
	return s.pool.Stats()
}

// ValidateIntegrity checks the pool's ownership invariant.
func (s *Service) ValidateIntegrity() error {
	return s.pool.ValidateIntegrity()
}

// Dispose cancels animations and detaches the pool from the scene.
func (s *Service) Dispose() {
	s.anims.CancelAll()
	s.pool.Dispose()
}

func (s *Service) release(id building.ID) int {
	s.anims.Cancel(id)
	return s.pool.Remove(id)
}

func (s *Service) allocate(id building.ID, instances []memory.Instance) (int, error) {
	n, err := s.pool.Allocate(id, instances)
	if err != nil {
		log.Warn("window pool full, building partially placed",
			"building", id, "placed", n, "wanted", len(instances), "capacity", s.pool.Capacity())
		return n, fmt.Errorf("adding windows for building %s: %w", id, err)
	}
	windowsLogger.Debugf("building %s allocated %d windows (%d live)", id, n, s.pool.Len())
	return n, nil
}

var hiddenInstance = memory.Instance{transform.Hidden, transform.Hidden, transform.Hidden}
