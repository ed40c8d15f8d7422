package windows

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snjsomnath/threejsEditor-sub001/internal/animation"
	"github.com/snjsomnath/threejsEditor-sub001/internal/building"
	"github.com/snjsomnath/threejsEditor-sub001/internal/config"
	"github.com/snjsomnath/threejsEditor-sub001/internal/memory"
	"github.com/snjsomnath/threejsEditor-sub001/internal/transform"
)

const eps = 1e-4

type recordingScene struct {
	attached map[*memory.Drawable]bool
}

func (s *recordingScene) AddInstanced(d *memory.Drawable) error {
	s.attached[d] = true
	return nil
}

func (s *recordingScene) RemoveInstanced(d *memory.Drawable) {
	delete(s.attached, d)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

type harness struct {
	svc    *Service
	scene  *recordingScene
	clock  *clock
	driver *animation.FrameDriver
}

func newHarness(t *testing.T, mutate func(*config.WindowConfig)) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.MaxWindows = 1000
	if mutate != nil {
		mutate(&cfg)
	}
	h := &harness{
		scene:  &recordingScene{attached: make(map[*memory.Drawable]bool)},
		clock:  &clock{t: time.Unix(1700000000, 0)},
		driver: &animation.FrameDriver{},
	}
	svc, err := New(cfg, h.scene, h.driver, animation.WithClock(h.clock.now))
	require.NoError(t, err)
	h.svc = svc
	return h
}

func square(id building.ID, x, z, side float64, floors int, ratio float64) building.Building {
	return building.Building{
		ID: id,
		Points: []building.Point{
			{X: x, Z: z}, {X: x + side, Z: z}, {X: x + side, Z: z + side}, {X: x, Z: z + side},
		},
		Floors:            floors,
		FloorHeight:       3,
		WindowToWallRatio: ratio,
	}
}

func (h *harness) matrices(id building.ID) []memory.Instance {
	var out []memory.Instance
	for _, slot := range h.svc.Pool().Slots(id) {
		out = append(out, h.svc.Pool().Read(slot))
	}
	return out
}

func TestSquareScenario(t *testing.T) {
	h := newHarness(t, nil)
	b := square("a", 0, 0, 20, 1, 0.4)

	plan := h.svc.Planner().Plan(b)
	require.Len(t, plan.Edges, 4)
	for _, e := range plan.Edges {
		require.True(t, e.Solved)
		assert.Equal(t, 9, e.Result.NumWindows)
		assert.Equal(t, 9, e.Windows)
		// Nine 5/3 m windows at minimum spacing: 22.5 m² of the 24 m² target.
		area := float64(e.Result.NumWindows) * e.Result.Width * 1.5
		assert.InDelta(t, 22.5, area, 1e-6)
	}

	n, err := h.svc.AddBuildingWindows(b)
	require.NoError(t, err)
	assert.Equal(t, 36, n)
	assert.Equal(t, 36, h.svc.BuildingWindowCount("a"))
	assert.Equal(t, 36, h.svc.TotalWindowCount())
	require.NoError(t, h.svc.ValidateIntegrity())
}

func TestAddIsIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	b := square("a", 0, 0, 20, 2, 0.4)

	_, err := h.svc.AddBuildingWindows(b)
	require.NoError(t, err)
	first := h.matrices("a")
	total := h.svc.TotalWindowCount()

	_, err = h.svc.AddBuildingWindows(b)
	require.NoError(t, err)
	assert.Equal(t, total, h.svc.TotalWindowCount())
	assert.Equal(t, first, h.matrices("a"))
	require.NoError(t, h.svc.ValidateIntegrity())
}

func TestRemovePreservesOtherBuildings(t *testing.T) {
	h := newHarness(t, nil)
	buildings := []building.Building{
		square("a", 0, 0, 20, 1, 0.4),
		square("b", 30, 0, 10, 2, 0.4),
		square("c", 0, 30, 12, 1, 0.1),
	}
	for _, b := range buildings {
		_, err := h.svc.AddBuildingWindows(b)
		require.NoError(t, err)
	}
	countA, countC := h.svc.BuildingWindowCount("a"), h.svc.BuildingWindowCount("c")
	matricesC := h.matrices("c")

	removed := h.svc.RemoveBuildingWindows("b")
	assert.Equal(t, 32, removed)
	assert.Equal(t, countA, h.svc.BuildingWindowCount("a"))
	assert.Equal(t, countC, h.svc.BuildingWindowCount("c"))
	assert.Equal(t, 0, h.svc.BuildingWindowCount("b"))
	assert.Equal(t, countA+countC, h.svc.TotalWindowCount())
	assert.Equal(t, matricesC, h.matrices("c"))

	slotsA, slotsC := h.svc.Pool().Slots("a"), h.svc.Pool().Slots("c")
	require.NotEmpty(t, slotsA)
	for _, s := range slotsC {
		assert.NotContains(t, slotsA, s)
	}
	require.NoError(t, h.svc.ValidateIntegrity())

	assert.Equal(t, 0, h.svc.RemoveBuildingWindows("b"))
}

func TestCapacityBoundary(t *testing.T) {
	h := newHarness(t, func(cfg *config.WindowConfig) { cfg.MaxWindows = 50 })

	n, err := h.svc.AddBuildingWindows(square("a", 0, 0, 20, 1, 0.4))
	require.NoError(t, err)
	assert.Equal(t, 36, n)

	n, err = h.svc.AddBuildingWindows(square("b", 30, 0, 20, 1, 0.4))
	require.ErrorIs(t, err, memory.ErrCapacityExceeded)
	assert.Equal(t, 14, n)
	assert.Equal(t, 50, h.svc.TotalWindowCount())
	assert.Equal(t, 36, h.svc.BuildingWindowCount("a"))
	assert.Equal(t, 14, h.svc.BuildingWindowCount("b"))

	_, err = h.svc.AddBuildingWindows(square("c", 60, 0, 20, 1, 0.4))
	require.ErrorIs(t, err, memory.ErrCapacityExceeded)
	assert.LessOrEqual(t, h.svc.TotalWindowCount(), 50)
	require.NoError(t, h.svc.ValidateIntegrity())

	// Freeing room lets the next building in.
	h.svc.RemoveBuildingWindows("a")
	n, err = h.svc.AddBuildingWindows(square("c", 60, 0, 20, 1, 0.4))
	require.NoError(t, err)
	assert.Equal(t, 36, n)
}

func TestEfficientUpdateSameCount(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.svc.AddBuildingWindows(square("a", 0, 0, 10, 1, 0.4))
	require.NoError(t, err)
	_, err = h.svc.AddBuildingWindows(square("b", 30, 0, 10, 1, 0.4))
	require.NoError(t, err)
	slots := h.svc.Pool().Slots("a")
	before := h.svc.Stats()

	moved := square("a", 5, 5, 10, 1, 0.4)
	n, err := h.svc.UpdateBuildingWindowsEfficient(moved)
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, slots, h.svc.Pool().Slots("a"))
	assert.Equal(t, before.CompactionEvents, h.svc.Stats().CompactionEvents)

	want := h.svc.Planner().Plan(moved).Instances
	assert.Equal(t, want, h.matrices("a"))
}

func TestEfficientUpdateFewer(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.svc.AddBuildingWindows(square("a", 0, 0, 10, 1, 0.4))
	require.NoError(t, err)
	_, err = h.svc.AddBuildingWindows(square("b", 30, 0, 10, 1, 0.4))
	require.NoError(t, err)
	require.Equal(t, 16, h.svc.BuildingWindowCount("a"))

	n, err := h.svc.UpdateBuildingWindowsEfficient(square("a", 0, 0, 10, 1, 0.2))
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, 12, h.svc.BuildingWindowCount("a"))

	// Active length is unchanged; the four surplus slots are hidden orphans.
	assert.Equal(t, 32, h.svc.TotalWindowCount())
	assert.Equal(t, 4, h.svc.Stats().OrphanedSlots)
	assert.Equal(t, transform.Hidden, h.svc.Pool().Read(12)[memory.LayerGlass])
	require.NoError(t, h.svc.ValidateIntegrity())

	// The next removal reclaims them.
	h.svc.RemoveBuildingWindows("b")
	assert.Equal(t, 12, h.svc.TotalWindowCount())
	assert.Equal(t, 0, h.svc.Stats().OrphanedSlots)
	require.NoError(t, h.svc.ValidateIntegrity())
}

func TestEfficientUpdateMore(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.svc.AddBuildingWindows(square("a", 0, 0, 10, 1, 0.2))
	require.NoError(t, err)
	_, err = h.svc.AddBuildingWindows(square("b", 30, 0, 10, 1, 0.4))
	require.NoError(t, err)

	n, err := h.svc.UpdateBuildingWindowsEfficient(square("a", 0, 0, 10, 1, 0.4))
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, 32, h.svc.TotalWindowCount())

	// Re-added at the tail, after b.
	assert.Equal(t, 16, h.svc.Pool().Slots("a")[0])
	require.NoError(t, h.svc.ValidateIntegrity())
}

func TestUpdateBuildingWindowsReplaces(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.svc.AddBuildingWindows(square("a", 0, 0, 10, 1, 0.4))
	require.NoError(t, err)
	n, err := h.svc.UpdateBuildingWindows(square("a", 0, 0, 10, 2, 0.4))
	require.NoError(t, err)
	assert.Equal(t, 32, n)
	assert.Equal(t, 32, h.svc.TotalWindowCount())
}

func TestSmoothUpdateConverges(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.svc.AddBuildingWindows(square("a", 0, 0, 10, 1, 0.4))
	require.NoError(t, err)
	slots := h.svc.Pool().Slots("a")

	moved := square("a", 2, 0, 10, 1, 0.4)
	n, err := h.svc.UpdateBuildingWindowsSmooth(moved)
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.True(t, h.driver.Running())

	h.svc.Tick()
	start := h.matrices("a")

	h.clock.t = h.clock.t.Add(config.Default().AnimationDuration.Duration / 2)
	h.svc.Tick()
	mid := h.matrices("a")
	assert.NotEqual(t, start, mid)

	h.clock.t = h.clock.t.Add(config.Default().AnimationDuration.Duration)
	h.svc.Tick()
	assert.False(t, h.driver.Running())
	assert.Equal(t, slots, h.svc.Pool().Slots("a"))
	assert.Equal(t, h.svc.Planner().Plan(moved).Instances, h.matrices("a"))
}

func TestSmoothUpdateFewerTruncatesOnCompletion(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.svc.AddBuildingWindows(square("a", 0, 0, 10, 1, 0.4))
	require.NoError(t, err)

	n, err := h.svc.UpdateBuildingWindowsSmooth(square("a", 0, 0, 10, 1, 0.2))
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	// Surplus windows shrink away before they are given up.
	assert.Equal(t, 16, h.svc.BuildingWindowCount("a"))
	h.clock.t = h.clock.t.Add(time.Hour)
	h.svc.Tick()
	assert.Equal(t, 12, h.svc.BuildingWindowCount("a"))
	assert.Equal(t, 4, h.svc.Stats().OrphanedSlots)
	require.NoError(t, h.svc.ValidateIntegrity())
}

func TestSmoothUpdateMoreAppends(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.svc.AddBuildingWindows(square("a", 0, 0, 10, 1, 0.2))
	require.NoError(t, err)

	n, err := h.svc.UpdateBuildingWindowsSmooth(square("a", 0, 0, 10, 1, 0.4))
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, 16, h.svc.BuildingWindowCount("a"))

	h.clock.t = h.clock.t.Add(time.Hour)
	h.svc.Tick()
	target := h.svc.Planner().Plan(square("a", 0, 0, 10, 1, 0.4)).Instances
	got := h.matrices("a")
	require.Len(t, got, len(target))
	for i := range target {
		for l := range target[i] {
			assert.True(t, target[i][l].ApproxEqualThreshold(got[i][l], eps), "window %d layer %d", i, l)
		}
	}
}

func TestRemoveCancelsAnimation(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.svc.AddBuildingWindows(square("a", 0, 0, 10, 1, 0.4))
	require.NoError(t, err)
	_, err = h.svc.AddBuildingWindows(square("b", 30, 0, 10, 1, 0.4))
	require.NoError(t, err)

	_, err = h.svc.UpdateBuildingWindowsSmooth(square("b", 31, 0, 10, 1, 0.4))
	require.NoError(t, err)
	_, err = h.svc.UpdateBuildingWindowsSmooth(square("a", 1, 0, 10, 1, 0.4))
	require.NoError(t, err)

	h.svc.RemoveBuildingWindows("a")
	assert.False(t, h.svc.Animations().Animating("a"))
	assert.True(t, h.svc.Animations().Animating("b"))

	// b moved down to slots [0,16) and still lands on its target.
	h.clock.t = h.clock.t.Add(time.Hour)
	h.svc.Tick()
	assert.Equal(t, h.svc.Planner().Plan(square("b", 31, 0, 10, 1, 0.4)).Instances, h.matrices("b"))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, h.svc.Pool().Slots("b"))
}

func TestDegenerateAndInvalid(t *testing.T) {
	h := newHarness(t, nil)

	drawing := building.Building{
		ID:                "d",
		Points:            []building.Point{{X: 0, Z: 0}, {X: 10, Z: 0}},
		Floors:            1,
		FloorHeight:       3,
		WindowToWallRatio: 0.4,
	}
	n, err := h.svc.AddBuildingWindows(drawing)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = h.svc.AddBuildingWindows(square("x", 0, 0, 10, 0, 0.4))
	assert.ErrorIs(t, err, building.ErrInvalid)
	assert.Equal(t, 0, h.svc.TotalWindowCount())
}

func TestShortEdgesSkipped(t *testing.T) {
	h := newHarness(t, nil)
	b := building.Building{
		ID: "notch",
		Points: []building.Point{
			{X: 0, Z: 0}, {X: 10, Z: 0}, {X: 10, Z: 10}, {X: 0.3, Z: 10}, {X: 0, Z: 9.7},
		},
		Floors:            1,
		FloorHeight:       3,
		WindowToWallRatio: 0.4,
	}
	plan := h.svc.Planner().Plan(b)
	require.Len(t, plan.Edges, 5)
	assert.True(t, plan.Edges[3].Short)
	assert.Equal(t, 0, plan.Edges[3].Windows)
	assert.Positive(t, plan.Windows())
}

func TestOverhangLayer(t *testing.T) {
	h := newHarness(t, nil)
	b := square("a", 0, 0, 10, 1, 0.4)
	b.WindowOverhang = true
	b.WindowOverhangDepth = 0.5
	_, err := h.svc.AddBuildingWindows(b)
	require.NoError(t, err)
	assert.True(t, h.svc.Pool().HasLayer(memory.LayerOverhang))
	over := transform.Decompose(h.matrices("a")[0][memory.LayerOverhang])
	assert.InDelta(t, 0.5, over.Scale.Z(), eps)

	plain := newHarness(t, func(cfg *config.WindowConfig) { cfg.EnableOverhangs = false })
	assert.False(t, plain.svc.Pool().HasLayer(memory.LayerOverhang))
	assert.Len(t, plain.scene.attached, 2)
}

func TestClearAndDispose(t *testing.T) {
	h := newHarness(t, nil)
	assert.Len(t, h.scene.attached, 3)

	_, err := h.svc.AddBuildingWindows(square("a", 0, 0, 10, 1, 0.4))
	require.NoError(t, err)
	_, err = h.svc.UpdateBuildingWindowsSmooth(square("a", 1, 0, 10, 1, 0.4))
	require.NoError(t, err)

	h.svc.ClearAllWindows()
	assert.Equal(t, 0, h.svc.TotalWindowCount())
	assert.Equal(t, 0, h.svc.BuildingWindowCount("a"))
	assert.False(t, h.driver.Running())

	h.svc.Dispose()
	assert.Empty(t, h.scene.attached)
}

func TestFrameMeshShared(t *testing.T) {
	h := newHarness(t, nil)
	frame, err := h.svc.FrameMesh()
	require.NoError(t, err)

	var drawn *memory.Drawable
	for _, d := range h.svc.Pool().Drawables() {
		if d.Layer == memory.LayerFrame {
			drawn = d
		}
	}
	require.NotNil(t, drawn)
	assert.Same(t, frame, drawn.Mesh)

	again, err := h.svc.FrameMesh()
	require.NoError(t, err)
	assert.Same(t, frame, again)
	assert.Equal(t, 1, h.svc.frames.Len())
}
