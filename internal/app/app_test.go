package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snjsomnath/threejsEditor-sub001/internal/animation"
	"github.com/snjsomnath/threejsEditor-sub001/internal/building"
	"github.com/snjsomnath/threejsEditor-sub001/internal/config"
	"github.com/snjsomnath/threejsEditor-sub001/internal/geom"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestApp(t *testing.T) (*App, *clock) {
	t.Helper()
	cfg := config.Default()
	cfg.MaxWindows = 1000
	c := &clock{t: time.Unix(1700000000, 0)}
	a, err := NewApp(nil, NewView(800, 600), cfg, animation.WithClock(c.now))
	require.NoError(t, err)
	return a, c
}

// square is a side x side footprint at (x, z); side 10 at ratio 0.4 places
// four windows per edge and floor.
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

// settle runs a frame past the end of any animation.
func settle(a *App, c *clock) {
	c.advance(time.Second)
	a.Frame()
}

func TestLoadScene(t *testing.T) {
	a, _ := newTestApp(t)
	n := a.LoadScene(&building.Scene{Buildings: []building.Building{
		square("a", 0, 0, 10, 1, 0.4),
		square("b", 30, 0, 10, 2, 0.4),
	}})
	assert.Equal(t, 48, n)
	assert.Equal(t, 2, a.Buildings.Len())
	assert.Equal(t, 48, a.Windows.TotalWindowCount())
	require.NoError(t, a.Windows.ValidateIntegrity())
}

func TestLoadSceneSkipsInvalid(t *testing.T) {
	a, _ := newTestApp(t)
	bad := square("bad", 30, 0, 10, 1, 0.4)
	bad.FloorHeight = 0
	n := a.LoadScene(&building.Scene{Buildings: []building.Building{square("a", 0, 0, 10, 1, 0.4), bad}})
	assert.Equal(t, 16, n)
	_, ok := a.Buildings.Get("bad")
	assert.False(t, ok)
}

func TestAdjustRatio(t *testing.T) {
	a, c := newTestApp(t)
	_, err := a.AddBuilding(square("a", 0, 0, 10, 1, 0.2))
	require.NoError(t, err)
	require.Equal(t, 12, a.Windows.BuildingWindowCount("a"))

	e, err := a.AdjustRatio(geom.MakePoint(5, 5), 4)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, e.Building.WindowToWallRatio, 1e-9)
	assert.Equal(t, 16, a.Windows.BuildingWindowCount("a"))
	assert.True(t, a.Driver.Running())

	settle(a, c)
	assert.False(t, a.Driver.Running())

	e, err = a.AdjustRatio(geom.MakePoint(5, 5), 100)
	require.NoError(t, err)
	assert.Equal(t, 1.0, e.Building.WindowToWallRatio)
}

func TestAdjustFloors(t *testing.T) {
	a, c := newTestApp(t)
	_, err := a.AddBuilding(square("a", 0, 0, 10, 1, 0.4))
	require.NoError(t, err)

	e, err := a.AdjustFloors(geom.MakePoint(0, 0), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, e.Building.Floors)
	assert.Equal(t, 32, a.Windows.BuildingWindowCount("a"))
	settle(a, c)

	e, err = a.AdjustFloors(geom.MakePoint(0, 0), -5)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Building.Floors)

	// Surplus slots stay owned until the shrink animation completes.
	assert.Equal(t, 32, a.Windows.BuildingWindowCount("a"))
	settle(a, c)
	assert.Equal(t, 16, a.Windows.BuildingWindowCount("a"))
	assert.Equal(t, 32, a.Windows.TotalWindowCount())

	a.Windows.Pool().Compact()
	assert.Equal(t, 16, a.Windows.TotalWindowCount())
	require.NoError(t, a.Windows.ValidateIntegrity())
}

func TestToggleOverhang(t *testing.T) {
	a, c := newTestApp(t)
	_, err := a.AddBuilding(square("a", 0, 0, 10, 1, 0.4))
	require.NoError(t, err)

	e, err := a.ToggleOverhang(geom.MakePoint(5, 5))
	require.NoError(t, err)
	assert.True(t, e.Building.WindowOverhang)
	settle(a, c)
	assert.Equal(t, 16, a.Windows.BuildingWindowCount("a"))
}

func TestEditClosestRejectsInvalid(t *testing.T) {
	a, _ := newTestApp(t)
	_, err := a.AddBuilding(square("a", 0, 0, 10, 1, 0.4))
	require.NoError(t, err)

	_, err = a.EditClosest(geom.MakePoint(0, 0), func(b *building.Building) {
		b.FloorHeight = 0
		b.Points[0].X = -100
	})
	require.ErrorIs(t, err, building.ErrInvalid)

	e, ok := a.Buildings.Get("a")
	require.True(t, ok)
	assert.Equal(t, 3.0, e.Building.FloorHeight)
	assert.Equal(t, 0.0, e.Building.Points[0].X)
	assert.False(t, a.Driver.Running())
}

func TestEditEmptyScene(t *testing.T) {
	a, _ := newTestApp(t)
	_, err := a.AdjustFloors(geom.MakePoint(0, 0), 1)
	assert.ErrorIs(t, err, ErrNoBuilding)
	_, err = a.DuplicateClosest(geom.MakePoint(0, 0))
	assert.ErrorIs(t, err, ErrNoBuilding)
	assert.Empty(t, a.DeleteClosest(geom.MakePoint(0, 0), 3))
}

func TestDeleteClosest(t *testing.T) {
	a, _ := newTestApp(t)
	a.LoadScene(&building.Scene{Buildings: []building.Building{
		square("a", 0, 0, 10, 1, 0.4),
		square("b", 30, 0, 10, 1, 0.4),
		square("c", 0, 30, 10, 1, 0.4),
	}})

	// b and c are equidistant; the later one goes first.
	removed := a.DeleteClosest(geom.MakePoint(0, 0), 2)
	assert.Equal(t, []building.ID{"a", "c"}, removed)
	assert.Equal(t, 1, a.Buildings.Len())
	assert.Equal(t, 16, a.Windows.TotalWindowCount())
	assert.Equal(t, 16, a.Windows.BuildingWindowCount("b"))
	require.NoError(t, a.Windows.ValidateIntegrity())
}

func TestDuplicateClosest(t *testing.T) {
	a, _ := newTestApp(t)
	_, err := a.AddBuilding(square("a", 0, 0, 10, 1, 0.4))
	require.NoError(t, err)

	e, err := a.DuplicateClosest(geom.MakePoint(0, 0))
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.NotEqual(t, building.ID("a"), e.Building.ID)
	assert.InDelta(t, 20, e.Center.X, 1e-9)
	assert.InDelta(t, 5, e.Center.Y, 1e-9)
	assert.Equal(t, 16, a.Windows.BuildingWindowCount(e.Building.ID))
	assert.Equal(t, 32, a.Windows.TotalWindowCount())
}

func TestClear(t *testing.T) {
	a, _ := newTestApp(t)
	_, err := a.AddBuilding(square("a", 0, 0, 10, 1, 0.4))
	require.NoError(t, err)
	_, err = a.AdjustFloors(geom.MakePoint(0, 0), 1)
	require.NoError(t, err)

	a.Clear()
	assert.Equal(t, 0, a.Buildings.Len())
	assert.Equal(t, 0, a.Windows.TotalWindowCount())
	assert.False(t, a.Driver.Running())
}

func TestMaintainCompactsOnFrameCadence(t *testing.T) {
	a, _ := newTestApp(t)
	_, err := a.AddBuilding(square("a", 0, 0, 10, 1, 0.4))
	require.NoError(t, err)
	_, err = a.Windows.UpdateBuildingWindowsEfficient(square("a", 0, 0, 10, 1, 0.2))
	require.NoError(t, err)
	require.Equal(t, 4, a.Windows.Pool().Orphans())

	for range compactEveryFrames - 1 {
		a.Frame()
		reclaimed, err := a.Maintain()
		require.NoError(t, err)
		assert.Zero(t, reclaimed)
	}
	assert.Equal(t, 4, a.Windows.Pool().Orphans())

	a.Frame()
	reclaimed, err := a.Maintain()
	require.NoError(t, err)
	assert.Equal(t, 4, reclaimed)
	assert.Zero(t, a.Windows.Pool().Orphans())
	assert.Equal(t, 12, a.Windows.TotalWindowCount())

	// The count keeps running past the compaction and integrity cadences.
	for range 2 * integrityEveryFrames {
		a.Frame()
		_, err := a.Maintain()
		require.NoError(t, err)
	}
	assert.Equal(t, uint64(compactEveryFrames+2*integrityEveryFrames), a.Frames())
}
