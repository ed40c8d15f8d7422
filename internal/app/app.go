// Package app holds the editor state the viewer drives: the buildings, the
// window service and the camera, plus the editing operations bound to keys.
package app

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/snjsomnath/threejsEditor-sub001/internal/animation"
	"github.com/snjsomnath/threejsEditor-sub001/internal/building"
	"github.com/snjsomnath/threejsEditor-sub001/internal/config"
	"github.com/snjsomnath/threejsEditor-sub001/internal/geom"
	"github.com/snjsomnath/threejsEditor-sub001/internal/memory"
	"github.com/snjsomnath/threejsEditor-sub001/internal/windows"
)

const (
	ratioStep     = 0.05
	duplicateStep = 1.5 // footprint widths between a building and its copy

	compactEveryFrames   = 60
	integrityEveryFrames = 100
)

// ErrNoBuilding is returned by edits when the scene is empty.
var ErrNoBuilding = errors.New("no building to edit")

// App encapsulates the main application state and logic.
type App struct {
	View      *View
	Buildings *BuildingManager
	Windows   *windows.Service
	Driver    *animation.FrameDriver

	frames uint64 // frames since start, never reset
}

// NewApp creates a new application instance drawing into scene. A nil scene
// keeps the pool on the CPU only.
func NewApp(scene memory.Scene, view *View, cfg config.WindowConfig, opts ...animation.Option) (*App, error) {
	driver := &animation.FrameDriver{}
	svc, err := windows.New(cfg, scene, driver, opts...)
	if err != nil {
		return nil, err
	}
	return &App{
		View:      view,
		Buildings: NewBuildingManager(),
		Windows:   svc,
		Driver:    driver,
	}, nil
}

// LoadScene adds every building in s. Buildings that fail to place are
// logged and skipped; the number of windows placed is returned.
func (app *App) LoadScene(s *building.Scene) int {
	total := 0
	for _, b := range s.Buildings {
		n, err := app.AddBuilding(b)
		total += n
		if err != nil {
			log.Warn("building not fully placed", "building", b.ID, "err", err)
		}
	}
	return total
}

// AddBuilding registers b and places its windows. A building the pool can
// only partially hold is still registered.
func (app *App) AddBuilding(b building.Building) (int, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	app.Buildings.Put(b)
	return app.Windows.AddBuildingWindows(b)
}

// Frame advances animations when the driver is running. Call once per
// rendered frame.
func (app *App) Frame() {
	app.frames++
	if app.Driver.Running() {
		app.Windows.Tick()
	}
}

// Frames is the number of frames since start.
func (app *App) Frames() uint64 { return app.frames }

// Maintain runs the periodic pool upkeep due at the current frame: orphan
// compaction every compactEveryFrames frames and an integrity check every
// integrityEveryFrames. It returns the number of slots reclaimed.
func (app *App) Maintain() (int, error) {
	reclaimed := 0
	if app.frames%compactEveryFrames == 0 {
		if pool := app.Windows.Pool(); pool.Orphans() > 0 {
			reclaimed = pool.Compact()
		}
	}
	if app.frames%integrityEveryFrames == 0 {
		if err := app.Windows.ValidateIntegrity(); err != nil {
			return reclaimed, fmt.Errorf("frame %d: %w", app.frames, err)
		}
	}
	return reclaimed, nil
}

// Closest returns the building nearest to pos.
func (app *App) Closest(pos geom.Point) (*Entry, error) {
	entries := app.Buildings.FindClosest(pos)
	if len(entries) == 0 {
		return nil, ErrNoBuilding
	}
	return entries[0], nil
}

// EditClosest applies edit to a copy of the building nearest pos and eases
// its windows to the new layout. An edit leaving the building invalid is
// rejected and nothing changes.
func (app *App) EditClosest(pos geom.Point, edit func(b *building.Building)) (*Entry, error) {
	e, err := app.Closest(pos)
	if err != nil {
		return nil, err
	}
	b := e.Building
	b.Points = append([]building.Point(nil), e.Building.Points...)
	edit(&b)
	if err := b.Validate(); err != nil {
		return e, err
	}
	updated := app.Buildings.Put(b)
	if _, err := app.Windows.UpdateBuildingWindowsSmooth(b); err != nil {
		return updated, fmt.Errorf("updating building %s: %w", b.ID, err)
	}
	return updated, nil
}

// AdjustFloors adds delta floors to the closest building, keeping at least
// one.
func (app *App) AdjustFloors(pos geom.Point, delta int) (*Entry, error) {
	return app.EditClosest(pos, func(b *building.Building) {
		b.Floors = max(1, b.Floors+delta)
	})
}

// AdjustRatio moves the closest building's window-to-wall ratio by delta
// steps, clamped to [0, 1].
func (app *App) AdjustRatio(pos geom.Point, delta int) (*Entry, error) {
	return app.EditClosest(pos, func(b *building.Building) {
		r := b.WindowToWallRatio + float64(delta)*ratioStep
		r = math.Round(r/ratioStep) * ratioStep
		b.WindowToWallRatio = math.Max(0, math.Min(1, r))
	})
}

// ToggleOverhang flips the closest building's overhang flag.
func (app *App) ToggleOverhang(pos geom.Point) (*Entry, error) {
	return app.EditClosest(pos, func(b *building.Building) {
		b.WindowOverhang = !b.WindowOverhang
	})
}

// DeleteClosest removes up to n buildings nearest pos along with their
// windows, returning the ids removed.
func (app *App) DeleteClosest(pos geom.Point, n int) []building.ID {
	var removed []building.ID
	for _, e := range app.Buildings.FindClosest(pos) {
		if len(removed) >= n {
			break
		}
		id := e.Building.ID
		app.Windows.RemoveBuildingWindows(id)
		app.Buildings.Remove(id)
		removed = append(removed, id)
	}
	return removed
}

// DuplicateClosest copies the building nearest pos, offset along +x by a
// multiple of its footprint width, under a fresh id.
func (app *App) DuplicateClosest(pos geom.Point) (*Entry, error) {
	e, err := app.Closest(pos)
	if err != nil {
		return nil, err
	}
	width := geom.Bounds(e.Building.Footprint()).W
	clone := e.Building.Clone(width*duplicateStep, 0)
	_, err = app.AddBuilding(clone)
	entry, _ := app.Buildings.Get(clone.ID)
	return entry, err
}

// Clear drops every building and window.
func (app *App) Clear() {
	app.Windows.ClearAllWindows()
	app.Buildings = NewBuildingManager()
}

// Close detaches the pool from the scene.
func (app *App) Close() {
	app.Windows.Dispose()
}
