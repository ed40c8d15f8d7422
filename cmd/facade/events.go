package main

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/snjsomnath/threejsEditor-sub001/internal/app"
	"github.com/snjsomnath/threejsEditor-sub001/internal/memory"
	"github.com/snjsomnath/threejsEditor-sub001/internal/report"
)

const repeatInterval = 125 * time.Millisecond // time between successive pans when pressed down

const (
	orbitPerPixel = 0.005 // radians
	panPerPixel   = 0.05  // pan units, scaled by distance in View.Pan
)

// EventHandlers manages all event handling for the application.
type EventHandlers struct {
	application *app.App
	window      *glfw.Window

	// Arrow keys pan; they do so continuously if held.
	panKeyHeld                   bool
	panDirectionX, panDirectionY float64
	lastPanTime                  time.Time

	// Mouse drag state: left pans, right orbits.
	panning, orbiting      bool
	lastMouseX, lastMouseY float64

	// Input buffer for a numeric count, consumed by the next edit key.
	inputBuffer string
}

// NewEventHandlers creates a new event handlers manager.
func NewEventHandlers(application *app.App, window *glfw.Window) *EventHandlers {
	eh := &EventHandlers{
		application: application,
		window:      window,
		lastPanTime: time.Now(),
	}
	eh.SetupCallbacks(window)
	return eh
}

// SetupCallbacks configures all GLFW event callbacks.
func (eh *EventHandlers) SetupCallbacks(window *glfw.Window) {
	window.SetKeyCallback(func(wnd *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		eh.handleKey(key, action, mods)
	})
	window.SetMouseButtonCallback(func(wnd *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		eh.handleMouseButton(button, action)
	})
	window.SetCursorPosCallback(func(wnd *glfw.Window, xpos, ypos float64) {
		eh.handleCursorPos(xpos, ypos)
	})
	window.SetScrollCallback(func(wnd *glfw.Window, _, zoomDelta float64) {
		eh.application.View.Zoom(zoomDelta)
	})
	window.SetFramebufferSizeCallback(func(wnd *glfw.Window, newW, newH int) {
		eh.application.View.SetViewport(newW, newH)
	})
}

// handleKey handles keyboard input events.
func (eh *EventHandlers) handleKey(key glfw.Key, action glfw.Action, mods glfw.ModifierKey) {
	switch key {
	case glfw.KeyUp:
		eh.handlePanKeys(action, 0, 1)
		return
	case glfw.KeyDown:
		eh.handlePanKeys(action, 0, -1)
		return
	case glfw.KeyLeft:
		eh.handlePanKeys(action, -1, 0)
		return
	case glfw.KeyRight:
		eh.handlePanKeys(action, 1, 0)
		return
	}
	if action != glfw.Press {
		return
	}

	if key >= glfw.Key0 && key <= glfw.Key9 {
		eh.inputBuffer += string(rune('0' + int(key-glfw.Key0)))
		return
	}
	if key == glfw.KeyEscape {
		eh.inputBuffer = ""
		return
	}

	shift := (mods & glfw.ModShift) != 0
	sign := 1
	if shift {
		sign = -1
	}

	a := eh.application
	target := a.View.Target
	switch key {
	case glfw.KeyF:
		eh.logEdit(a.AdjustFloors(target, sign*eh.parseCount()))
	case glfw.KeyW:
		eh.logEdit(a.AdjustRatio(target, sign*eh.parseCount()))
	case glfw.KeyO:
		eh.logEdit(a.ToggleOverhang(target))
	case glfw.KeyC:
		e, err := a.DuplicateClosest(target)
		eh.logEdit(e, err)
		if e != nil {
			a.Buildings.SetCurrent(e)
			a.View.ResetTo(e.Center)
		}
	case glfw.KeyD:
		for _, id := range a.DeleteClosest(target, eh.parseCount()) {
			log.Info("building deleted", "building", id)
		}
	case glfw.KeyX:
		reclaimed := a.Windows.Pool().Compact()
		log.Info("pool compacted", "reclaimed", reclaimed, "live", a.Windows.TotalWindowCount())
	case glfw.KeyP:
		report.Stats(os.Stdout, a.Windows.Stats())
	case glfw.KeyR:
		eh.handleResetKey()
	case glfw.KeyTab:
		eh.handleBuildingNavigation(!shift)
	case glfw.KeyEqual:
		if (mods & glfw.ModSuper) != 0 {
			a.View.Zoom(1)
		}
	case glfw.KeyMinus:
		if (mods & glfw.ModSuper) != 0 {
			a.View.Zoom(-1)
		}
	}
	eh.inputBuffer = ""
}

// logEdit logs the outcome of an edit.
func (eh *EventHandlers) logEdit(e *app.Entry, err error) {
	switch {
	case errors.Is(err, app.ErrNoBuilding):
		return
	case errors.Is(err, memory.ErrCapacityExceeded):
		log.Warn("window pool full", "building", e.Building.ID, "err", err)
	case err != nil:
		log.Error("edit rejected", "err", err)
	default:
		b := e.Building
		log.Info("building updated",
			"building", b.ID,
			"floors", b.Floors,
			"ratio", b.WindowToWallRatio,
			"overhang", b.WindowOverhang,
			"windows", eh.application.Windows.BuildingWindowCount(b.ID),
		)
	}
}

// handlePanKeys handles arrow key presses, and also releases for continuous
// panning.
func (eh *EventHandlers) handlePanKeys(action glfw.Action, dx, dy float64) {
	switch action {
	case glfw.Press:
		eh.panKeyHeld = true
		eh.panDirectionX = dx
		eh.panDirectionY = dy
		eh.application.View.Pan(dx, dy)
		eh.lastPanTime = time.Now()

	case glfw.Release:
		eh.panKeyHeld = false

	case glfw.Repeat:
		// Ignore repeat events - we handle continuous panning ourselves to
		// ensure consistent timing.
	}
}

// handleContinuousPanning handles continuous panning while pan keys are held.
func (eh *EventHandlers) handleContinuousPanning() {
	if !eh.panKeyHeld {
		return
	}

	now := time.Now()
	if now.Sub(eh.lastPanTime) < repeatInterval {
		return
	}

	eh.application.View.Pan(eh.panDirectionX, eh.panDirectionY)
	eh.lastPanTime = now
}

// handleResetKey recenters on the closest building and selects it for
// subsequent tabs/shift+tabs.
func (eh *EventHandlers) handleResetKey() {
	a := eh.application
	e, err := a.Closest(a.View.Target)
	if err != nil {
		return
	}
	a.View.ResetTo(e.Center)
	a.Buildings.SetCurrent(e)
}

// handleBuildingNavigation handles tab and shift+tab key presses.
func (eh *EventHandlers) handleBuildingNavigation(next bool) {
	e := eh.application.Buildings.Iter(next)
	if e == nil {
		return
	}
	eh.application.View.ResetTo(e.Center)
}

// handleMouseButton handles mouse button events for panning and orbiting.
func (eh *EventHandlers) handleMouseButton(button glfw.MouseButton, action glfw.Action) {
	pressed := action == glfw.Press
	switch button {
	case glfw.MouseButtonLeft:
		eh.panning = pressed
	case glfw.MouseButtonRight:
		eh.orbiting = pressed
	default:
		return
	}
	if pressed {
		eh.lastMouseX, eh.lastMouseY = eh.window.GetCursorPos()
	}
}

// handleCursorPos applies mouse drags.
func (eh *EventHandlers) handleCursorPos(xpos, ypos float64) {
	dx, dy := xpos-eh.lastMouseX, ypos-eh.lastMouseY
	eh.lastMouseX, eh.lastMouseY = xpos, ypos

	view := eh.application.View
	switch {
	case eh.orbiting:
		view.Orbit(-dx*orbitPerPixel, dy*orbitPerPixel)
	case eh.panning:
		// Drag the ground along with the cursor.
		view.Pan(-dx*panPerPixel, dy*panPerPixel)
	}
}

// parseCount consumes the input buffer as a count, defaulting to 1.
func (eh *EventHandlers) parseCount() int {
	input := eh.inputBuffer
	eh.inputBuffer = ""
	if n, err := strconv.Atoi(input); err == nil && n > 0 {
		return n
	}
	return 1
}
