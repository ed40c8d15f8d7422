// Package animation eases instance matrices from their current values to new
// targets over a fixed duration, one independent animation per building.
package animation

import (
	"fmt"
	"sort"
	"time"

	"github.com/snjsomnath/threejsEditor-sub001/internal/building"
	"github.com/snjsomnath/threejsEditor-sub001/internal/debuglog"
	"github.com/snjsomnath/threejsEditor-sub001/internal/memory"
	"github.com/snjsomnath/threejsEditor-sub001/internal/transform"
)

var animationLogger = debuglog.New("animation")

// Writer receives interpolated instances. *memory.Pool implements it.
type Writer interface {
	Write(slot int, inst memory.Instance) error
}

// Driver is the shared per-frame clock. The manager starts it when the first
// building begins animating and stops it once the last one finishes.
type Driver interface {
	Start()
	Stop()
}

type track struct {
	slot   int
	from   [memory.NumLayers]transform.TRS
	to     [memory.NumLayers]transform.TRS
	origin memory.Instance
	target memory.Instance
}

type animation struct {
	id         building.ID
	tracks     []track
	start      time.Time
	duration   time.Duration
	onComplete func()
}

// progress is the linear fraction of the duration elapsed at now.
func (a *animation) progress(now time.Time) float64 {
	if a.duration <= 0 {
		return 1
	}
	return float64(now.Sub(a.start)) / float64(a.duration)
}

// Manager tracks in-flight animations. It is not safe for concurrent use; it
// is ticked from the render loop.
type Manager struct {
	writer  Writer
	driver  Driver
	now     func() time.Time
	active  map[building.ID]*animation
	running bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager returns a manager writing to w and driven by d.
func NewManager(w Writer, d Driver, opts ...Option) *Manager {
	m := &Manager{
		writer: w,
		driver: d,
		now:    time.Now,
		active: make(map[building.ID]*animation),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Animate eases the given slots from current to target. Any animation
// already running for the building is dropped first; the slots keep
// whatever values it last wrote. A non-positive duration writes the targets
// immediately.
func (m *Manager) Animate(
	id building.ID,
	slots []int,
	current, target []memory.Instance,
	duration time.Duration,
	onComplete func(),
) error {
	if len(slots) != len(current) || len(slots) != len(target) {
		return fmt.Errorf("animating building %s: %d slots, %d current, %d target",
			id, len(slots), len(current), len(target))
	}
	m.Cancel(id)

	a := &animation{
		id:         id,
		tracks:     make([]track, len(slots)),
		start:      m.now(),
		duration:   duration,
		onComplete: onComplete,
	}
	for i, slot := range slots {
		t := track{slot: slot, origin: current[i], target: target[i]}
		for l := range t.from {
			t.from[l] = transform.Decompose(current[i][l])
			t.to[l] = transform.Decompose(target[i][l])
		}
		a.tracks[i] = t
	}

	if duration <= 0 || len(slots) == 0 {
		m.finish(a)
		if onComplete != nil {
			onComplete()
		}
		return nil
	}

	m.active[id] = a
	animationLogger.Debugf("building %s animating %d slots over %s", id, len(slots), duration)
	if !m.running {
		m.running = true
		m.driver.Start()
		animationLogger.Debug("driver started")
	}
	return nil
}

// Cancel drops the building's in-flight animation, leaving its slots where
// the last tick put them. Other buildings are unaffected.
func (m *Manager) Cancel(id building.ID) bool {
	if _, ok := m.active[id]; !ok {
		return false
	}
	delete(m.active, id)
	animationLogger.Debugf("building %s animation cancelled", id)
	m.maybeStop()
	return true
}

// CancelAll drops every in-flight animation.
func (m *Manager) CancelAll() {
	clear(m.active)
	m.maybeStop()
}

// Animating reports whether the building has an animation in flight.
func (m *Manager) Animating(id building.ID) bool {
	_, ok := m.active[id]
	return ok
}

// Active is the number of buildings currently animating.
func (m *Manager) Active() int { return len(m.active) }

// Running reports whether the driver is started.
func (m *Manager) Running() bool { return m.running }

// Tick advances every animation to the current time.
func (m *Manager) Tick() {
	m.TickAt(m.now())
}

// TickAt advances every animation to now. Animations reaching the end write
// their exact targets, are retired, and then have their completion callbacks
// run.
func (m *Manager) TickAt(now time.Time) {
	if len(m.active) == 0 {
		return
	}

	ids := make([]building.ID, 0, len(m.active))
	for id := range m.active {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var done []func()
	for _, id := range ids {
		a := m.active[id]
		p := a.progress(now)
		if p >= 1 {
			m.finish(a)
			delete(m.active, id)
			animationLogger.Debugf("building %s animation complete", id)
			if a.onComplete != nil {
				done = append(done, a.onComplete)
			}
			continue
		}
		m.step(a, float32(transform.EaseOutCubic(p)))
	}
	m.maybeStop()

	for _, fn := range done {
		fn()
	}
}

// step writes every track at eased progress. Zero progress writes the
// starting matrices unchanged.
func (m *Manager) step(a *animation, eased float32) {
	for _, t := range a.tracks {
		if eased <= 0 {
			m.write(a.id, t.slot, t.origin)
			continue
		}
		var inst memory.Instance
		for l := range inst {
			inst[l] = transform.Interpolate(t.from[l], t.to[l], eased).Mat4()
		}
		m.write(a.id, t.slot, inst)
	}
}

func (m *Manager) finish(a *animation) {
	for _, t := range a.tracks {
		m.write(a.id, t.slot, t.target)
	}
}

func (m *Manager) write(id building.ID, slot int, inst memory.Instance) {
	if err := m.writer.Write(slot, inst); err != nil {
		animationLogger.Errorf("building %s: %v", id, err)
	}
}

// Remap rewrites in-flight slot indices after the pool compacts. Slots
// mapped to -1 stop animating; a building left with none is retired without
// its completion callback.
func (m *Manager) Remap(remap []int) {
	for id, a := range m.active {
		kept := a.tracks[:0]
		for _, t := range a.tracks {
			if t.slot >= len(remap) || remap[t.slot] < 0 {
				continue
			}
			t.slot = remap[t.slot]
			kept = append(kept, t)
		}
		a.tracks = kept
		if len(kept) == 0 {
			delete(m.active, id)
			animationLogger.Debugf("building %s animation dropped, all slots reclaimed", id)
		}
	}
	m.maybeStop()
}

func (m *Manager) maybeStop() {
	if m.running && len(m.active) == 0 {
		m.running = false
		m.driver.Stop()
		animationLogger.Debug("driver stopped")
	}
}
