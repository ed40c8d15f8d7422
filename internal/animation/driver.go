package animation

// FrameDriver is a Driver for a render loop that polls it once per frame and
// ticks the manager while it runs.
type FrameDriver struct {
	running bool
	starts  int
}

// Start implements Driver.
func (d *FrameDriver) Start() {
	if !d.running {
		d.starts++
	}
	d.running = true
}

// Stop implements Driver.
func (d *FrameDriver) Stop() { d.running = false }

// Running reports whether the loop should tick this frame.
func (d *FrameDriver) Running() bool { return d.running }

// Starts counts how many times the driver has been started.
func (d *FrameDriver) Starts() int { return d.starts }
