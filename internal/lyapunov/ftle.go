package lyapunov

// defaultWindowCapacity caps the ring of completed FTLE windows.
const defaultWindowCapacity = 100

// Window is one finite-time Lyapunov sample: the exponents computed from
// the log-growth accumulated during its own interval only.
type Window struct {
	StartStep int
	EndStep   int
	Exponents [3]float64
	Duration  float64
}

// WindowManager buffers completed finite-time windows in a ring,
// discarding the oldest when over capacity. Windows close after a fixed
// number of steps, giving approximately independent per-window estimates
// for bootstrap resampling.
type WindowManager struct {
	windowSize int
	capacity   int
	dt         float64

	startStep int
	sums      [3]float64
	windows   []Window
}

func NewWindowManager(windowSize int, dt float64) *WindowManager {
	return &WindowManager{
		windowSize: windowSize,
		capacity:   defaultWindowCapacity,
		dt:         dt,
		windows:    make([]Window, 0, defaultWindowCapacity),
	}
}

// Accumulate adds one QR pass worth of log-growth at the given step and
// closes the current window once it has spanned windowSize steps.
func (w *WindowManager) Accumulate(step int, logs [3]float64) {
	for i := 0; i < 3; i++ {
		w.sums[i] += logs[i]
	}

	span := step - w.startStep
	if span < w.windowSize {
		return
	}

	duration := float64(span) * w.dt
	var exps [3]float64
	for i := 0; i < 3; i++ {
		exps[i] = w.sums[i] / duration
	}

	w.windows = append(w.windows, Window{
		StartStep: w.startStep,
		EndStep:   step,
		Exponents: exps,
		Duration:  duration,
	})
	if len(w.windows) > w.capacity {
		w.windows = w.windows[1:]
	}

	w.startStep = step
	w.sums = [3]float64{}
}

func (w *WindowManager) Count() int { return len(w.windows) }

// Windows returns a copy of the completed windows, oldest first.
func (w *WindowManager) Windows() []Window {
	out := make([]Window, len(w.windows))
	copy(out, w.windows)
	return out
}

func (w *WindowManager) Reset() {
	w.startStep = 0
	w.sums = [3]float64{}
	w.windows = w.windows[:0]
}

func (w *WindowManager) Clone() *WindowManager {
	c := NewWindowManager(w.windowSize, w.dt)
	c.startStep = w.startStep
	c.sums = w.sums
	c.windows = append(c.windows, w.windows...)
	return c
}
