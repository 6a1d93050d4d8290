package sweep

import "sync"

// Status is the lifecycle state of a sweep job. Transitions are one-way:
// a running job ends exactly once as completed, errored or cancelled.
type Status int

const (
	StatusRunning Status = iota
	StatusCompleted
	StatusError
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Job tracks the status and progress of one sweep invocation. Safe for
// concurrent use by the sweep workers and a progress reader.
type Job struct {
	mu     sync.Mutex
	status Status
	total  int
	done   int
}

func newJob(total int) *Job {
	return &Job{status: StatusRunning, total: total}
}

func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Progress reports the completed fraction in [0,1].
func (j *Job) Progress() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.total == 0 {
		return 1
	}
	return float64(j.done) / float64(j.total)
}

func (j *Job) Done() (int, int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.done, j.total
}

func (j *Job) markPoint() {
	j.mu.Lock()
	j.done++
	j.mu.Unlock()
}

// finish applies the terminal status; once terminal, the status is
// immutable.
func (j *Job) finish(s Status) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status == StatusRunning {
		j.status = s
	}
}
