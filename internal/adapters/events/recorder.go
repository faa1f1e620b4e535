package events

import "sync"

// Recorder is an EventSink that keeps the latest pipeline events for
// polling clients. The HTTP status endpoint serves its snapshot; a
// push channel to the presentation layer could replace it without
// touching the pipeline.
type Recorder struct {
	mu       sync.Mutex
	progress map[int]int
	ready    map[int]bool
	toasts   []string
}

// Keep only the most recent toasts; older ones have been seen.
const maxToasts = 10

func NewRecorder() *Recorder {
	return &Recorder{
		progress: make(map[int]int),
		ready:    make(map[int]bool),
	}
}

func (r *Recorder) Progress(day int, percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress[day] = percent
	delete(r.ready, day)
}

func (r *Recorder) Ready(day int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready[day] = true
}

func (r *Recorder) Toast(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, message)
	if len(r.toasts) > maxToasts {
		r.toasts = r.toasts[len(r.toasts)-maxToasts:]
	}
}

// Status is the poll-friendly view of recorded events.
type Status struct {
	Progress map[int]int  `json:"progress"`
	Ready    map[int]bool `json:"ready"`
	Toasts   []string     `json:"toasts"`
}

func (r *Recorder) Snapshot() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Status{
		Progress: make(map[int]int, len(r.progress)),
		Ready:    make(map[int]bool, len(r.ready)),
		Toasts:   make([]string, len(r.toasts)),
	}
	for k, v := range r.progress {
		s.Progress[k] = v
	}
	for k, v := range r.ready {
		s.Ready[k] = v
	}
	copy(s.Toasts, r.toasts)
	return s
}
