package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"trip-map-service/internal/ports"
)

// DayAll selects every scheduled day at once (the "reset" view).
const DayAll = 0

// RunContext represents one day-selection execution. It owns a
// cancellation token plus every visual handle it created, so a
// successor can tear the whole run down before starting its own work.
// At most one run's visuals are ever on the rendering surface.
type RunContext struct {
	ID  string
	Day int // DayAll or a 1-based day number

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	handles  []ports.Handle
	tornDown bool
	surface  ports.RenderSurface
}

func newRunContext(parent context.Context, day int) *RunContext {
	ctx, cancel := context.WithCancel(parent)
	return &RunContext{
		ID:     uuid.NewString(),
		Day:    day,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the run's cancellation token. Every stage checks it
// immediately before mutating shared rendering state.
func (rc *RunContext) Context() context.Context { return rc.ctx }

// Cancelled reports whether the run has been superseded or closed.
// Results arriving afterwards must be discarded, never applied.
func (rc *RunContext) Cancelled() bool { return rc.ctx.Err() != nil }

// Track records a visual created under this run. A visual tracked
// after teardown lost the race with cancellation; it is removed on the
// spot instead of leaking onto the successor's surface.
func (rc *RunContext) Track(h ports.Handle) {
	rc.mu.Lock()
	if rc.tornDown {
		surface := rc.surface
		rc.mu.Unlock()
		surface.RemoveAll([]ports.Handle{h})
		return
	}
	rc.handles = append(rc.handles, h)
	rc.mu.Unlock()
}

// TearDown cancels the run and removes every visual it created.
func (rc *RunContext) TearDown(surface ports.RenderSurface) {
	rc.cancel()

	rc.mu.Lock()
	rc.tornDown = true
	rc.surface = surface
	handles := rc.handles
	rc.handles = nil
	rc.mu.Unlock()

	if len(handles) > 0 {
		surface.RemoveAll(handles)
	}
}
