// Package workspace holds the per-session state machine behind the UI: an uploaded
// image moves from IDLE through ANALYZING to SUCCESS or ERROR.
package workspace

import (
	"context"
	"errors"
	"sync"
	"time"

	"cleargraph/internal/digitize"
	"cleargraph/internal/intake"
	"cleargraph/internal/logger"
)

type State string

const (
	StateIdle      State = "IDLE"
	StateAnalyzing State = "ANALYZING"
	StateSuccess   State = "SUCCESS"
	StateError     State = "ERROR"
)

// FailureMessage is the only error text ever shown to the user.
const FailureMessage = "Something went wrong processing your image. Please try again."

var ErrBusy = errors.New("an image is already being analyzed")

// Digitizer is the part of digitize.Digitizer the workspace depends on.
type Digitizer interface {
	Digitize(ctx context.Context, img intake.Image) (digitize.Result, error)
}

// Snapshot is a read-only copy of a workspace for rendering.
type Snapshot struct {
	ID            string
	State         State
	OriginalImage string
	Result        *digitize.Result
	Error         string
	UpdatedAt     time.Time
}

type Workspace struct {
	id        string
	digitizer Digitizer

	mu         sync.Mutex
	state      State
	original   string
	result     *digitize.Result
	errMsg     string
	updatedAt  time.Time
	generation uint64
	cancel     context.CancelFunc
}

func New(id string, d Digitizer) *Workspace {
	return &Workspace{id: id, digitizer: d, state: StateIdle, updatedAt: time.Now()}
}

func (w *Workspace) ID() string { return w.id }

func (w *Workspace) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Submit analyzes img and blocks until the outcome is recorded. The returned error is
// the underlying cause; the workspace itself only keeps FailureMessage.
func (w *Workspace) Submit(ctx context.Context, img intake.Image) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	gen, err := w.begin(img, cancel)
	if err != nil {
		return err
	}
	res, err := w.digitizer.Digitize(ctx, img)
	w.finish(gen, res, err)
	return err
}

// begin moves the workspace to ANALYZING and returns the generation the eventual
// result must match.
func (w *Workspace) begin(img intake.Image, cancel context.CancelFunc) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateAnalyzing {
		return 0, ErrBusy
	}
	w.generation++
	w.state = StateAnalyzing
	w.original = img.DataURI()
	w.result = nil
	w.errMsg = ""
	w.cancel = cancel
	w.updatedAt = time.Now()
	return w.generation, nil
}

func (w *Workspace) finish(gen uint64, res digitize.Result, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.generation || w.state != StateAnalyzing {
		logger.Debugf("[workspace] %s: dropping stale result of generation %d", w.id, gen)
		return
	}
	w.cancel = nil
	w.updatedAt = time.Now()
	if err != nil {
		logger.Errorf("[workspace] %s: analysis failed: %v", w.id, err)
		w.state = StateError
		w.errMsg = FailureMessage
		return
	}
	w.state = StateSuccess
	w.result = &res
}

// Reset returns to IDLE and abandons any analysis in flight.
func (w *Workspace) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.abortLocked()
	w.generation++
	w.state = StateIdle
	w.original = ""
	w.result = nil
	w.errMsg = ""
	w.updatedAt = time.Now()
}

func (w *Workspace) abort() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.abortLocked()
}

func (w *Workspace) abortLocked() {
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := Snapshot{
		ID:            w.id,
		State:         w.state,
		OriginalImage: w.original,
		Error:         w.errMsg,
		UpdatedAt:     w.updatedAt,
	}
	if w.result != nil {
		res := *w.result
		snap.Result = &res
	}
	return snap
}
