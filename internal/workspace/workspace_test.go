package workspace

import (
	"context"
	"errors"
	"testing"
	"time"

	"cleargraph/internal/digitize"
	"cleargraph/internal/intake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedDigitizer blocks each call until release receives an outcome.
type gatedDigitizer struct {
	started chan struct{}
	release chan outcome
}

type outcome struct {
	res digitize.Result
	err error
}

func newGated() *gatedDigitizer {
	return &gatedDigitizer{started: make(chan struct{}, 4), release: make(chan outcome, 4)}
}

func (g *gatedDigitizer) Digitize(ctx context.Context, _ intake.Image) (digitize.Result, error) {
	g.started <- struct{}{}
	select {
	case o := <-g.release:
		return o.res, o.err
	case <-ctx.Done():
		return digitize.Result{}, ctx.Err()
	}
}

type fixedDigitizer struct {
	res digitize.Result
	err error
}

func (f fixedDigitizer) Digitize(context.Context, intake.Image) (digitize.Result, error) {
	return f.res, f.err
}

var png = intake.Image{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}

func assertInvariants(t *testing.T, s Snapshot) {
	t.Helper()
	assert.Equal(t, s.State == StateSuccess, s.Result != nil, "result present iff SUCCESS")
	assert.Equal(t, s.State == StateError, s.Error != "", "error present iff ERROR")
	assert.Equal(t, s.State == StateIdle, s.OriginalImage == "", "image empty iff IDLE")
}

func TestNewWorkspaceIsIdle(t *testing.T) {
	ws := New("id", fixedDigitizer{})
	snap := ws.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assertInvariants(t, snap)
}

func TestSubmitSuccess(t *testing.T) {
	want := digitize.Result{Title: "Circle", Explanation: "A circle.", SVGContent: "<svg></svg>"}
	ws := New("id", fixedDigitizer{res: want})

	require.NoError(t, ws.Submit(context.Background(), png))
	snap := ws.Snapshot()
	assert.Equal(t, StateSuccess, snap.State)
	assert.Equal(t, png.DataURI(), snap.OriginalImage)
	require.NotNil(t, snap.Result)
	assert.Equal(t, want, *snap.Result)
	assertInvariants(t, snap)
}

func TestSubmitFailureShowsFixedMessage(t *testing.T) {
	cause := errors.New("upstream 500: quota exceeded")
	ws := New("id", fixedDigitizer{err: cause})

	err := ws.Submit(context.Background(), png)
	assert.ErrorIs(t, err, cause)
	snap := ws.Snapshot()
	assert.Equal(t, StateError, snap.State)
	assert.Equal(t, FailureMessage, snap.Error)
	assert.NotContains(t, snap.Error, "quota")
	assertInvariants(t, snap)
}

func TestSubmitClearsPreviousOutcome(t *testing.T) {
	g := newGated()
	ws := New("id", g)
	g.release <- outcome{err: errors.New("boom")}
	_ = ws.Submit(context.Background(), png)
	require.Equal(t, StateError, ws.State())

	done := make(chan error, 1)
	go func() { done <- ws.Submit(context.Background(), png) }()
	<-g.started
	<-g.started
	snap := ws.Snapshot()
	assert.Equal(t, StateAnalyzing, snap.State)
	assert.Empty(t, snap.Error)
	assert.Nil(t, snap.Result)
	assertInvariants(t, snap)

	assert.ErrorIs(t, ws.Submit(context.Background(), png), ErrBusy)

	g.release <- outcome{res: digitize.Result{Title: "ok"}}
	require.NoError(t, <-done)
	assert.Equal(t, StateSuccess, ws.State())
}

func TestResetDiscardsLateResult(t *testing.T) {
	g := newGated()
	ws := New("id", g)

	gen, err := ws.begin(png, func() {})
	require.NoError(t, err)
	ws.Reset()
	ws.finish(gen, digitize.Result{Title: "late"}, nil)

	snap := ws.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Nil(t, snap.Result)
	assertInvariants(t, snap)
}

func TestResetCancelsInFlightAnalysis(t *testing.T) {
	g := newGated()
	ws := New("id", g)
	done := make(chan error, 1)
	go func() { done <- ws.Submit(context.Background(), png) }()
	<-g.started

	ws.Reset()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("analysis was not cancelled by Reset")
	}
	assert.Equal(t, StateIdle, ws.State())
}

func TestSnapshotIsACopy(t *testing.T) {
	ws := New("id", fixedDigitizer{res: digitize.Result{Title: "orig"}})
	require.NoError(t, ws.Submit(context.Background(), png))
	snap := ws.Snapshot()
	snap.Result.Title = "changed"
	assert.Equal(t, "orig", ws.Snapshot().Result.Title)
}
