package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(mode Mode) (*Engine, *manualScheduler) {
	sched := newManualScheduler()
	e := NewEngine(Options{
		Mode:      mode,
		Active:    true,
		Scheduler: sched,
	})
	return e, sched
}

func at(x, y float32) PointerEvent {
	return PointerEvent{Position: Point{X: x, Y: y}}
}

// gesture runs a full down, move..., up sequence through the points.
func gesture(e *Engine, pts ...Point) {
	e.PointerDown(PointerEvent{Position: pts[0]})
	for _, p := range pts[1:] {
		e.PointerMove(PointerEvent{Position: p})
	}
	e.PointerUp()
}

func TestPenStrokeCommitted(t *testing.T) {
	for _, moves := range []int{0, 1, 7} {
		t.Run(fmt.Sprintf("%d moves", moves), func(t *testing.T) {
			e, _ := newTestEngine(ModePen)

			e.PointerDown(at(0, 0))
			for i := 1; i <= moves; i++ {
				e.PointerMove(at(float32(i), float32(2*i)))
			}
			assert.True(t, e.State().Capturing)
			e.PointerUp()

			assert.False(t, e.State().Capturing)
			perm := e.Permanent()
			require.Len(t, perm, 1)
			require.Len(t, perm[0].Points, moves+1)
			for i, p := range perm[0].Points {
				assert.Equal(t, Point{X: float32(i), Y: float32(2 * i)}, p)
			}
			assert.Empty(t, e.Fading())
		})
	}
}

func TestStrokeSnapshotsStyle(t *testing.T) {
	e, _ := newTestEngine(ModePen)
	e.SetTool(ToolArrow)
	e.SetColor("#007AFF")
	e.SetThickness(9)

	e.PointerDown(at(1, 1))
	e.SetColor("#34C759")
	e.SetThickness(2)
	e.PointerMove(at(2, 2))
	e.PointerUp()

	s := e.Permanent()[0]
	assert.Equal(t, ToolArrow, s.Tool)
	assert.Equal(t, Color("#007AFF"), s.Color)
	assert.Equal(t, float32(9), s.Thickness)
	assert.NotEmpty(t, s.ID)

	st := e.State()
	assert.Equal(t, Color("#34C759"), st.Color)
	assert.Equal(t, float32(2), st.Thickness)
}

func TestInactiveIgnoresInput(t *testing.T) {
	e, _ := newTestEngine(ModePen)
	e.SetActive(false)

	gesture(e, Point{0, 0}, Point{5, 5})
	assert.Empty(t, e.Permanent())
	assert.False(t, e.State().Capturing)
}

func TestPointerMoveWithoutCapture(t *testing.T) {
	e, _ := newTestEngine(ModePen)
	gesture(e, Point{0, 0}, Point{5, 5})
	before := e.Snapshot()

	changes := 0
	e.OnChange = func(ChangeKind) { changes++ }
	e.PointerMove(at(50, 50))
	e.PointerUp()
	e.PointerCancel()

	assert.Equal(t, before, e.Snapshot())
	assert.Zero(t, changes)
}

func TestPointerDownWhileCapturingIgnored(t *testing.T) {
	e, _ := newTestEngine(ModePen)
	e.PointerDown(at(0, 0))
	e.PointerDown(at(100, 100))
	e.PointerUp()

	perm := e.Permanent()
	require.Len(t, perm, 1)
	assert.Equal(t, []Point{{0, 0}}, perm[0].Points)
}

func TestOriginTranslation(t *testing.T) {
	e, _ := newTestEngine(ModePen)
	e.SetOrigin(Point{X: 10, Y: 20})
	gesture(e, Point{15, 25}, Point{30, 40})

	assert.Equal(t, []Point{{5, 5}, {20, 20}}, e.Permanent()[0].Points)
}

func TestPointerCancelFinalises(t *testing.T) {
	e, _ := newTestEngine(ModePen)
	e.PointerDown(at(1, 1))
	e.PointerMove(at(2, 2))
	e.PointerCancel()

	assert.False(t, e.State().Capturing)
	assert.Len(t, e.Permanent(), 1)
	_, ok := e.Current()
	assert.False(t, ok)
}

func TestSetActiveFalseEndsCapture(t *testing.T) {
	e, _ := newTestEngine(ModePen)
	e.PointerDown(at(1, 1))
	e.PointerMove(at(3, 3))
	e.SetActive(false)

	st := e.State()
	assert.False(t, st.Active)
	assert.False(t, st.Capturing)
	assert.Len(t, e.Permanent(), 1)
}

func TestLaserStrokeFades(t *testing.T) {
	e, sched := newTestEngine(ModeLaser)
	gesture(e, Point{0, 0}, Point{10, 10})
	require.Len(t, e.Fading(), 1)
	assert.Empty(t, e.Permanent())

	sched.Advance(DefaultFadeDelay - time.Millisecond)
	assert.Len(t, e.Fading(), 1)

	sched.Advance(time.Millisecond)
	assert.Empty(t, e.Fading())
}

func TestFadeWindowExtendedByNewStroke(t *testing.T) {
	e, sched := newTestEngine(ModeLaser)
	gesture(e, Point{0, 0}, Point{10, 10})
	sched.Advance(600 * time.Millisecond)
	gesture(e, Point{20, 20}, Point{30, 30})
	assert.Equal(t, 1, sched.pending())

	// The first stroke's deadline has passed but the window was renewed.
	sched.Advance(400 * time.Millisecond)
	assert.Len(t, e.Fading(), 2)

	sched.Advance(599 * time.Millisecond)
	assert.Len(t, e.Fading(), 2)

	sched.Advance(time.Millisecond)
	assert.Empty(t, e.Fading())
	assert.Zero(t, sched.pending())
}

func TestFadeCheckWithoutElapsedWindowKeepsStrokes(t *testing.T) {
	e, sched := newTestEngine(ModeLaser)
	gesture(e, Point{0, 0}, Point{1, 1})

	// A check that fires early, as a coarse timer might, must not clear.
	e.mu.Lock()
	gen := e.fadeGen
	e.mu.Unlock()
	sched.now = sched.now.Add(500 * time.Millisecond)
	e.fadeCheck(gen)
	assert.Len(t, e.Fading(), 1)

	// It re-arms for the rest of the window instead of giving up.
	assert.Equal(t, 1, sched.pending())
	sched.Advance(500 * time.Millisecond)
	assert.Empty(t, e.Fading())
	assert.Zero(t, sched.pending())
}

func TestStaleFadeCheckIgnored(t *testing.T) {
	e, sched := newTestEngine(ModeLaser)
	gesture(e, Point{0, 0}, Point{1, 1})
	e.mu.Lock()
	stale := e.fadeGen
	e.mu.Unlock()
	gesture(e, Point{5, 5}, Point{6, 6})

	sched.now = sched.now.Add(2 * DefaultFadeDelay)
	e.fadeCheck(stale)
	assert.Len(t, e.Fading(), 2)
}

func TestConfiguredFadeDelay(t *testing.T) {
	sched := newManualScheduler()
	e := NewEngine(Options{Mode: ModeLaser, Active: true, Scheduler: sched, FadeDelay: 2 * time.Second})
	gesture(e, Point{0, 0}, Point{1, 1})

	sched.Advance(time.Second)
	assert.Len(t, e.Fading(), 1)
	sched.Advance(time.Second)
	assert.Empty(t, e.Fading())
}

func TestFadeDelayRaisedMidWindow(t *testing.T) {
	e, sched := newTestEngine(ModeLaser)
	gesture(e, Point{0, 0}, Point{1, 1})
	sched.Advance(300 * time.Millisecond)

	e.SetFadeDelay(2 * time.Second)
	assert.Equal(t, 1, sched.pending())

	sched.Advance(700 * time.Millisecond)
	assert.Len(t, e.Fading(), 1, "old deadline no longer applies")
	sched.Advance(999 * time.Millisecond)
	assert.Len(t, e.Fading(), 1)
	sched.Advance(time.Millisecond)
	assert.Empty(t, e.Fading())
	assert.Zero(t, sched.pending())
}

func TestFadeDelayRaisedAfterCheckScheduled(t *testing.T) {
	e, sched := newTestEngine(ModeLaser)
	gesture(e, Point{0, 0}, Point{1, 1})

	// Raised behind the engine's back, as a concurrent reload might race.
	e.mu.Lock()
	e.fadeDelay = 2 * time.Second
	e.mu.Unlock()

	sched.Advance(time.Second)
	assert.Len(t, e.Fading(), 1)
	assert.Equal(t, 1, sched.pending())
	sched.Advance(time.Second)
	assert.Empty(t, e.Fading())
}

func TestFadeDelayLoweredMidWindow(t *testing.T) {
	e, sched := newTestEngine(ModeLaser)
	gesture(e, Point{0, 0}, Point{1, 1})
	sched.Advance(300 * time.Millisecond)

	e.SetFadeDelay(500 * time.Millisecond)
	sched.Advance(199 * time.Millisecond)
	assert.Len(t, e.Fading(), 1)
	sched.Advance(time.Millisecond)
	assert.Empty(t, e.Fading())
}

func TestFadeDelayLoweredPastWindow(t *testing.T) {
	e, sched := newTestEngine(ModeLaser)
	gesture(e, Point{0, 0}, Point{1, 1})
	sched.Advance(800 * time.Millisecond)

	// The window is already over under the new delay: the next tick clears.
	e.SetFadeDelay(100 * time.Millisecond)
	sched.Advance(0)
	assert.Empty(t, e.Fading())
}

func TestFadeDelayChangeWhileIdleSchedulesNothing(t *testing.T) {
	e, sched := newTestEngine(ModeLaser)
	e.SetFadeDelay(3 * time.Second)
	assert.Zero(t, sched.pending())

	gesture(e, Point{0, 0}, Point{1, 1})
	sched.Advance(3 * time.Second)
	assert.Empty(t, e.Fading())
}

func TestModeSwitchFlushesFading(t *testing.T) {
	e, sched := newTestEngine(ModeLaser)
	gesture(e, Point{0, 0}, Point{10, 10})
	require.Len(t, e.Fading(), 1)

	var kinds []ChangeKind
	e.OnChange = func(k ChangeKind) { kinds = append(kinds, k) }
	e.SetMode(ModePen)

	assert.Empty(t, e.Fading())
	assert.Zero(t, sched.pending())
	assert.Equal(t, []ChangeKind{ChangeFull}, kinds)

	// Pen strokes now land in the permanent collection.
	gesture(e, Point{0, 0}, Point{10, 10})
	assert.Len(t, e.Permanent(), 1)
	sched.Advance(time.Hour)
	assert.Len(t, e.Permanent(), 1)
}

func TestSetSameModeIsNoop(t *testing.T) {
	e, _ := newTestEngine(ModeLaser)
	gesture(e, Point{0, 0}, Point{10, 10})
	e.SetMode(ModeLaser)
	assert.Len(t, e.Fading(), 1)
}

func TestUndo(t *testing.T) {
	e, _ := newTestEngine(ModePen)
	e.Undo()
	assert.Empty(t, e.Permanent())

	const k = 3
	for i := 0; i < k; i++ {
		gesture(e, Point{float32(i), 0}, Point{float32(i), 10})
	}
	ids := make([]string, 0, k)
	for _, s := range e.Permanent() {
		ids = append(ids, s.ID)
	}

	e.Undo()
	perm := e.Permanent()
	require.Len(t, perm, k-1)
	assert.Equal(t, ids[:k-1], []string{perm[0].ID, perm[1].ID})

	for i := 0; i < k; i++ {
		e.Undo()
	}
	assert.Empty(t, e.Permanent())
}

func TestUndoLeavesFading(t *testing.T) {
	e, _ := newTestEngine(ModeLaser)
	gesture(e, Point{0, 0}, Point{1, 1})
	e.Undo()
	assert.Len(t, e.Fading(), 1)
}

func TestClear(t *testing.T) {
	e, sched := newTestEngine(ModePen)
	gesture(e, Point{0, 0}, Point{1, 1})
	e.SetMode(ModeLaser)
	gesture(e, Point{2, 2}, Point{3, 3})
	require.Equal(t, 1, sched.pending())

	e.Clear()
	assert.Empty(t, e.Permanent())
	assert.Empty(t, e.Fading())
	assert.Zero(t, sched.pending())

	e.Clear()
	assert.Empty(t, e.Permanent())
	assert.Empty(t, e.Fading())
}

func TestEraseExample(t *testing.T) {
	tests := []struct {
		name    string
		eraser  Point
		removed bool
	}{
		{"near end point", Point{9, 1}, true},
		{"far away", Point{1000, 1000}, false},
		{"exactly on radius", Point{30, 0}, true},
		{"just past radius", Point{30.5, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(ModePen)
			e.SetThickness(4)
			gesture(e, Point{0, 0}, Point{10, 0})

			e.SetTool(ToolEraser)
			gesture(e, tt.eraser)

			if tt.removed {
				assert.Empty(t, e.Permanent())
			} else {
				assert.Len(t, e.Permanent(), 1)
			}
		})
	}
}

func TestEraseWholeStrokesOnly(t *testing.T) {
	e, _ := newTestEngine(ModePen)
	gesture(e, Point{0, 0}, Point{100, 0}, Point{200, 0})
	gesture(e, Point{0, 500}, Point{100, 500})
	gesture(e, Point{0, 1000}, Point{100, 1000})

	n := e.Erase([]Point{{200, 5}, {100, 990}})
	assert.Equal(t, 2, n)
	perm := e.Permanent()
	require.Len(t, perm, 1)
	assert.Equal(t, float32(500), perm[0].Points[0].Y)
}

func TestEraseMissesBetweenSamples(t *testing.T) {
	e, _ := newTestEngine(ModePen)
	gesture(e, Point{0, 0}, Point{100, 0})

	// (50, 0) sits on the segment but far from both sampled points.
	assert.Zero(t, e.Erase([]Point{{50, 0}}))
	assert.Len(t, e.Permanent(), 1)
}

func TestEraserNeverStoredOrFades(t *testing.T) {
	e, sched := newTestEngine(ModeLaser)
	gesture(e, Point{0, 0}, Point{1, 1})
	e.SetTool(ToolEraser)
	gesture(e, Point{0, 0}, Point{1, 1})

	assert.Len(t, e.Fading(), 1, "eraser must not touch laser strokes")
	assert.Empty(t, e.Permanent())
	assert.Equal(t, 1, sched.pending())
}

func TestEraseRadiusConfigurable(t *testing.T) {
	e, _ := newTestEngine(ModePen)
	e.SetEraseRadius(5)
	gesture(e, Point{0, 0}, Point{10, 0})
	assert.Zero(t, e.Erase([]Point{{10, 8}}))
	assert.Equal(t, 1, e.Erase([]Point{{10, 4}}))
}

func TestEraseRadiusChangedMidCapture(t *testing.T) {
	e, _ := newTestEngine(ModePen)
	gesture(e, Point{0, 0}, Point{10, 0})

	e.SetTool(ToolEraser)
	e.PointerDown(at(10, 8))
	e.SetEraseRadius(5)
	e.PointerUp()
	assert.Len(t, e.Permanent(), 1, "radius at pointer-up applies")

	e.PointerDown(at(10, 8))
	e.SetEraseRadius(10)
	e.PointerUp()
	assert.Empty(t, e.Permanent())
}

func TestLiveSegment(t *testing.T) {
	e, _ := newTestEngine(ModeLaser)
	_, mode, ok := e.LiveSegment()
	assert.False(t, ok)
	assert.Equal(t, ModeLaser, mode)

	e.PointerDown(at(0, 0))
	seg, _, ok := e.LiveSegment()
	require.True(t, ok)
	assert.Equal(t, []Point{{0, 0}}, seg.Points)

	e.PointerMove(at(1, 1))
	e.PointerMove(at(2, 2))
	seg, _, _ = e.LiveSegment()
	assert.Equal(t, []Point{{1, 1}, {2, 2}}, seg.Points)

	seg.Points[0] = Point{99, 99}
	cur, _ := e.Current()
	assert.Equal(t, Point{1, 1}, cur.Points[1], "segment is a copy")
}

func TestInvalidSettersIgnored(t *testing.T) {
	e, _ := newTestEngine(ModePen)
	before := e.State()

	e.SetMode("ink")
	e.SetTool("lasso")
	e.SetColor("not-a-color")
	e.SetThickness(0)
	e.SetThickness(-3)

	assert.Equal(t, before, e.State())
}

func TestChangeKinds(t *testing.T) {
	e, _ := newTestEngine(ModePen)
	var kinds []ChangeKind
	e.OnChange = func(k ChangeKind) { kinds = append(kinds, k) }

	e.PointerDown(at(0, 0))
	e.PointerMove(at(1, 1))
	e.PointerUp()
	e.SetColor("#1C1C1E")
	e.Undo()

	assert.Equal(t, []ChangeKind{ChangeSegment, ChangeSegment, ChangeFull, ChangeState, ChangeFull}, kinds)
}

func TestOnChangeMayReadEngine(t *testing.T) {
	e, _ := newTestEngine(ModePen)
	var seen int
	e.OnChange = func(ChangeKind) { seen = len(e.Snapshot().Permanent) }
	gesture(e, Point{0, 0}, Point{1, 1})
	assert.Equal(t, 1, seen)
}

func TestSnapshotIsCopy(t *testing.T) {
	e, _ := newTestEngine(ModePen)
	e.PointerDown(at(0, 0))
	snap := e.Snapshot()
	require.NotNil(t, snap.Current)
	snap.Current.Points[0] = Point{99, 99}

	cur, ok := e.Current()
	require.True(t, ok)
	assert.Equal(t, Point{0, 0}, cur.Points[0])
}

func TestMenuState(t *testing.T) {
	e, _ := newTestEngine(ModePen)
	assert.True(t, e.ToggleMenu())
	assert.False(t, e.ToggleMenu())
	e.SetMenuVisible(true)
	e.SetMenuPosition(Point{X: 40, Y: 60})

	st := e.State()
	assert.True(t, st.MenuVisible)
	assert.Equal(t, Point{X: 40, Y: 60}, st.MenuPosition)
}

func TestCloseCancelsFade(t *testing.T) {
	e, sched := newTestEngine(ModeLaser)
	gesture(e, Point{0, 0}, Point{1, 1})
	e.PointerDown(at(5, 5))
	e.Close()

	assert.Zero(t, sched.pending())
	st := e.State()
	assert.False(t, st.Active)
	assert.False(t, st.Capturing)

	gesture(e, Point{0, 0}, Point{1, 1})
	assert.Len(t, e.Fading(), 1)
}

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine(Options{Mode: "bogus", Tool: "bogus", Color: "bogus", Thickness: -1})
	defer e.Close()

	st := e.State()
	assert.Equal(t, ModeLaser, st.Mode)
	assert.Equal(t, ToolFreehand, st.Tool)
	assert.Equal(t, DefaultColor, st.Color)
	assert.Equal(t, DefaultThickness, st.Thickness)
	assert.False(t, st.Active)
}
