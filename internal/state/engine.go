package state

import (
	"log"
	"sync"
	"time"
)

const (
	DefaultFadeDelay   = time.Second
	DefaultEraseRadius = float32(20)
	DefaultColor       = Color("#FF3B30")
	DefaultThickness   = float32(4)
)

// Options configures a new Engine. Zero fields fall back to the defaults.
type Options struct {
	FadeDelay   time.Duration
	EraseRadius float32
	Mode        Mode
	Tool        Tool
	Color       Color
	Thickness   float32
	Active      bool
	Scheduler   Scheduler
}

// PointerEvent is a mouse or touch position in viewport coordinates.
type PointerEvent struct {
	Position Point
}

// Engine owns the strokes of one overlay and every rule that mutates them.
//
// All methods are safe to call from multiple goroutines. OnChange is
// called after the engine lock has been released, so handlers may read
// the engine back.
type Engine struct {
	mu sync.Mutex

	sched       Scheduler
	ids         *idSource
	fadeDelay   time.Duration
	eraseRadius float32

	st        State
	origin    Point
	current   *Stroke
	permanent []Stroke
	fading    []Stroke

	lastActivity time.Time
	fadeTimer    Timer
	fadeGen      uint64
	closed       bool

	// OnChange is notified after every visible mutation. Set it before
	// feeding events into the engine.
	OnChange func(ChangeKind)
}

// NewEngine creates an idle engine.
func NewEngine(opts Options) *Engine {
	if opts.FadeDelay <= 0 {
		opts.FadeDelay = DefaultFadeDelay
	}
	if opts.EraseRadius <= 0 {
		opts.EraseRadius = DefaultEraseRadius
	}
	if !opts.Mode.Valid() {
		opts.Mode = ModeLaser
	}
	if !opts.Tool.Valid() {
		opts.Tool = ToolFreehand
	}
	if !opts.Color.Valid() {
		opts.Color = DefaultColor
	}
	if !(opts.Thickness > 0) {
		opts.Thickness = DefaultThickness
	}
	if opts.Scheduler == nil {
		opts.Scheduler = SystemScheduler{}
	}

	return &Engine{
		sched:       opts.Scheduler,
		ids:         newIDSource(),
		fadeDelay:   opts.FadeDelay,
		eraseRadius: opts.EraseRadius,
		st: State{
			Active:    opts.Active,
			Mode:      opts.Mode,
			Tool:      opts.Tool,
			Color:     opts.Color,
			Thickness: opts.Thickness,
		},
	}
}

// apply runs fn under the lock and notifies OnChange if fn reports a change.
func (e *Engine) apply(fn func() (ChangeKind, bool)) {
	e.mu.Lock()
	kind, changed := fn()
	e.mu.Unlock()
	if changed && e.OnChange != nil {
		e.OnChange(kind)
	}
}

// SetOrigin sets the viewport position of the surface's top-left corner.
// Event positions are translated by it.
func (e *Engine) SetOrigin(p Point) {
	e.mu.Lock()
	e.origin = p
	e.mu.Unlock()
}

func (e *Engine) PointerDown(ev PointerEvent) {
	e.apply(func() (ChangeKind, bool) {
		if e.closed || !e.st.Active || e.current != nil {
			return 0, false
		}
		p := ev.Position.Sub(e.origin)
		e.current = &Stroke{
			ID:        e.ids.next(),
			Tool:      e.st.Tool,
			Color:     e.st.Color,
			Thickness: e.st.Thickness,
			Points:    []Point{p},
			CreatedAt: e.sched.Now(),
		}
		e.st.Capturing = true
		return ChangeSegment, true
	})
}

func (e *Engine) PointerMove(ev PointerEvent) {
	e.apply(func() (ChangeKind, bool) {
		if e.current == nil {
			return 0, false
		}
		e.current.Points = append(e.current.Points, ev.Position.Sub(e.origin))
		return ChangeSegment, true
	})
}

func (e *Engine) PointerUp() {
	e.apply(e.finishLocked)
}

// PointerCancel ends a capture the host aborted, such as a cancelled
// touch or a lost window focus. The stroke is finalised like PointerUp.
func (e *Engine) PointerCancel() {
	e.apply(e.finishLocked)
}

func (e *Engine) finishLocked() (ChangeKind, bool) {
	s := e.current
	if s == nil {
		return 0, false
	}
	e.current = nil
	e.st.Capturing = false
	if len(s.Points) == 0 {
		log.Printf("[ENGINE] Dropping empty stroke %s", s.ID)
		return ChangeFull, true
	}

	switch Classify(e.st.Mode, s.Tool) {
	case DestErase:
		n := e.eraseLocked(s.Points)
		log.Printf("[ENGINE] Eraser %s removed %d strokes", s.ID, n)
	case DestFading:
		e.fading = append(e.fading, *s)
		e.armFadeLocked()
	default:
		e.permanent = append(e.permanent, *s)
	}
	return ChangeFull, true
}

// Erase removes every permanent stroke that has a point within the erase
// radius of any of the given points, and returns how many were removed.
func (e *Engine) Erase(points []Point) int {
	var n int
	e.apply(func() (ChangeKind, bool) {
		n = e.eraseLocked(points)
		return ChangeFull, n > 0
	})
	return n
}

func (e *Engine) eraseLocked(points []Point) int {
	if len(points) == 0 || len(e.permanent) == 0 {
		return 0
	}
	r := e.eraseRadius
	reach := BoundsOf(points).Inflate(r)

	kept := e.permanent[:0]
	removed := 0
	for _, s := range e.permanent {
		if reach.Overlaps(BoundsOf(s.Points)) && touches(s.Points, points, r) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	// Drop references held past the new length.
	for i := len(kept); i < len(e.permanent); i++ {
		e.permanent[i] = Stroke{}
	}
	e.permanent = kept
	return removed
}

// touches reports whether any point of a is within r of any point of b.
func touches(a, b []Point, r float32) bool {
	for _, p := range a {
		for _, q := range b {
			if Dist(p, q) <= r {
				return true
			}
		}
	}
	return false
}

// armFadeLocked restarts the shared fade window.
func (e *Engine) armFadeLocked() {
	e.lastActivity = e.sched.Now()
	e.scheduleFadeLocked(e.fadeDelay)
}

// scheduleFadeLocked replaces the pending check with one due after d,
// keeping the current window start.
func (e *Engine) scheduleFadeLocked(d time.Duration) {
	e.cancelFadeLocked()
	if d < 0 {
		d = 0
	}
	gen := e.fadeGen
	e.fadeTimer = e.sched.AfterFunc(d, func() { e.fadeCheck(gen) })
}

// cancelFadeLocked stops the pending check. Bumping the generation also
// voids a callback that is already on its way.
func (e *Engine) cancelFadeLocked() {
	if e.fadeTimer != nil {
		e.fadeTimer.Stop()
		e.fadeTimer = nil
	}
	e.fadeGen++
}

func (e *Engine) fadeCheck(gen uint64) {
	e.apply(func() (ChangeKind, bool) {
		if e.closed || gen != e.fadeGen {
			return 0, false
		}
		e.fadeTimer = nil
		if len(e.fading) == 0 {
			return 0, false
		}
		if left := e.fadeDelay - e.sched.Now().Sub(e.lastActivity); left > 0 {
			e.scheduleFadeLocked(left)
			return 0, false
		}
		log.Printf("[ENGINE] Fading out %d laser strokes", len(e.fading))
		e.fading = nil
		return ChangeFull, true
	})
}

// flushFadingLocked empties the fading collection and cancels its timer.
// It reports whether anything was visible.
func (e *Engine) flushFadingLocked() bool {
	e.cancelFadeLocked()
	had := len(e.fading) > 0
	e.fading = nil
	return had
}

// SetMode switches between laser and pen. Any laser trail is dropped.
func (e *Engine) SetMode(m Mode) {
	if !m.Valid() {
		log.Printf("[ENGINE] Ignoring unknown mode %q", m)
		return
	}
	e.apply(func() (ChangeKind, bool) {
		if e.st.Mode == m {
			return 0, false
		}
		e.st.Mode = m
		if e.flushFadingLocked() {
			return ChangeFull, true
		}
		return ChangeState, true
	})
}

func (e *Engine) SetTool(t Tool) {
	if !t.Valid() {
		log.Printf("[ENGINE] Ignoring unknown tool %q", t)
		return
	}
	e.apply(func() (ChangeKind, bool) {
		if e.st.Tool == t {
			return 0, false
		}
		e.st.Tool = t
		return ChangeState, true
	})
}

func (e *Engine) SetColor(c Color) {
	if !c.Valid() {
		log.Printf("[ENGINE] Ignoring invalid color %q", c)
		return
	}
	e.apply(func() (ChangeKind, bool) {
		if e.st.Color == c {
			return 0, false
		}
		e.st.Color = c
		return ChangeState, true
	})
}

// SetThickness sets the width of future strokes. Non-positive values are
// ignored.
func (e *Engine) SetThickness(n float32) {
	if !(n > 0) {
		log.Printf("[ENGINE] Ignoring non-positive thickness %v", n)
		return
	}
	e.apply(func() (ChangeKind, bool) {
		if e.st.Thickness == n {
			return 0, false
		}
		e.st.Thickness = n
		return ChangeState, true
	})
}

// SetActive turns pointer capture on or off. Turning it off mid-gesture
// finalises the stroke in progress.
func (e *Engine) SetActive(active bool) {
	e.apply(func() (ChangeKind, bool) {
		if e.st.Active == active {
			return 0, false
		}
		e.st.Active = active
		if !active && e.current != nil {
			return e.finishLocked()
		}
		return ChangeState, true
	})
}

func (e *Engine) SetMenuPosition(p Point) {
	e.apply(func() (ChangeKind, bool) {
		e.st.MenuPosition = p
		return ChangeState, true
	})
}

func (e *Engine) SetMenuVisible(visible bool) {
	e.apply(func() (ChangeKind, bool) {
		e.st.MenuVisible = visible
		return ChangeState, true
	})
}

// ToggleMenu flips menu visibility and returns the new value.
func (e *Engine) ToggleMenu() bool {
	var visible bool
	e.apply(func() (ChangeKind, bool) {
		e.st.MenuVisible = !e.st.MenuVisible
		visible = e.st.MenuVisible
		return ChangeState, true
	})
	return visible
}

// SetFadeDelay changes the fade window. A window already running is
// measured against the new delay.
func (e *Engine) SetFadeDelay(d time.Duration) {
	if d <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fadeDelay = d
	if e.fadeTimer != nil && len(e.fading) > 0 {
		e.scheduleFadeLocked(d - e.sched.Now().Sub(e.lastActivity))
	}
}

func (e *Engine) SetEraseRadius(r float32) {
	if !(r > 0) {
		return
	}
	e.mu.Lock()
	e.eraseRadius = r
	e.mu.Unlock()
}

// Undo removes the most recent permanent stroke.
func (e *Engine) Undo() {
	e.apply(func() (ChangeKind, bool) {
		n := len(e.permanent)
		if n == 0 {
			return 0, false
		}
		e.permanent[n-1] = Stroke{}
		e.permanent = e.permanent[:n-1]
		return ChangeFull, true
	})
}

// Clear removes every stored stroke and cancels the fade window.
func (e *Engine) Clear() {
	e.apply(func() (ChangeKind, bool) {
		e.flushFadingLocked()
		e.permanent = nil
		return ChangeFull, true
	})
}

// Close cancels the fade timer and stops accepting input. The stroke in
// progress, if any, is discarded.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelFadeLocked()
	e.closed = true
	e.current = nil
	e.st.Capturing = false
	e.st.Active = false
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st
}

// Permanent returns a copy of the permanent strokes in undo order.
func (e *Engine) Permanent() []Stroke {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneAll(e.permanent)
}

// Fading returns a copy of the laser strokes still on screen.
func (e *Engine) Fading() []Stroke {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneAll(e.fading)
}

// Current returns a copy of the in-progress stroke.
func (e *Engine) Current() (Stroke, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return Stroke{}, false
	}
	return e.current.Clone(), true
}

// LiveSegment returns the newest segment of the in-progress stroke, at most
// its last two points, together with the mode it is drawn in. It copies
// nothing else, so it is cheap to call on every pointer move.
func (e *Engine) LiveSegment() (Stroke, Mode, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return Stroke{}, e.st.Mode, false
	}
	seg := *e.current
	pts := e.current.Points
	if len(pts) > 2 {
		pts = pts[len(pts)-2:]
	}
	seg.Points = append([]Point(nil), pts...)
	return seg, e.st.Mode, true
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := Snapshot{
		Mode:      e.st.Mode,
		Permanent: cloneAll(e.permanent),
		Fading:    cloneAll(e.fading),
	}
	if e.current != nil {
		c := e.current.Clone()
		snap.Current = &c
	}
	return snap
}

func cloneAll(in []Stroke) []Stroke {
	if len(in) == 0 {
		return nil
	}
	out := make([]Stroke, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
