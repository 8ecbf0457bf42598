package render

import (
	"log"
	"sync"

	"github.com/Shreyash39/LaserPointer/internal/state"
)

// Model is the source of truth a Lifecycle repaints from.
type Model interface {
	Snapshot() state.Snapshot
	// LiveSegment returns the newest segment of the stroke being
	// captured and the current mode.
	LiveSegment() (state.Stroke, state.Mode, bool)
}

// ResizeSource reports the viewport extent and its changes.
type ResizeSource interface {
	ViewportSize() (width, height int)
	// OnResize registers fn and returns a function that removes it.
	OnResize(fn func(width, height int)) (cancel func())
}

// Lifecycle keeps a surface sized to the viewport and repaints it from the
// model whenever either changes.
type Lifecycle struct {
	mu       sync.Mutex
	surface  Resizable
	renderer *Renderer
	model    Model
	cancel   func()

	// OnPainted runs after every paint, outside the lock.
	OnPainted func()
}

func NewLifecycle(surface Resizable, renderer *Renderer, model Model) *Lifecycle {
	if renderer == nil {
		renderer = NewRenderer()
	}
	return &Lifecycle{surface: surface, renderer: renderer, model: model}
}

// Mount sizes the surface to src, paints it, and follows src's resizes
// until Teardown.
func (l *Lifecycle) Mount(src ResizeSource) {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.mu.Unlock()

	w, h := src.ViewportSize()
	l.Resize(w, h)
	cancel := src.OnResize(l.Resize)

	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()
}

// Teardown stops following viewport resizes.
func (l *Lifecycle) Teardown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// Resize matches the surface to the viewport and repaints everything,
// since resizing drops the old pixels.
func (l *Lifecycle) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	l.paint(func(s Resizable) {
		if err := s.Resize(width, height); err != nil {
			log.Printf("[RENDER] Resize to %dx%d failed: %v", width, height, err)
			return
		}
		l.renderer.Repaint(s, l.model.Snapshot())
	})
}

// Refresh is the engine change sink.
func (l *Lifecycle) Refresh(kind state.ChangeKind) {
	switch kind {
	case state.ChangeState:
		return
	case state.ChangeSegment:
		if l.model == nil {
			return
		}
		seg, mode, ok := l.model.LiveSegment()
		if !ok {
			return
		}
		if !l.renderer.Incremental(mode, seg.Tool) {
			l.Repaint()
			return
		}
		l.paint(func(s Resizable) { l.renderer.DrawSegment(s, mode, seg) })
	default:
		l.Repaint()
	}
}

// Repaint clears the surface and redraws the model.
func (l *Lifecycle) Repaint() {
	l.paint(func(s Resizable) { l.renderer.Repaint(s, l.model.Snapshot()) })
}

// View runs fn with the surface while no paint is in progress.
func (l *Lifecycle) View(fn func(s Resizable)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.surface == nil {
		return
	}
	fn(l.surface)
}

func (l *Lifecycle) paint(fn func(s Resizable)) {
	l.mu.Lock()
	if l.surface == nil || l.model == nil {
		l.mu.Unlock()
		return
	}
	fn(l.surface)
	l.mu.Unlock()
	if l.OnPainted != nil {
		l.OnPainted()
	}
}
