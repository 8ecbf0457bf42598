package ui

import (
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"

	"github.com/Shreyash39/LaserPointer/internal/raster"
	"github.com/Shreyash39/LaserPointer/internal/render"
	"github.com/Shreyash39/LaserPointer/internal/state"
)

// Overlay is a transparent drawing layer stacked over host content. The
// painted strokes are always visible; the input layer on top of them is
// hidden while the engine is inactive so pointer events reach the host.
type Overlay struct {
	widget.BaseWidget
	engine  *state.Engine
	surface *raster.Surface
	life    *render.Lifecycle
	raster  *canvas.Raster
	input   *inputLayer

	generating atomic.Bool

	mu        sync.Mutex
	vw, vh    int
	observers map[int]func(int, int)
	nextObs   int
}

var (
	_ fyne.Widget         = (*Overlay)(nil)
	_ render.ResizeSource = (*Overlay)(nil)
)

func NewOverlay(e *state.Engine, r *render.Renderer) *Overlay {
	o := &Overlay{
		engine:    e,
		surface:   raster.New(1, 1),
		observers: make(map[int]func(int, int)),
	}
	o.life = render.NewLifecycle(o.surface, r, e)
	o.raster = canvas.NewRaster(o.generate)
	o.input = newInputLayer(o)
	o.ExtendBaseWidget(o)
	return o
}

// Initialize mounts the surface on the overlay's viewport.
func (o *Overlay) Initialize() {
	o.life.OnPainted = o.refreshRaster
	o.life.Mount(o)
	o.SyncActive()
}

// Teardown detaches the surface from the viewport and stops the engine.
func (o *Overlay) Teardown() {
	o.life.Teardown()
	o.life.OnPainted = nil
	o.engine.Close()
	_ = o.surface.Close()
}

// Changed is the engine change handler.
func (o *Overlay) Changed(kind state.ChangeKind) {
	o.life.Refresh(kind)
	if kind != state.ChangeSegment {
		o.SyncActive()
	}
}

// SyncActive shows the input layer only while the engine takes input.
func (o *Overlay) SyncActive() {
	if o.engine.State().Active {
		o.input.Show()
	} else {
		o.input.Hide()
	}
}

// Surface exposes the raster for snapshots.
func (o *Overlay) Surface() *raster.Surface { return o.surface }

func (o *Overlay) refreshRaster() {
	if o.generating.Load() {
		return
	}
	o.raster.Refresh()
}

// generate is the raster callback. It receives the size in pixels, which
// drives the lifecycle's resize handling.
func (o *Overlay) generate(w, h int) image.Image {
	o.generating.Store(true)
	defer o.generating.Store(false)

	if size := o.Size(); size.Width > 0 {
		scale := float64(w) / float64(size.Width)
		changed := false
		o.life.View(func(render.Resizable) {
			changed = scale != o.surface.Scale()
			o.surface.SetScale(scale)
		})
		if changed {
			o.life.Repaint()
		}
	}
	o.setViewport(w, h)

	var img image.Image
	o.life.View(func(render.Resizable) { img = o.surface.Image() })
	return img
}

func (o *Overlay) setViewport(w, h int) {
	o.mu.Lock()
	if w == o.vw && h == o.vh {
		o.mu.Unlock()
		return
	}
	o.vw, o.vh = w, h
	fns := make([]func(int, int), 0, len(o.observers))
	for _, fn := range o.observers {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(w, h)
	}
}

func (o *Overlay) ViewportSize() (int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.vw, o.vh
}

func (o *Overlay) OnResize(fn func(int, int)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextObs
	o.nextObs++
	o.observers[id] = fn
	return func() {
		o.mu.Lock()
		delete(o.observers, id)
		o.mu.Unlock()
	}
}

func (o *Overlay) CreateRenderer() fyne.WidgetRenderer {
	return &overlayRenderer{overlay: o}
}

type overlayRenderer struct {
	overlay *Overlay
}

func (r *overlayRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.overlay.raster, r.overlay.input}
}

func (r *overlayRenderer) Layout(size fyne.Size) {
	r.overlay.raster.Resize(size)
	r.overlay.input.Resize(size)
}

func (r *overlayRenderer) MinSize() fyne.Size { return fyne.NewSize(1, 1) }

func (r *overlayRenderer) Refresh() {
	r.overlay.raster.Refresh()
	r.overlay.input.Refresh()
}

func (r *overlayRenderer) Destroy() {}

// inputLayer turns Fyne mouse and touch events into engine pointer events.
type inputLayer struct {
	widget.BaseWidget
	overlay *Overlay
}

var (
	_ desktop.Mouseable = (*inputLayer)(nil)
	_ fyne.Draggable    = (*inputLayer)(nil)
	_ mobile.Touchable  = (*inputLayer)(nil)
)

func newInputLayer(o *Overlay) *inputLayer {
	l := &inputLayer{overlay: o}
	l.ExtendBaseWidget(l)
	return l
}

func (l *inputLayer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(canvas.NewRectangle(color.Transparent))
}

func toPointer(pos fyne.Position) state.PointerEvent {
	return state.PointerEvent{Position: state.Point{X: pos.X, Y: pos.Y}}
}

// syncOrigin tells the engine where the surface sits so that absolute
// positions translate to surface coordinates.
func (l *inputLayer) syncOrigin() {
	if app := fyne.CurrentApp(); app != nil {
		pos := app.Driver().AbsolutePositionForObject(l)
		l.overlay.engine.SetOrigin(state.Point{X: pos.X, Y: pos.Y})
	}
}

func (l *inputLayer) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	l.syncOrigin()
	l.overlay.engine.PointerDown(toPointer(ev.AbsolutePosition))
}

func (l *inputLayer) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	l.overlay.engine.PointerUp()
}

func (l *inputLayer) Dragged(ev *fyne.DragEvent) {
	l.overlay.engine.PointerMove(toPointer(ev.AbsolutePosition))
}

func (l *inputLayer) DragEnd() {
	l.overlay.engine.PointerUp()
}

func (l *inputLayer) TouchDown(ev *mobile.TouchEvent) {
	l.syncOrigin()
	l.overlay.engine.PointerDown(toPointer(ev.AbsolutePosition))
}

func (l *inputLayer) TouchUp(*mobile.TouchEvent) {
	l.overlay.engine.PointerUp()
}

func (l *inputLayer) TouchCancel(*mobile.TouchEvent) {
	l.overlay.engine.PointerCancel()
}
