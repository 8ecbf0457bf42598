package render

import (
	"image/color"

	"github.com/Shreyash39/LaserPointer/internal/state"
)

// GlowPass is one layer of a laser stroke.
type GlowPass struct {
	// WidthScale multiplies the stroke thickness.
	WidthScale float64
	Blur       float64
	Alpha      float64
}

// DefaultGlow goes from a wide faint halo to a solid core.
var DefaultGlow = [3]GlowPass{
	{WidthScale: 3, Blur: 16, Alpha: 0.25},
	{WidthScale: 2, Blur: 8, Alpha: 0.5},
	{WidthScale: 1, Blur: 0, Alpha: 1},
}

// ShapeFunc traces the path for a stroke on s. It must not call Stroke.
type ShapeFunc func(s Surface, st state.Stroke)

// Renderer paints snapshots onto a Surface.
type Renderer struct {
	Glow   [3]GlowPass
	shapes map[state.Tool]ShapeFunc
}

// NewRenderer returns a renderer that draws every tool as its captured
// polyline, with an arrowhead added for arrows.
func NewRenderer() *Renderer {
	return &Renderer{
		Glow: DefaultGlow,
		shapes: map[state.Tool]ShapeFunc{
			state.ToolArrow: Arrow,
		},
	}
}

// SetShape overrides how strokes made with tool are traced. A nil fn
// restores the plain polyline.
func (r *Renderer) SetShape(tool state.Tool, fn ShapeFunc) {
	if fn == nil {
		delete(r.shapes, tool)
		return
	}
	r.shapes[tool] = fn
}

func (r *Renderer) shape(tool state.Tool) ShapeFunc {
	if fn, ok := r.shapes[tool]; ok {
		return fn
	}
	return Polyline
}

// Repaint clears s and draws the whole snapshot: permanent strokes, then
// fading strokes with glow, then the stroke being captured.
func (r *Renderer) Repaint(s Surface, snap state.Snapshot) {
	if s == nil {
		return
	}
	s.Clear()
	for _, st := range snap.Permanent {
		r.drawSolid(s, st, r.shape(st.Tool))
	}
	for _, st := range snap.Fading {
		r.drawGlow(s, st, r.shape(st.Tool))
	}
	if cur := snap.Current; cur != nil {
		switch state.Classify(snap.Mode, cur.Tool) {
		case state.DestErase:
			// Erasers are masks, never ink.
		case state.DestFading:
			r.drawGlow(s, *cur, r.shape(cur.Tool))
		default:
			r.drawSolid(s, *cur, r.shape(cur.Tool))
		}
	}
}

// Incremental reports whether a live stroke of tool in mode can be drawn
// segment by segment and still match its full repaint. Glowing strokes
// and custom shapes cannot: overlapping translucent caps or a shape that
// depends on the whole path need the full stroke.
func (r *Renderer) Incremental(mode state.Mode, tool state.Tool) bool {
	if state.Classify(mode, tool) == state.DestFading {
		return false
	}
	_, custom := r.shapes[tool]
	return !custom
}

// DrawSegment paints the last segment of seg on top of s. A stroke that
// will fade gets only its core pass; its glow needs a Repaint.
func (r *Renderer) DrawSegment(s Surface, mode state.Mode, seg state.Stroke) {
	if s == nil || len(seg.Points) < 2 {
		return
	}
	seg.Points = seg.Points[len(seg.Points)-2:]
	switch state.Classify(mode, seg.Tool) {
	case state.DestErase:
	case state.DestFading:
		core := r.Glow[len(r.Glow)-1]
		s.SetBlur(0)
		s.SetColor(withAlpha(seg.Color.NRGBA(), core.Alpha))
		s.SetLineWidth(float64(seg.Thickness) * core.WidthScale)
		Polyline(s, seg)
		s.Stroke()
	default:
		r.drawSolid(s, seg, Polyline)
	}
}

func (r *Renderer) drawSolid(s Surface, st state.Stroke, fn ShapeFunc) {
	if len(st.Points) < 2 {
		return
	}
	s.SetBlur(0)
	s.SetColor(st.Color.NRGBA())
	s.SetLineWidth(float64(st.Thickness))
	fn(s, st)
	s.Stroke()
}

func (r *Renderer) drawGlow(s Surface, st state.Stroke, fn ShapeFunc) {
	if len(st.Points) < 2 {
		return
	}
	base := st.Color.NRGBA()
	for _, pass := range r.Glow {
		s.SetBlur(pass.Blur)
		s.SetColor(withAlpha(base, pass.Alpha))
		s.SetLineWidth(float64(st.Thickness) * pass.WidthScale)
		fn(s, st)
		s.Stroke()
	}
	s.SetBlur(0)
}

func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	c.A = uint8(float64(c.A)*a + 0.5)
	return c
}
