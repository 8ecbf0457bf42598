// Package render turns engine snapshots into draw calls.
//
// Everything that touches pixels goes through the Surface interface, so the
// same Renderer paints the on-screen raster, PNG snapshots and PDF exports.
package render

import "image/color"

// Surface is a 2D path-stroking target in the style of an HTML canvas.
// A path is built with MoveTo/LineTo and painted by Stroke, which also
// starts a new path.
type Surface interface {
	Clear()
	SetColor(c color.Color)
	SetLineWidth(w float64)
	// SetBlur sets a soft-edge radius for following strokes. Surfaces
	// without blur support approximate or ignore it.
	SetBlur(radius float64)
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Stroke()
}

// Resizable is a Surface with pixel dimensions. Resizing discards the
// current contents.
type Resizable interface {
	Surface
	Size() (width, height int)
	Resize(width, height int) error
}
