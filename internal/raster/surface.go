// Package raster provides a pixel Surface backed by gogpu/gg.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log"

	"github.com/gogpu/gg"

	"github.com/Shreyash39/LaserPointer/internal/render"
)

var _ render.Resizable = (*Surface)(nil)

// Surface is a transparent RGBA canvas. Coordinates are multiplied by the
// scale factor, so callers can keep working in device-independent units.
type Surface struct {
	dc    *gg.Context
	scale float64
	width float64
	blur  float64
}

// New creates a transparent surface of the given pixel size.
func New(width, height int) *Surface {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	dc := gg.NewContext(width, height)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	return &Surface{dc: dc, scale: 1, width: 1}
}

// SetScale sets how many pixels one unit covers.
func (s *Surface) SetScale(scale float64) {
	if scale <= 0 || scale == s.scale {
		return
	}
	s.scale = scale
	s.dc.Identity()
	s.dc.Scale(scale, scale)
}

func (s *Surface) Scale() float64 { return s.scale }

func (s *Surface) Size() (int, int) {
	return s.dc.Width(), s.dc.Height()
}

func (s *Surface) Resize(width, height int) error {
	if err := s.dc.Resize(width, height); err != nil {
		return fmt.Errorf("resize raster surface: %w", err)
	}
	return nil
}

func (s *Surface) Clear() {
	s.dc.ClearPath()
	s.dc.Clear()
}

func (s *Surface) SetColor(c color.Color) { s.dc.SetColor(c) }

func (s *Surface) SetLineWidth(w float64) { s.width = w }

// SetBlur is approximated by widening the stroke: gg has no shadow blur,
// and the glow passes already fade their alpha outwards.
func (s *Surface) SetBlur(radius float64) {
	if radius < 0 {
		radius = 0
	}
	s.blur = radius
}

func (s *Surface) MoveTo(x, y float64) { s.dc.MoveTo(x, y) }

func (s *Surface) LineTo(x, y float64) { s.dc.LineTo(x, y) }

func (s *Surface) Stroke() {
	s.dc.SetLineWidth(s.width + s.blur)
	if err := s.dc.Stroke(); err != nil {
		log.Printf("[RENDER] Stroke failed: %v", err)
	}
}

// Image returns a copy of the current pixels.
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

func (s *Surface) EncodePNG(w io.Writer) error {
	if err := s.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (s *Surface) SavePNG(path string) error {
	if err := s.dc.SavePNG(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func (s *Surface) Close() error {
	return s.dc.Close()
}
