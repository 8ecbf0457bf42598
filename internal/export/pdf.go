package export

import (
	"fmt"
	"image/color"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/Shreyash39/LaserPointer/internal/render"
	"github.com/Shreyash39/LaserPointer/internal/state"
)

// pdfSurface maps render calls onto a single gofpdf page. One surface unit
// is one PDF point.
type pdfSurface struct {
	pdf     *gofpdf.Fpdf
	pending bool
}

var _ render.Surface = (*pdfSurface)(nil)

func (s *pdfSurface) Clear() {}

func (s *pdfSurface) SetColor(c color.Color) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	s.pdf.SetDrawColor(int(n.R), int(n.G), int(n.B))
	s.pdf.SetAlpha(float64(n.A)/255, "Normal")
}

func (s *pdfSurface) SetLineWidth(w float64) { s.pdf.SetLineWidth(w) }

// SetBlur is ignored: PDF strokes have hard edges.
func (s *pdfSurface) SetBlur(float64) {}

func (s *pdfSurface) MoveTo(x, y float64) {
	s.pdf.MoveTo(x, y)
	s.pending = true
}

func (s *pdfSurface) LineTo(x, y float64) { s.pdf.LineTo(x, y) }

func (s *pdfSurface) Stroke() {
	if !s.pending {
		return
	}
	s.pdf.DrawPath("D")
	s.pending = false
}

// newPage lays strokes out on a page matching the overlay's extent.
func newPage(strokes []state.Stroke, width, height float64) (*gofpdf.Fpdf, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid page size %gx%g", width, height)
	}
	// Portrait keeps Wd as the page width even for wide overlays.
	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	p.SetAutoPageBreak(false, 0)
	p.AddPage()
	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")

	render.NewRenderer().Repaint(&pdfSurface{pdf: p}, state.Snapshot{Permanent: strokes})
	return p, p.Error()
}

// WritePDF renders strokes onto a width x height page and writes it to w.
func WritePDF(w io.Writer, strokes []state.Stroke, width, height float64) error {
	p, err := newPage(strokes, width, height)
	if err != nil {
		return fmt.Errorf("export pdf: %w", err)
	}
	if err := p.Output(w); err != nil {
		return fmt.Errorf("export pdf: %w", err)
	}
	return nil
}

// PDFFile is WritePDF to the file at path.
func PDFFile(path string, strokes []state.Stroke, width, height float64) error {
	p, err := newPage(strokes, width, height)
	if err != nil {
		return fmt.Errorf("export pdf: %w", err)
	}
	if err := p.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("export pdf to %s: %w", path, err)
	}
	return nil
}
