package ui

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Shreyash39/LaserPointer/internal/config"
	"github.com/Shreyash39/LaserPointer/internal/state"
)

const (
	modeLaserLabel = "Laser"
	modePenLabel   = "Pen"
)

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    state.Color
	Selected bool
	OnTapped func(state.Color)
}

func newColorSwatch(c state.Color, tapped func(state.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color.NRGBA())
	rect.CornerRadius = 14

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeWidth = 2
	border.CornerRadius = 14

	r := &swatchRenderer{swatch: s, rect: rect, border: border}
	r.Refresh()
	return r
}

type swatchRenderer struct {
	swatch *colorSwatch
	rect   *canvas.Rectangle
	border *canvas.Rectangle
}

func (r *swatchRenderer) Layout(size fyne.Size) {
	r.rect.Resize(size)
	r.border.Resize(size)
}

func (r *swatchRenderer) MinSize() fyne.Size { return fyne.NewSize(28, 28) }

func (r *swatchRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.rect, r.border}
}

func (r *swatchRenderer) Refresh() {
	r.rect.FillColor = r.swatch.Color.NRGBA()
	if r.swatch.Selected {
		r.border.StrokeColor = color.Gray{Y: 80}
	} else {
		r.border.StrokeColor = color.Gray{Y: 210}
	}
	r.rect.Refresh()
	r.border.Refresh()
}

func (r *swatchRenderer) Destroy() {}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// toolbar is the floating control panel. It only calls engine operations
// and reflects engine state.
type toolbar struct {
	engine *state.Engine

	active   *widget.Check
	modes    *widget.RadioGroup
	tools    *widget.RadioGroup
	swatches []*colorSwatch
	slider   *widget.Slider
	status   *widget.Label
	panel    *fyne.Container
	toggle   *widget.Button

	OnExport func()
}

func toolLabel(t state.Tool) string {
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

func newToolbar(e *state.Engine, palette []state.Color) *toolbar {
	tb := &toolbar{engine: e, status: widget.NewLabel("")}

	tb.active = widget.NewCheck("Draw", e.SetActive)

	tb.modes = widget.NewRadioGroup([]string{modeLaserLabel, modePenLabel}, func(s string) {
		switch s {
		case modeLaserLabel:
			e.SetMode(state.ModeLaser)
		case modePenLabel:
			e.SetMode(state.ModePen)
		}
	})
	tb.modes.Horizontal = true
	tb.modes.Required = true

	labels := make([]string, len(state.Tools))
	byLabel := make(map[string]state.Tool, len(state.Tools))
	for i, t := range state.Tools {
		labels[i] = toolLabel(t)
		byLabel[labels[i]] = t
	}
	tb.tools = widget.NewRadioGroup(labels, func(s string) {
		if t, ok := byLabel[s]; ok {
			e.SetTool(t)
		}
	})
	tb.tools.Horizontal = true
	tb.tools.Required = true

	colorBox := container.NewHBox()
	for _, c := range palette {
		sw := newColorSwatch(c, e.SetColor)
		tb.swatches = append(tb.swatches, sw)
		colorBox.Add(sw)
	}

	tb.slider = widget.NewSlider(config.MinThickness, config.MaxThickness)
	tb.slider.Step = 1
	tb.slider.OnChanged = func(v float64) { e.SetThickness(float32(v)) }
	sliderBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(160, 35)), tb.slider)

	actions := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), e.Undo),
		widget.NewToolbarAction(theme.DeleteIcon(), e.Clear),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			if tb.OnExport != nil {
				tb.OnExport()
			}
		}),
	)

	tb.panel = container.NewVBox(
		container.NewHBox(tb.active, widget.NewSeparator(), tb.modes, layout.NewSpacer(), actions),
		container.NewHBox(widget.NewLabel("Tool:"), tb.tools),
		container.NewHBox(
			widget.NewLabel("Color:"), colorBox,
			widget.NewSeparator(),
			widget.NewLabel("Thin"), sliderBox, widget.NewLabel("Thick"),
		),
	)

	tb.toggle = widget.NewButtonWithIcon("", theme.MenuIcon(), func() {
		e.ToggleMenu()
	})

	tb.sync()
	return tb
}

// sync copies engine state into the controls. Widget callbacks that fire
// as a result are harmless: they set the value the engine already has.
func (tb *toolbar) sync() {
	st := tb.engine.State()

	tb.active.SetChecked(st.Active)
	if st.Mode == state.ModePen {
		tb.modes.SetSelected(modePenLabel)
	} else {
		tb.modes.SetSelected(modeLaserLabel)
	}
	tb.tools.SetSelected(toolLabel(st.Tool))
	for _, sw := range tb.swatches {
		selected := sw.Color == st.Color
		if sw.Selected != selected {
			sw.Selected = selected
			sw.Refresh()
		}
	}
	// The slider snaps and clamps, then reports back through OnChanged.
	// A width it cannot represent is left alone rather than overwritten.
	if v := float64(st.Thickness); tb.slider.Value != v && sliderHolds(tb.slider, v) {
		tb.slider.SetValue(v)
	}
	if st.MenuVisible {
		tb.panel.Show()
	} else {
		tb.panel.Hide()
	}
	tb.status.SetText(statusText(st))
}

func sliderHolds(s *widget.Slider, v float64) bool {
	return v >= s.Min && v <= s.Max && v == math.Round(v)
}

func statusText(st state.State) string {
	if !st.Active {
		return "Overlay off"
	}
	mode := modePenLabel
	if st.Mode == state.ModeLaser {
		mode = modeLaserLabel
	}
	text := fmt.Sprintf("%s Mode Active · %s · %gpx", mode, toolLabel(st.Tool), st.Thickness)
	if st.Capturing {
		text += " · drawing"
	}
	return text
}

// content lays the panel out with the toggle and status line.
func (tb *toolbar) content() fyne.CanvasObject {
	return container.NewVBox(
		container.NewHBox(tb.toggle, tb.status, layout.NewSpacer()),
		tb.panel,
	)
}
