package state

import (
	"fmt"
	"image/color"
	"strconv"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// Tool selects the shape semantics of a stroke.
type Tool string

const (
	ToolFreehand  Tool = "freehand"
	ToolCircle    Tool = "circle"
	ToolUnderline Tool = "underline"
	ToolArrow     Tool = "arrow"
	ToolEraser    Tool = "eraser"
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{ToolFreehand, ToolCircle, ToolUnderline, ToolArrow, ToolEraser}

func (t Tool) Valid() bool {
	switch t {
	case ToolFreehand, ToolCircle, ToolUnderline, ToolArrow, ToolEraser:
		return true
	}
	return false
}

// Mode decides where a finished stroke ends up.
type Mode string

const (
	ModeLaser Mode = "laser"
	ModePen   Mode = "pen"
)

func (m Mode) Valid() bool {
	return m == ModeLaser || m == ModePen
}

// Color is a hex color such as "#FF3B30". It stays a string so strokes
// remain trivially serialisable.
type Color string

// Valid reports whether c parses as a hex color.
func (c Color) Valid() bool {
	_, _, err := c.parse()
	return err == nil
}

// NRGBA converts c for rendering. Unparseable colors render black.
func (c Color) NRGBA() color.NRGBA {
	rgb, alpha, err := c.parse()
	if err != nil {
		return color.NRGBA{A: 0xff}
	}
	r, g, b := rgb.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}
}

// parse accepts #RRGGBB and #RRGGBBAA.
func (c Color) parse() (colorful.Color, uint8, error) {
	s := string(c)
	alpha := uint8(0xff)
	switch len(s) {
	case 4, 7, 9:
	default:
		return colorful.Color{}, 0, fmt.Errorf("color %q: want #RGB, #RRGGBB or #RRGGBBAA", s)
	}
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:9], 16, 8)
		if err != nil {
			return colorful.Color{}, 0, err
		}
		alpha = uint8(a)
		s = s[:7]
	}
	rgb, err := colorful.Hex(s)
	return rgb, alpha, err
}

// Stroke is one continuous pointer gesture.
type Stroke struct {
	ID        string    `json:"id"`
	Tool      Tool      `json:"tool"`
	Color     Color     `json:"color"`
	Thickness float32   `json:"thickness"`
	Points    []Point   `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a copy that shares no point storage with s.
func (s Stroke) Clone() Stroke {
	s.Points = append([]Point(nil), s.Points...)
	return s
}

// State is a read-only copy of the engine's tool, style and mode fields.
type State struct {
	Active       bool
	Mode         Mode
	Tool         Tool
	Color        Color
	Thickness    float32
	Capturing    bool
	MenuPosition Point
	MenuVisible  bool
}

// Snapshot is everything a renderer needs for one repaint.
type Snapshot struct {
	Mode      Mode
	Permanent []Stroke
	Fading    []Stroke
	// Current is the in-progress stroke, nil when idle.
	Current *Stroke
}

// ChangeKind tells the render side how much needs redrawing.
type ChangeKind int

const (
	// ChangeFull requires a clear-and-redraw.
	ChangeFull ChangeKind = iota
	// ChangeSegment means only the newest segment of the current stroke is new.
	ChangeSegment
	// ChangeState is a style or mode change with nothing new to draw.
	ChangeState
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeFull:
		return "full"
	case ChangeSegment:
		return "segment"
	case ChangeState:
		return "state"
	}
	return "unknown"
}
