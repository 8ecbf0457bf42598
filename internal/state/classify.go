package state

// Destination is where a finished stroke goes.
type Destination int

const (
	DestPermanent Destination = iota
	DestFading
	DestErase
)

func (d Destination) String() string {
	switch d {
	case DestPermanent:
		return "permanent"
	case DestFading:
		return "fading"
	case DestErase:
		return "erase"
	}
	return "unknown"
}

// Classify maps the mode and tool active at pointer-up to a destination.
// The eraser wins over the mode.
func Classify(mode Mode, tool Tool) Destination {
	switch {
	case tool == ToolEraser:
		return DestErase
	case mode == ModeLaser:
		return DestFading
	default:
		return DestPermanent
	}
}
