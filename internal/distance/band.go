package distance

import (
	"image/color"

	"golang.org/x/image/colornames"
)

// Band is the coarse class of a face's distance from a reference face.
type Band uint8

// Distance bands.
const (
	BandSame     Band = iota // the reference face itself
	BandAdjacent             // one hop away
	BandFar                  // everything else, including unreachable
)

// String returns the band name.
func (b Band) String() string {
	switch b {
	case BandSame:
		return "same"
	case BandAdjacent:
		return "adjacent"
	default:
		return "far"
	}
}

// Classify maps a hop count to its band.
func Classify(d int) Band {
	switch d {
	case 0:
		return BandSame
	case 1:
		return BandAdjacent
	default:
		return BandFar
	}
}

// Palette assigns a display color to each band.
type Palette struct {
	Same     color.RGBA
	Adjacent color.RGBA
	Far      color.RGBA
}

// DefaultPalette returns the stock band colors.
func DefaultPalette() Palette {
	return Palette{
		Same:     colornames.Crimson,
		Adjacent: colornames.Gold,
		Far:      colornames.Seagreen,
	}
}

// Color returns the color for a band.
func (p Palette) Color(b Band) color.RGBA {
	switch b {
	case BandSame:
		return p.Same
	case BandAdjacent:
		return p.Adjacent
	default:
		return p.Far
	}
}
