package types

// DiscreteColor is one of the six sticker colors, or Unknown when a sample
// could not be classified with confidence. Unknown is a valid classification
// outcome but never a committed sticker color.
type DiscreteColor uint8

const (
	ColorUnknown DiscreteColor = iota
	ColorWhite
	ColorYellow
	ColorRed
	ColorOrange
	ColorBlue
	ColorGreen
)

// String returns the lowercase color name.
func (c DiscreteColor) String() string {
	switch c {
	case ColorWhite:
		return "white"
	case ColorYellow:
		return "yellow"
	case ColorRed:
		return "red"
	case ColorOrange:
		return "orange"
	case ColorBlue:
		return "blue"
	case ColorGreen:
		return "green"
	default:
		return "unknown"
	}
}

// ColorSample is an averaged patch color with each channel normalized to [0,1].
type ColorSample struct {
	R float64
	G float64
	B float64
}

// HSV is a color in hue/saturation/value space, each component in [0,1].
// Hue is circular: 0 and 1 are the same angle.
type HSV struct {
	H float64
	S float64
	V float64
}

// HSV converts the sample to hue/saturation/value space.
// For achromatic samples (max == min) the hue is 0.
func (s ColorSample) HSV() HSV {
	max := s.R
	if s.G > max {
		max = s.G
	}
	if s.B > max {
		max = s.B
	}
	min := s.R
	if s.G < min {
		min = s.G
	}
	if s.B < min {
		min = s.B
	}

	v := max
	delta := max - min

	var sat float64
	if max > 0 {
		sat = delta / max
	}

	var h float64
	if delta > 0 {
		switch max {
		case s.R:
			h = (s.G - s.B) / delta
			if h < 0 {
				h += 6
			}
		case s.G:
			h = (s.B-s.R)/delta + 2
		default:
			h = (s.R-s.G)/delta + 4
		}
		h /= 6
	}

	return HSV{H: h, S: sat, V: v}
}

// StickersPerFace is the number of stickers on one face.
const StickersPerFace = 9

// CenterIndex is the grid position of the center sticker in a FaceReading.
const CenterIndex = 4

// FaceReading is one face's stickers in row-major order
// (index 0 = top-left, index 8 = bottom-right).
type FaceReading [StickersPerFace]DiscreteColor

// Center returns the center sticker color, which identifies the face.
func (r FaceReading) Center() DiscreteColor {
	return r[CenterIndex]
}
