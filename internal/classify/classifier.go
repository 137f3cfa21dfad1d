// Package classify maps averaged color samples to discrete sticker colors
// using a weighted distance to a fixed reference palette in HSV space.
package classify

import (
	"math"

	"github.com/brunoaduarte/rubik-solver/internal/types"
)

// Distance weights. Hue dominates because sticker colors are primarily
// separated by hue; saturation and value mostly absorb lighting variation.
const (
	hueWeight        = 2.0
	saturationWeight = 1.0
	valueWeight      = 1.0
)

const (
	// DefaultRejectDistance is the weighted distance above which the nearest
	// palette entry is rejected and the sample classified Unknown.
	DefaultRejectDistance = 0.6

	// DefaultMinValue is the brightness gate: samples at or below this value
	// are specular/shadow artifacts and classify Unknown immediately.
	DefaultMinValue = 0.1
)

// Config contains classifier tuning parameters. Zero values select the
// defaults.
type Config struct {
	RejectDistance float64
	MinValue       float64
}

type paletteEntry struct {
	color types.DiscreteColor
	hsv   types.HSV
}

// Classifier maps one ColorSample to one DiscreteColor. It is stateless
// apart from its fixed palette: identical input always yields identical
// output, and it is safe for concurrent use.
type Classifier struct {
	palette        [6]paletteEntry
	rejectDistance float64
	minValue       float64
}

// referencePalette holds the six sticker colors as RGB; converted to HSV once
// at construction so per-sample classification does no conversion of its own.
var referencePalette = [6]struct {
	color types.DiscreteColor
	rgb   types.ColorSample
}{
	{types.ColorWhite, types.ColorSample{R: 1.0, G: 1.0, B: 1.0}},
	{types.ColorYellow, types.ColorSample{R: 1.0, G: 1.0, B: 0.0}},
	{types.ColorRed, types.ColorSample{R: 1.0, G: 0.0, B: 0.0}},
	{types.ColorOrange, types.ColorSample{R: 1.0, G: 0.5, B: 0.0}},
	{types.ColorBlue, types.ColorSample{R: 0.0, G: 0.0, B: 1.0}},
	{types.ColorGreen, types.ColorSample{R: 0.0, G: 1.0, B: 0.0}},
}

// New creates a classifier with the given tuning. Zero fields fall back to
// DefaultRejectDistance and DefaultMinValue.
func New(cfg Config) *Classifier {
	c := &Classifier{
		rejectDistance: cfg.RejectDistance,
		minValue:       cfg.MinValue,
	}
	if c.rejectDistance == 0 {
		c.rejectDistance = DefaultRejectDistance
	}
	if c.minValue == 0 {
		c.minValue = DefaultMinValue
	}
	for i, ref := range referencePalette {
		c.palette[i] = paletteEntry{color: ref.color, hsv: ref.rgb.HSV()}
	}
	return c
}

// Classify maps one averaged patch color to a discrete sticker color, or
// Unknown when the sample is too dark or too far from every palette entry.
func (c *Classifier) Classify(sample types.ColorSample) types.DiscreteColor {
	hsv := sample.HSV()

	// Very dark patches carry no usable hue information.
	if hsv.V <= c.minValue {
		return types.ColorUnknown
	}

	best := types.ColorUnknown
	bestDist := math.MaxFloat64
	for _, entry := range c.palette {
		d := distance(hsv, entry.hsv)
		if d < bestDist {
			bestDist = d
			best = entry.color
		}
	}

	// A nearest match that is still far off is a confidently-wrong label
	// under poor lighting; reject it instead.
	if bestDist > c.rejectDistance {
		return types.ColorUnknown
	}

	return best
}

// distance is the weighted HSV distance between a sample and a palette entry.
func distance(a, b types.HSV) float64 {
	return hueWeight*hueDistance(a.H, b.H) +
		saturationWeight*abs(a.S-b.S) +
		valueWeight*abs(a.V-b.V)
}

// hueDistance is the circular distance on the [0,1) hue circle: the minimum
// of the forward and wrap-around difference.
func hueDistance(a, b float64) float64 {
	d := abs(a - b)
	if d > 0.5 {
		d = 1.0 - d
	}
	return d
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
