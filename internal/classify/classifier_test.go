package classify

import (
	"math"
	"testing"

	"github.com/brunoaduarte/rubik-solver/internal/types"
)

// TestClassifyPaletteColors verifies each pure reference color classifies
// to its own label.
func TestClassifyPaletteColors(t *testing.T) {
	c := New(Config{})

	cases := []struct {
		name   string
		sample types.ColorSample
		want   types.DiscreteColor
	}{
		{"white", types.ColorSample{R: 1.0, G: 1.0, B: 1.0}, types.ColorWhite},
		{"yellow", types.ColorSample{R: 1.0, G: 1.0, B: 0.0}, types.ColorYellow},
		{"red", types.ColorSample{R: 1.0, G: 0.0, B: 0.0}, types.ColorRed},
		{"orange", types.ColorSample{R: 1.0, G: 0.5, B: 0.0}, types.ColorOrange},
		{"blue", types.ColorSample{R: 0.0, G: 0.0, B: 1.0}, types.ColorBlue},
		{"green", types.ColorSample{R: 0.0, G: 1.0, B: 0.0}, types.ColorGreen},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Classify(tc.sample); got != tc.want {
				t.Errorf("Classify(%+v) = %v, want %v", tc.sample, got, tc.want)
			}
		})
	}
}

// TestClassifyNoisyColors verifies samples slightly off the reference values
// (sensor noise, mild shading) still resolve to the right label.
func TestClassifyNoisyColors(t *testing.T) {
	c := New(Config{})

	cases := []struct {
		name   string
		sample types.ColorSample
		want   types.DiscreteColor
	}{
		{"dim white", types.ColorSample{R: 0.9, G: 0.9, B: 0.9}, types.ColorWhite},
		{"warm red", types.ColorSample{R: 0.9, G: 0.1, B: 0.08}, types.ColorRed},
		{"dark green", types.ColorSample{R: 0.05, G: 0.75, B: 0.1}, types.ColorGreen},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Classify(tc.sample); got != tc.want {
				t.Errorf("Classify(%+v) = %v, want %v", tc.sample, got, tc.want)
			}
		})
	}
}

// TestClassifyBrightnessGate verifies very dark samples classify Unknown
// regardless of hue and saturation.
func TestClassifyBrightnessGate(t *testing.T) {
	c := New(Config{})

	// Fully saturated red hue, but at value 0.1 (gate is v <= 0.1).
	sample := types.ColorSample{R: 0.1, G: 0.0, B: 0.0}
	if got := c.Classify(sample); got != types.ColorUnknown {
		t.Errorf("dark sample classified %v, want unknown", got)
	}

	// Near-black gray.
	sample = types.ColorSample{R: 0.05, G: 0.05, B: 0.05}
	if got := c.Classify(sample); got != types.ColorUnknown {
		t.Errorf("near-black classified %v, want unknown", got)
	}
}

// TestClassifyRejectsAmbiguous verifies a sample far from every palette
// entry is rejected rather than forced to the nearest label.
func TestClassifyRejectsAmbiguous(t *testing.T) {
	c := New(Config{})

	// Mid-dark gray: achromatic, value 0.3. Closest entry is White at
	// weighted distance 0.7, above the 0.6 rejection threshold.
	sample := types.ColorSample{R: 0.3, G: 0.3, B: 0.3}
	if got := c.Classify(sample); got != types.ColorUnknown {
		t.Errorf("ambiguous gray classified %v, want unknown", got)
	}
}

// TestHueDistanceWrapAround verifies the circular hue distance: hues 0.99
// and 0.01 are 0.02 apart, not 0.98.
func TestHueDistanceWrapAround(t *testing.T) {
	if d := hueDistance(0.99, 0.01); math.Abs(d-0.02) > 1e-9 {
		t.Errorf("hueDistance(0.99, 0.01) = %f, want 0.02", d)
	}
	if d := hueDistance(0.01, 0.99); math.Abs(d-0.02) > 1e-9 {
		t.Errorf("hueDistance(0.01, 0.99) = %f, want 0.02", d)
	}
	if d := hueDistance(0.25, 0.75); math.Abs(d-0.5) > 1e-9 {
		t.Errorf("hueDistance(0.25, 0.75) = %f, want 0.5", d)
	}
}

// TestClassifyWrapAroundRed verifies a red with hue just below 1.0 (slightly
// magenta-shifted) still classifies as red via the circular distance.
func TestClassifyWrapAroundRed(t *testing.T) {
	c := New(Config{})

	// R=1, B=0.06 puts the hue just below 1.0 on the circle.
	sample := types.ColorSample{R: 1.0, G: 0.0, B: 0.06}
	if got := c.Classify(sample); got != types.ColorRed {
		t.Errorf("wrap-around red classified %v, want red", got)
	}
}
