package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// PaletteColor is one entry of an extracted palette.
type PaletteColor struct {
	Hex        string   `json:"hex"`        // Hex color "#RRGGBB" (quantized)
	RGB        RGBColor `json:"rgb"`        // RGB components (quantized)
	HSL        HSLColor `json:"hsl"`        // HSL representation
	Percentage float64  `json:"percentage"` // Share of sampled pixels (0-100)
}

// Color returns the entry as an opaque color.Color.
func (p PaletteColor) Color() color.NRGBA {
	return color.NRGBA{R: p.RGB.R, G: p.RGB.G, B: p.RGB.B, A: 255}
}

// Palette is an ordered set of colors, most frequent first.
type Palette []PaletteColor

// ExtractPalette returns up to count of the most common colors in img.
//
// # Color Quantization
//
// To group similar colors, each 8-bit component is divided by 16 and
// multiplied back, so colors within 16 units per component share a bucket:
//
//	quantized = (original / 16) * 16
//
// Components are read without alpha premultiplication, so a translucent
// pixel lands in the same bucket as its opaque color.
//
// Buckets are sorted by frequency, descending. Ties are broken by hex value
// so the result is deterministic.
//
// # Errors
//
// Returns an error if count < 1 or img has no pixels.
func ExtractPalette(img image.Image, count int) (Palette, error) {
	if count < 1 {
		return nil, fmt.Errorf("palette size must be at least 1, got %d", count)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("cannot extract a palette from an empty image")
	}

	counts := make(map[RGBColor]int)
	total := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			key := RGBColor{
				R: c.R / 16 * 16,
				G: c.G / 16 * 16,
				B: c.B / 16 * 16,
			}
			counts[key]++
			total++
		}
	}

	palette := make(Palette, 0, len(counts))
	for rgb, n := range counts {
		entry := newPaletteColor(rgb)
		entry.Percentage = float64(n) / float64(total) * 100
		palette = append(palette, entry)
	}

	sort.Slice(palette, func(i, j int) bool {
		if palette[i].Percentage != palette[j].Percentage {
			return palette[i].Percentage > palette[j].Percentage
		}
		return palette[i].Hex < palette[j].Hex
	})

	if len(palette) > count {
		palette = palette[:count]
	}
	return palette, nil
}

func newPaletteColor(rgb RGBColor) PaletteColor {
	c := colorful.Color{
		R: float64(rgb.R) / 255,
		G: float64(rgb.G) / 255,
		B: float64(rgb.B) / 255,
	}
	h, s, l := c.Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return PaletteColor{
		Hex: fmt.Sprintf("#%02X%02X%02X", rgb.R, rgb.G, rgb.B),
		RGB: rgb,
		HSL: HSLColor{H: int(h), S: int(math.Round(s * 100)), L: int(math.Round(l * 100))},
	}
}

// Nearest returns the index of the palette entry perceptually closest to c,
// measured as CIE L*a*b* distance. It returns -1 for an empty palette.
func (p Palette) Nearest(c color.Color) int {
	if len(p) == 0 {
		return -1
	}
	target, ok := colorful.MakeColor(c)
	if !ok {
		target = colorful.Color{}
	}

	best, bestDist := 0, math.Inf(1)
	for i, entry := range p {
		candidate, _ := colorful.MakeColor(entry.Color())
		if d := target.DistanceLab(candidate); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
