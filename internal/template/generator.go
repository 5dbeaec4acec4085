package template

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"

	"github.com/ironsheep/artcreator/internal/imaging"
)

// ErrComputation identifies template generation failures.
var ErrComputation = errors.New("template computation failed")

// Error reports why a template could not be generated.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("template generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("template generation failed: %s", e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches ErrComputation.
func (e *Error) Is(target error) bool {
	return target == ErrComputation
}

// Template is a generated craft template.
type Template struct {
	Material Material        `json:"material"`
	Columns  int             `json:"columns"`
	Rows     int             `json:"rows"`
	CellSize int             `json:"cell_size"`
	Palette  imaging.Palette `json:"palette"`

	// Cells[row][col] indexes into Palette.
	Cells [][]int `json:"cells"`

	// Preview is the rendered template with its cell grid.
	Preview *image.NRGBA `json:"-"`
}

// Generator produces a template from an image.
type Generator interface {
	Generate(img image.Image, cfg Config) (*Template, error)
}

// MosaicGenerator is the built-in Generator.
type MosaicGenerator struct{}

// Generate builds a template from img. Zero fields of cfg take defaults.
func (MosaicGenerator) Generate(img image.Image, cfg Config) (*Template, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, &Error{Reason: "invalid configuration", Err: err}
	}
	if img == nil || img.Bounds().Empty() {
		return nil, &Error{Reason: "source image is empty"}
	}

	var src image.Image = img
	if cfg.Smoothing > 0 {
		src = blur.Gaussian(img, cfg.Smoothing)
	}

	cols, rows := gridSize(img.Bounds(), cfg.Columns)
	cells := imaging.Downsample(src, cols, rows)

	palette, err := imaging.ExtractPalette(cells, cfg.Colors)
	if err != nil {
		return nil, &Error{Reason: "palette extraction", Err: err}
	}

	assigned := make([][]int, rows)
	counts := make([]int, len(palette))
	quantized := image.NewNRGBA(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		assigned[y] = make([]int, cols)
		for x := 0; x < cols; x++ {
			idx := palette.Nearest(cells.At(x, y))
			assigned[y][x] = idx
			counts[idx]++
			quantized.SetNRGBA(x, y, palette[idx].Color())
		}
	}

	// Shares now describe the template rather than the sampled source.
	total := float64(cols * rows)
	for i := range palette {
		palette[i].Percentage = float64(counts[i]) / total * 100
	}

	preview := imaging.CellGrid(imaging.Upscale(quantized, cfg.CellSize), cfg.CellSize, cfg.GridColor, false)

	return &Template{
		Material: cfg.Material,
		Columns:  cols,
		Rows:     rows,
		CellSize: cfg.CellSize,
		Palette:  palette,
		Cells:    assigned,
		Preview:  preview,
	}, nil
}

// gridSize fits columns to the image width and derives rows from the aspect
// ratio. Neither dimension exceeds the pixel count it samples.
func gridSize(bounds image.Rectangle, columns int) (int, int) {
	w, h := bounds.Dx(), bounds.Dy()
	cols := min(columns, w)
	rows := int(math.Round(float64(h) * float64(cols) / float64(w)))
	rows = max(1, min(rows, h))
	return cols, rows
}

// ColorAt returns the palette color of the cell at (col, row).
func (t *Template) ColorAt(col, row int) (color.NRGBA, bool) {
	if row < 0 || row >= len(t.Cells) || col < 0 || col >= len(t.Cells[row]) {
		return color.NRGBA{}, false
	}
	return t.Palette[t.Cells[row][col]].Color(), true
}
