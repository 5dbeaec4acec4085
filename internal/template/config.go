package template

import (
	"fmt"
	"sort"
	"strings"
)

// Material is the craft material a template is produced for. It bounds how
// many distinct colors a template may use.
type Material string

const (
	MaterialPaper  Material = "paper"
	MaterialFabric Material = "fabric"
	MaterialWood   Material = "wood"
)

var maxColors = map[Material]int{
	MaterialPaper:  16,
	MaterialFabric: 32,
	MaterialWood:   12,
}

// MaxColors returns the palette limit for m, or 0 for an unknown material.
func (m Material) MaxColors() int {
	return maxColors[m]
}

// Materials lists the known materials in alphabetical order.
func Materials() []Material {
	out := make([]Material, 0, len(maxColors))
	for m := range maxColors {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Limits on the template grid.
const (
	MaxColumns  = 400
	MaxCellSize = 64
)

// Config controls template generation.
type Config struct {
	Material  Material `json:"material" toml:"material" env:"MATERIAL"`
	Columns   int      `json:"columns" toml:"columns" env:"COLUMNS"`
	Colors    int      `json:"colors" toml:"colors" env:"COLORS"`
	CellSize  int      `json:"cell_size" toml:"cell_size" env:"CELL_SIZE"`
	Smoothing float64  `json:"smoothing" toml:"smoothing" env:"SMOOTHING"`
	GridColor string   `json:"grid_color" toml:"grid_color" env:"GRID_COLOR"`
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		Material:  MaterialPaper,
		Columns:   40,
		Colors:    8,
		CellSize:  12,
		Smoothing: 1.0,
		GridColor: "#282828",
	}
}

// WithDefaults fills zero fields of c from DefaultConfig and normalizes the
// material name.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	c.Material = Material(strings.ToLower(strings.TrimSpace(string(c.Material))))
	if c.Material == "" {
		c.Material = d.Material
	}
	if c.Columns == 0 {
		c.Columns = d.Columns
	}
	if c.Colors == 0 {
		c.Colors = d.Colors
	}
	if c.CellSize == 0 {
		c.CellSize = d.CellSize
	}
	if strings.TrimSpace(c.GridColor) == "" {
		c.GridColor = d.GridColor
	}
	return c
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	limit := c.Material.MaxColors()
	if limit == 0 {
		return fmt.Errorf("unknown material %q", c.Material)
	}
	if c.Columns < 1 || c.Columns > MaxColumns {
		return fmt.Errorf("columns must be between 1 and %d, got %d", MaxColumns, c.Columns)
	}
	if c.Colors < 1 || c.Colors > limit {
		return fmt.Errorf("colors for %s must be between 1 and %d, got %d", c.Material, limit, c.Colors)
	}
	if c.CellSize < 1 || c.CellSize > MaxCellSize {
		return fmt.Errorf("cell size must be between 1 and %d, got %d", MaxCellSize, c.CellSize)
	}
	if c.Smoothing < 0 {
		return fmt.Errorf("smoothing must not be negative, got %g", c.Smoothing)
	}
	return nil
}
