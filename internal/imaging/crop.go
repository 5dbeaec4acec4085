package imaging

import (
	"fmt"
	"image"
)

// CropRect clamps a requested crop box to bounds and returns it in image
// coordinates.
//
// x and y are offsets from bounds.Min. They are clamped into [0, dim-1]; w
// and h are then clamped into [1, dim-offset]. Out-of-range requests shrink
// silently. The only failure is an empty bounds rectangle, which has no pixel
// to keep.
func CropRect(bounds image.Rectangle, x, y, w, h int) (image.Rectangle, error) {
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return image.Rectangle{}, fmt.Errorf("cannot crop an empty %dx%d image", width, height)
	}

	x = clamp(x, 0, width-1)
	y = clamp(y, 0, height-1)
	w = clamp(w, 1, width-x)
	h = clamp(h, 1, height-y)

	minX, minY := bounds.Min.X+x, bounds.Min.Y+y
	return image.Rect(minX, minY, minX+w, minY+h), nil
}

// CenterRect returns the centered box of half the width and half the height
// of bounds, rounded down and never smaller than 1×1.
func CenterRect(bounds image.Rectangle) (image.Rectangle, error) {
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return image.Rectangle{}, fmt.Errorf("cannot crop an empty %dx%d image", width, height)
	}

	cw := max(1, width/2)
	ch := max(1, height/2)
	return CropRect(bounds, (width-cw)/2, (height-ch)/2, cw, ch)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
