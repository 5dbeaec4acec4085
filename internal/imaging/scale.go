package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// Downsample shrinks img to width×height, averaging each target pixel over
// the source area it covers.
func Downsample(img image.Image, width, height int) *image.NRGBA {
	return imaging.Resize(img, width, height, imaging.Box)
}

// Upscale enlarges img by an integer factor, repeating pixels so hard edges
// survive.
func Upscale(img image.Image, factor int) *image.NRGBA {
	if factor <= 1 {
		return imaging.Clone(img)
	}
	b := img.Bounds()
	return imaging.Resize(img, b.Dx()*factor, b.Dy()*factor, imaging.NearestNeighbor)
}
