// Package template turns an edited image into a craft template: a grid of
// cells, each assigned one color from a small palette, plus a preview image.
//
// The workflow treats generation as an opaque, possibly slow computation
// behind the Generator interface. MosaicGenerator is the built-in
// implementation:
//
//  1. Optional Gaussian smoothing to suppress noise before sampling.
//  2. Box downsampling to Columns × Rows cells, Rows following the image
//     aspect ratio.
//  3. Palette extraction from the downsampled cells, capped by the
//     material's color limit.
//  4. Nearest-color assignment per cell in CIE L*a*b* space.
//  5. A preview upscaled by CellSize with the cell grid drawn over it.
//
// Failures are reported as *Error values matching ErrComputation.
package template
