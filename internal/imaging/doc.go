// Package imaging provides the pure transform engine and the image boundary
// helpers used by the editing workflow.
//
// This package implements geometric transformations (rotate, mirror, crop)
// selected by a small operation grammar, loading through a pluggable codec,
// image description and PNG encoding, palette extraction, and a cell grid
// overlay. All operations work with standard Go image.Image types and use a
// coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward.
//
// # Operation Grammar
//
// Operations are named by a case-insensitive string:
//
//	rotate_left | rotate_right | mirror | mirror_horizontal |
//	mirror_vertical | crop_center | crop:<x>,<y>,<w>,<h>
//
// The parametrized crop tolerates whitespace around each integer. A crop
// rectangle that does not fit the image is clamped to it, never rejected:
// x and y are clamped into [0, dim-1], w and h into [1, dim-coordinate].
//
// # Immutability
//
// Transform never modifies its input. Every result is a freshly allocated
// *image.NRGBA whose bounds start at the origin, so images can be shared as
// values (for example as undo snapshots) without copying.
//
// # Error Handling
//
// Failures carry sentinel identities usable with errors.Is:
//   - ErrInvalidOperation: unknown or malformed operation strings
//   - ErrNotFound: the path did not resolve to readable bytes
//   - ErrDecode: the bytes are not a supported raster format
//
// # Thread Safety
//
// All functions are stateless and may be called concurrently. FileCodec holds
// no state.
package imaging
