package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Transform parses spec and applies it to img.
//
// Parameters:
//   - img: The source image. It is never modified.
//   - spec: An operation string, see ParseOperation.
//
// Returns:
//   - *image.NRGBA: A new image with bounds starting at (0,0).
//   - error: An *OperationError (matching ErrInvalidOperation) if spec is
//     unknown or malformed, or if the operation cannot apply to img.
func Transform(img image.Image, spec string) (*image.NRGBA, error) {
	op, err := ParseOperation(spec)
	if err != nil {
		return nil, err
	}
	return Apply(img, op)
}

// Apply runs a parsed operation against img.
//
// # Geometry
//
// For a W×H source:
//   - rotate_right: H×W output, source (x,y) lands on (H-1-y, x)
//   - rotate_left: H×W output, source (x,y) lands on (y, W-1-x)
//   - mirror_horizontal: output (x,y) is source (W-1-x, y)
//   - mirror_vertical: output (x,y) is source (x, H-1-y)
//   - crop_center and crop: see CropRect and CenterRect
func Apply(img image.Image, op Operation) (*image.NRGBA, error) {
	if img == nil {
		return nil, &OperationError{Spec: op.String(), Reason: "no image"}
	}

	switch op.Kind {
	case OpRotateRight:
		return imaging.Rotate270(img), nil
	case OpRotateLeft:
		return imaging.Rotate90(img), nil
	case OpMirrorHorizontal:
		return imaging.FlipH(img), nil
	case OpMirrorVertical:
		return imaging.FlipV(img), nil
	case OpCropCenter:
		rect, err := CenterRect(img.Bounds())
		if err != nil {
			return nil, &OperationError{Spec: op.String(), Reason: err.Error()}
		}
		return imaging.Crop(img, rect), nil
	case OpCrop:
		rect, err := CropRect(img.Bounds(), op.X, op.Y, op.W, op.H)
		if err != nil {
			return nil, &OperationError{Spec: op.String(), Reason: err.Error()}
		}
		return imaging.Crop(img, rect), nil
	default:
		return nil, &OperationError{Spec: op.String(), Reason: fmt.Sprintf("unsupported kind %d", int(op.Kind))}
	}
}
