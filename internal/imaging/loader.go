package imaging

import (
	"bytes"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Codec is the boundary to the raster codec and filesystem.
//
// ReadBytes fails when the path does not resolve to readable bytes. Decode
// fails when the bytes are not a supported raster format; on success it
// also reports the format name (for example "png").
type Codec interface {
	ReadBytes(path string) ([]byte, error)
	Decode(data []byte) (image.Image, string, error)
}

// FileCodec reads from the local filesystem and decodes every format
// registered with the image package: PNG, JPEG, GIF, BMP, TIFF and WebP.
type FileCodec struct{}

// ReadBytes reads the whole file at path.
func (FileCodec) ReadBytes(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Decode decodes data with the registered image decoders.
func (FileCodec) Decode(data []byte) (image.Image, string, error) {
	return image.Decode(bytes.NewReader(data))
}

// Loaded is a decoded image together with its source format.
type Loaded struct {
	Image  image.Image
	Format string
}

// LoadImage reads and decodes the image at path through codec.
//
// # Errors
//
//   - *NotFoundError (matching ErrNotFound) if the bytes cannot be read
//   - *DecodeError (matching ErrDecode) if the bytes do not decode
func LoadImage(codec Codec, path string) (*Loaded, error) {
	data, err := codec.ReadBytes(path)
	if err != nil {
		return nil, &NotFoundError{Path: path, Err: err}
	}

	img, format, err := codec.Decode(data)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	return &Loaded{Image: img, Format: format}, nil
}

// ImageInfo contains metadata about an image.
//
// This struct provides essential information about an image without requiring
// the caller to analyze the image data directly.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the format the image was decoded from, or "raw" when it is
	// not known.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the pixel model carries an alpha channel.
	HasAlpha bool `json:"has_alpha"`
}

// Describe returns metadata for img. An empty format is reported as "raw".
//
// # Color Depth Detection
//
// Color depth is determined by the Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func Describe(img image.Image, format string) *ImageInfo {
	if format == "" {
		format = "raw"
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Format:     format,
		ColorDepth: colorDepth,
		HasAlpha:   hasAlpha,
	}
}
