package media

import (
	"errors"
	"fmt"
	"image"
	"io"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxImagePixels bounds width*height of accepted uploads.
const MaxImagePixels = 40_000_000

// ImageInfo describes a decoded image header.
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

// InspectImage decodes only the image header and rewinds body. Formats that
// carry no registered decoder (avif, heic) are reported as unknown.
func InspectImage(body io.ReadSeeker) (ImageInfo, error) {
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return ImageInfo{}, err
	}

	cfg, format, err := image.DecodeConfig(body)
	if _, seekErr := body.Seek(0, io.SeekStart); seekErr != nil {
		return ImageInfo{}, seekErr
	}
	if errors.Is(err, image.ErrFormat) {
		return ImageInfo{Format: "unknown"}, nil
	}
	if err != nil {
		return ImageInfo{}, fmt.Errorf("decode image header: %w", err)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > MaxImagePixels {
		return ImageInfo{}, fmt.Errorf("image dimensions %dx%d out of range", cfg.Width, cfg.Height)
	}

	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
