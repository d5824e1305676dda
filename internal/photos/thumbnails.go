package photos

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultThumbnailSizes are the longest-edge targets rendered for each
// accepted photo, smallest first.
var DefaultThumbnailSizes = []int{150, 300, 600, 1200}

// DefaultThumbnailQuality is the JPEG quality used for derivatives.
const DefaultThumbnailQuality = 75

// ThumbnailDescriptor records one rendered derivative. The set of
// descriptors is persisted on the photo's metadata bag.
type ThumbnailDescriptor struct {
	Size int    `json:"size"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

// ThumbnailDimensions computes output dimensions for a longest-edge
// target, preserving aspect ratio and never upscaling.
func ThumbnailDimensions(width, height, target int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}

	if width >= height {
		outW := target
		if width < target {
			outW = width
		}
		outH := int(float64(outW)/(float64(width)/float64(height)) + 0.5)
		if outH < 1 {
			outH = 1
		}
		return outW, outH
	}

	outH := target
	if height < target {
		outH = height
	}
	outW := int(float64(outH)*(float64(width)/float64(height)) + 0.5)
	if outW < 1 {
		outW = 1
	}
	return outW, outH
}

// ThumbnailGenerator renders downsized JPEG derivatives of a decoded image.
type ThumbnailGenerator struct {
	sizes   []int
	quality int
}

// NewThumbnailGenerator constructs a generator for the configured
// target sizes and JPEG quality, falling back to defaults.
func NewThumbnailGenerator(sizes []int, quality int) *ThumbnailGenerator {
	if len(sizes) == 0 {
		sizes = DefaultThumbnailSizes
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultThumbnailQuality
	}
	return &ThumbnailGenerator{sizes: sizes, quality: quality}
}

// Sizes returns the configured longest-edge targets.
func (g *ThumbnailGenerator) Sizes() []int {
	return g.sizes
}

// Decode parses the source bytes into an image. RAW formats have no
// registered decoder and return an error, which callers treat as
// "no thumbnails", not as an ingestion failure.
func (g *ThumbnailGenerator) Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// Render produces the JPEG bytes for one target size.
func (g *ThumbnailGenerator) Render(img image.Image, target int) ([]byte, error) {
	bounds := img.Bounds()
	outW, outH := ThumbnailDimensions(bounds.Dx(), bounds.Dy(), target)
	if outW == 0 || outH == 0 {
		return nil, fmt.Errorf("source image has no pixels")
	}

	resized := imaging.Resize(img, outW, outH, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(g.quality)); err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
