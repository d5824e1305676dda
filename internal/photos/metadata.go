package photos

import (
	"bytes"
	"image"
	"strconv"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Metadata holds what could be derived from file bytes. Dimension and
// camera fields are best-effort; absence never blocks ingestion.
type Metadata struct {
	Width        *int       `json:"width,omitempty"`
	Height       *int       `json:"height,omitempty"`
	Size         int64      `json:"size"`
	Type         string     `json:"type"`
	LastModified *time.Time `json:"last_modified,omitempty"`
	Camera       string     `json:"camera,omitempty"`
	Lens         string     `json:"lens,omitempty"`
	ISO          int        `json:"iso,omitempty"`
	Aperture     string     `json:"aperture,omitempty"`
	ShutterSpeed string     `json:"shutter_speed,omitempty"`
	FocalLength  string     `json:"focal_length,omitempty"`
}

// ExtractMetadata decodes image dimensions and EXIF camera fields from
// file bytes. Formats with no registered decoder (RAW in particular)
// degrade to size/type only.
func ExtractMetadata(data []byte, contentType string, lastModified *time.Time) Metadata {
	meta := Metadata{
		Size:         int64(len(data)),
		Type:         contentType,
		LastModified: lastModified,
	}

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		width, height := cfg.Width, cfg.Height
		meta.Width = &width
		meta.Height = &height
	}

	fillExifFields(&meta, data)
	return meta
}

func fillExifFields(meta *Metadata, data []byte) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return
	}

	meta.Camera = exifString(x, exif.Model)
	meta.Lens = exifString(x, exif.LensModel)
	meta.Aperture = exifRatioString(x, exif.FNumber)
	meta.ShutterSpeed = exifRatString(x, exif.ExposureTime)
	meta.FocalLength = exifRatioString(x, exif.FocalLength)

	if tag, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if iso, err := tag.Int(0); err == nil {
			meta.ISO = iso
		}
	}
}

func exifString(x *exif.Exif, field exif.FieldName) string {
	tag, err := x.Get(field)
	if err != nil {
		return ""
	}
	value, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return value
}

// exifRatioString formats a rational tag as its decimal value ("2.8").
func exifRatioString(x *exif.Exif, field exif.FieldName) string {
	tag, err := x.Get(field)
	if err != nil {
		return ""
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return ""
	}
	if num%den == 0 {
		return strconv.FormatInt(num/den, 10)
	}
	return strconv.FormatFloat(float64(num)/float64(den), 'f', 1, 64)
}

// exifRatString keeps the raw fraction form ("1/250") used for shutter speeds.
func exifRatString(x *exif.Exif, field exif.FieldName) string {
	tag, err := x.Get(field)
	if err != nil {
		return ""
	}
	rat, err := tag.Rat(0)
	if err != nil {
		return ""
	}
	return rat.RatString()
}
