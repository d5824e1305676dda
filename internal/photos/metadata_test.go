package photos

import (
	"image/color"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

func jpegFixture(t *testing.T, width, height int) []byte {
	t.Helper()
	gen := NewThumbnailGenerator(nil, 0)
	img := imaging.New(width, height, color.NRGBA{R: 30, G: 60, B: 90, A: 255})
	data, err := gen.Render(img, width)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return data
}

func TestExtractMetadataDimensions(t *testing.T) {
	data := jpegFixture(t, 320, 240)
	modified := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	meta := ExtractMetadata(data, "image/jpeg", &modified)

	if meta.Width == nil || *meta.Width != 320 {
		t.Fatalf("expected width 320, got %v", meta.Width)
	}
	if meta.Height == nil || *meta.Height != 240 {
		t.Fatalf("expected height 240, got %v", meta.Height)
	}
	if meta.Size != int64(len(data)) {
		t.Fatalf("expected size %d, got %d", len(data), meta.Size)
	}
	if meta.Type != "image/jpeg" {
		t.Fatalf("expected type image/jpeg, got %q", meta.Type)
	}
	if meta.LastModified == nil || !meta.LastModified.Equal(modified) {
		t.Fatalf("expected last modified carried through, got %v", meta.LastModified)
	}
}

func TestExtractMetadataDegradesOnUndecodableBytes(t *testing.T) {
	// RAW files and corrupt uploads have no registered decoder; only
	// size and type survive.
	data := []byte("II*\x00 definitely not a decodable image")

	meta := ExtractMetadata(data, "image/x-canon-cr2", nil)

	if meta.Width != nil || meta.Height != nil {
		t.Fatalf("expected no dimensions, got %v x %v", meta.Width, meta.Height)
	}
	if meta.Camera != "" || meta.ISO != 0 {
		t.Fatalf("expected no EXIF fields, got camera %q iso %d", meta.Camera, meta.ISO)
	}
	if meta.Size != int64(len(data)) {
		t.Fatalf("expected size recorded, got %d", meta.Size)
	}
	if meta.Type != "image/x-canon-cr2" {
		t.Fatalf("expected declared type kept, got %q", meta.Type)
	}
}

func TestExtractMetadataEmptyInput(t *testing.T) {
	meta := ExtractMetadata(nil, "application/octet-stream", nil)
	if meta.Size != 0 || meta.Width != nil {
		t.Fatalf("expected empty metadata, got %+v", meta)
	}
}
