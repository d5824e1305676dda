package photos

import (
	"strings"
	"testing"
)

func TestValidateImageFileAcceptsStandardFormats(t *testing.T) {
	cases := map[string]string{
		"wedding.jpg":  "image/jpeg",
		"portrait.png": "image/png",
		"pano.webp":    "image/webp",
		"loop.gif":     "image/gif",
		"scan.tiff":    "image/tiff",
		"blob.jpg":     "application/octet-stream",
		"upper.JPG":    "IMAGE/JPEG",
		"params.jpg":   "image/jpeg; charset=binary",
	}
	for name, mime := range cases {
		result := ValidateImageFile(name, 1024, mime)
		if !result.IsValid {
			t.Fatalf("expected %q (%s) to validate, got %q", name, mime, result.Error)
		}
		if result.Error != "" {
			t.Fatalf("valid result must carry no error, got %q", result.Error)
		}
	}
}

func TestValidateImageFileRejectsUnknownFormats(t *testing.T) {
	for name, mime := range map[string]string{
		"notes.pdf":  "application/pdf",
		"movie.mp4":  "video/mp4",
		"page.html":  "text/html",
		"sheet.xlsx": "application/vnd.ms-excel",
	} {
		result := ValidateImageFile(name, 1024, mime)
		if result.IsValid {
			t.Fatalf("expected %q (%s) to be rejected", name, mime)
		}
		if !strings.Contains(result.Error, name) {
			t.Fatalf("error should reference the filename, got %q", result.Error)
		}
	}
}

func TestValidateImageFileRawExtensionOverridesMIME(t *testing.T) {
	// RAW files arrive with whatever MIME the browser guessed; the
	// extension wins.
	for _, name := range []string{
		"shot.cr2", "shot.CR3", "shot.nef", "shot.arw", "shot.dng",
		"shot.orf", "shot.raf", "shot.rw2", "shot.x3f", "shot.3fr",
	} {
		result := ValidateImageFile(name, 1024, "text/plain")
		if !result.IsValid {
			t.Fatalf("expected RAW file %q to validate regardless of MIME, got %q", name, result.Error)
		}
	}
}

func TestValidateImageFileSizeCeiling(t *testing.T) {
	if result := ValidateImageFile("big.jpg", MaxUploadBytes, "image/jpeg"); !result.IsValid {
		t.Fatalf("file at exactly the limit must pass, got %q", result.Error)
	}

	result := ValidateImageFile("big.jpg", MaxUploadBytes+1, "image/jpeg")
	if result.IsValid {
		t.Fatal("file over the limit must be rejected")
	}
	if !strings.Contains(result.Error, "50MB") {
		t.Fatalf("size error should name the 50MB limit, got %q", result.Error)
	}

	// The size gate runs first: an oversized RAW file is still rejected.
	if result := ValidateImageFile("big.cr2", MaxUploadBytes+1, "image/x-canon-cr2"); result.IsValid {
		t.Fatal("oversized RAW file must be rejected")
	}
}

func TestDetectContentType(t *testing.T) {
	pngHeader := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	if got := DetectContentType(pngHeader); got != "image/png" {
		t.Fatalf("expected image/png, got %q", got)
	}
	if got := DetectContentType([]byte("plain text")); strings.HasPrefix(got, "image/") {
		t.Fatalf("plain text must not sniff as an image, got %q", got)
	}
}
