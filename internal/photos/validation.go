package photos

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxUploadBytes is the hard per-file ceiling. Bounds worst-case memory
// and bandwidth for one upload.
const MaxUploadBytes = 50 * 1024 * 1024

// rawExtensions lists camera RAW formats accepted regardless of the
// declared MIME type. Browsers and OSes frequently mislabel RAW files.
var rawExtensions = map[string]struct{}{
	"cr2": {}, "cr3": {}, "crw": {}, // Canon
	"nef": {}, "nrw": {}, // Nikon
	"arw": {}, "srf": {}, "sr2": {}, // Sony
	"dng": {}, // Adobe
	"orf": {}, // Olympus
	"rw2": {}, "raw": {}, // Panasonic
	"raf": {}, // Fuji
	"pef": {}, "ptx": {}, // Pentax
	"x3f": {}, // Sigma
	"dcr": {}, "kdc": {}, // Kodak
	"mrw": {}, // Minolta
	"rwl": {}, "dcs": {}, // Leica
	"3fr": {}, // Hasselblad
	"mef": {}, // Mamiya
	"iiq": {}, // Phase One
}

var allowedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
	"image/tiff": {},
	// RAW MIME types, for the clients that do label them.
	"image/x-canon-cr2":      {},
	"image/x-canon-cr3":      {},
	"image/x-canon-crw":      {},
	"image/x-nikon-nef":      {},
	"image/x-sony-arw":       {},
	"image/x-adobe-dng":      {},
	"image/x-olympus-orf":    {},
	"image/x-panasonic-rw2":  {},
	"image/x-fuji-raf":       {},
	"image/x-pentax-pef":     {},
	"image/x-sigma-x3f":      {},
	"image/x-kodak-dcr":      {},
	"image/x-minolta-mrw":    {},
	"image/x-hasselblad-3fr": {},
	"image/x-phaseone-iiq":   {},
	// Generic fallback some browsers report for unknown extensions.
	"application/octet-stream": {},
}

// ValidationResult is the outcome of validating one file. Error is
// non-empty exactly when IsValid is false.
type ValidationResult struct {
	IsValid bool   `json:"is_valid"`
	Error   string `json:"error,omitempty"`
}

// ValidateImageFile classifies a file as an acceptable photo. It never
// touches the network and must be re-run server-side regardless of any
// client-side check.
func ValidateImageFile(name string, size int64, contentType string) ValidationResult {
	if size > MaxUploadBytes {
		return ValidationResult{
			Error: fmt.Sprintf("file %q exceeds the 50MB size limit", name),
		}
	}

	if _, ok := rawExtensions[fileExtension(name)]; ok {
		return ValidationResult{IsValid: true}
	}

	mime := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if _, ok := allowedMIMETypes[mime]; ok {
		return ValidationResult{IsValid: true}
	}

	return ValidationResult{
		Error: fmt.Sprintf(
			"file %q is not an accepted format: use JPEG, PNG, WebP, GIF, TIFF, or a camera RAW file",
			name,
		),
	}
}

// DetectContentType sniffs the MIME type from file bytes. Used when a
// client omits the Content-Type part header.
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

func fileExtension(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return strings.ToLower(ext)
}
