package photos

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxBaseNameLen = 50
	tokenLen       = 8
	defaultExt     = "jpg"
	freeSegment    = "free"
)

// GenerateSafeName turns an arbitrary untrusted filename into a
// collision-resistant storage key: {unixMillis}_{token}_{base}.{ext}.
// The timestamp and random token make collisions practically impossible
// without any read-before-write check.
func GenerateSafeName(originalName string, now time.Time) string {
	base, ext := splitName(originalName)
	return fmt.Sprintf(
		"%d_%s_%s.%s",
		now.UnixMilli(),
		randomToken(),
		sanitizeBaseName(base),
		ext,
	)
}

// ObjectPath builds the canonical storage location for an original:
// events/{eventID|"free"}/{YYYY-MM-DD}/{safeName}. Partitioning by
// event and calendar day bounds directory fan-out.
func ObjectPath(eventID string, day time.Time, safeName string) string {
	segment := strings.TrimSpace(eventID)
	if segment == "" {
		segment = freeSegment
	}
	return path.Join("events", segment, day.UTC().Format("2006-01-02"), safeName)
}

// ThumbPath derives a thumbnail path from the original's path by
// inserting a _thumb_{size} suffix before the extension.
func ThumbPath(originalPath string, size int) string {
	ext := path.Ext(originalPath)
	stem := strings.TrimSuffix(originalPath, ext)
	return stem + "_thumb_" + strconv.Itoa(size) + ext
}

func splitName(name string) (base, ext string) {
	trimmed := path.Base(strings.TrimSpace(strings.ReplaceAll(name, "\\", "/")))
	if trimmed == "." || trimmed == "/" {
		trimmed = ""
	}

	ext = strings.TrimPrefix(path.Ext(trimmed), ".")
	base = strings.TrimSuffix(trimmed, path.Ext(trimmed))

	ext = strings.ToLower(ext)
	if ext == "" || !isAlphanumeric(ext) {
		ext = defaultExt
	}
	return base, ext
}

func sanitizeBaseName(base string) string {
	var b strings.Builder
	b.Grow(len(base))

	lastUnderscore := false
	for _, r := range base {
		safe := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_'
		if safe && r != '_' {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		// Collapse runs of unsafe characters and underscores.
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	clean := strings.Trim(b.String(), "_")
	if len(clean) > maxBaseNameLen {
		clean = strings.Trim(clean[:maxBaseNameLen], "_")
	}
	if clean == "" {
		clean = "photo"
	}
	return clean
}

func randomToken() string {
	// UUID hex is lowercase [0-9a-f], which keeps the name matching
	// the documented {timestamp}_{token}_ shape.
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:tokenLen]
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return s != ""
}
