// Package staging places uploaded payloads on disk before conversion.
//
// Browser-supplied file names are untrusted: they are reduced to a safe base
// name and prefixed with a short unique id so concurrent uploads of the same
// name never collide. Staged files are transient; they are removed after
// conversion and any leftovers from crashed runs are swept on daemon start.
package staging

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ErrEmptyName is returned when nothing usable remains after sanitizing.
var ErrEmptyName = errors.New("empty file name after sanitizing")

// SanitizeName reduces an untrusted upload name to a safe base name:
// directory components are stripped, control characters and path separators
// are replaced, and leading dots are dropped.
func SanitizeName(name string) (string, error) {
	name = filepath.Base(strings.TrimSpace(name))

	var sb strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			sb.WriteByte('_')
		default:
			sb.WriteRune(r)
		}
	}

	cleaned := strings.TrimLeft(sb.String(), ".")
	if cleaned == "" || cleaned == "_" {
		return "", fmt.Errorf("%w: %q", ErrEmptyName, name)
	}
	return cleaned, nil
}

// UniquePath returns a collision-free staging path for an already-sanitized
// name, prefixing it with a short unique id the way browser uploads are
// disambiguated.
func UniquePath(dir, sanitized string) string {
	prefix := uuid.NewString()[:8]
	return filepath.Join(dir, prefix+"_"+sanitized)
}

// OriginalName strips the unique prefix from a staged file name, recovering
// the name the uploader supplied.
func OriginalName(stagedName string) string {
	if idx := strings.IndexByte(stagedName, '_'); idx >= 0 && idx == 8 {
		return stagedName[idx+1:]
	}
	return stagedName
}
