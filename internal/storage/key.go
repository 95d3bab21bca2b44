// Package storage holds the blob store backends: local disk and MinIO/S3.
package storage

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// NewKey builds the handle for a new blob: <owner>/<dataroom>/<uuid><ext>.
// The original filename only contributes its extension.
func NewKey(ownerID, dataroomID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 16 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return path.Join(safeSegment(ownerID), safeSegment(dataroomID), uuid.NewString()+ext)
}

func safeSegment(s string) string {
	s = strings.NewReplacer("/", "_", `\`, "_", "..", "_").Replace(s)
	if s == "" {
		return "_"
	}
	return s
}

// validateKey rejects handles that could escape the store's root
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return fmt.Errorf("invalid blob handle %q", key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("invalid blob handle %q", key)
		}
	}
	return nil
}
