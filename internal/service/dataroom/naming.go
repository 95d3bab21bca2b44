package dataroom

import (
	"fmt"
	"path/filepath"
	"strings"

	"dataroom/internal/config"
)

// suggestName returns the first "base (n).ext" not in taken (lower-cased names)
func suggestName(name string, taken map[string]bool) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		base, ext = name, ""
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if !taken[strings.ToLower(candidate)] {
			return candidate
		}
	}
}

// sizeLimitReason is the user-facing message for an oversized file
func sizeLimitReason(size int64) string {
	return fmt.Sprintf("File size (%.2f MB) exceeds %s limit", float64(size)/(1024*1024), config.MaxFileSizeLabel)
}

const nameConflictReason = "A file or folder with this name already exists"
