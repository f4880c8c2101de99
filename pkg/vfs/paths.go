package vfs

import (
	"path/filepath"
	"strings"
)

// Archive entries store their paths with Windows-style backslash
// separators. The index boundary converts to and from the host form so
// callers only ever see native paths.

// fromArchivePath converts a path read from an index into host form.
func fromArchivePath(p string) string {
	return filepath.FromSlash(strings.ReplaceAll(p, `\`, "/"))
}

// toArchivePath converts a host path into the on-disk archive form.
func toArchivePath(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), "/", `\`)
}
