package convert

import (
	"path/filepath"
	"strings"
)

const (
	SourceExt = ".dwfx"
	PDFExt    = ".pdf"
)

// IsSource reports whether name carries the source container extension,
// case-insensitively.
func IsSource(name string) bool {
	return strings.EqualFold(filepath.Ext(name), SourceExt)
}

// PDFName derives the output file name from a source file name: the base
// name with its extension replaced by ".pdf". Every entry point uses this
// same mapping.
func PDFName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base)) + PDFExt
}
