package osutil

import (
	"path/filepath"
	"runtime"
	"strings"
)

var (
	lf   = []byte("\n")
	crlf = []byte("\r\n")
)

func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// LineSep returns the line separator used by the current platform.
func LineSep() []byte {
	if IsWindows() {
		return crlf
	}
	return lf
}

// WithNewline returns a copy of b followed by the platform line separator. b is not modified.
func WithNewline(b []byte) []byte {
	sep := LineSep()
	retval := make([]byte, 0, len(b)+len(sep))
	retval = append(retval, b...)
	return append(retval, sep...)
}

// SamePath reports whether two file paths refer to the same location after cleaning.
// Paths compare case-insensitively on Windows.
func SamePath(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if IsWindows() {
		return strings.EqualFold(a, b)
	}
	return a == b
}
