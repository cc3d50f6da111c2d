//go:build !ios && !android && (amd64 || arm64)

// Package platform knows how FFmpeg shared libraries are named on each OS.
package platform

import (
	"fmt"
	"runtime"
	"unsafe"
)

// Is64Bit reports whether pointers are 8 bytes wide. The struct offsets used
// by the binding packages assume an LP64 layout.
const Is64Bit = unsafe.Sizeof(uintptr(0)) == 8

// LibraryExtension is the shared library suffix for this OS.
var LibraryExtension string

// LibraryPrefix is the shared library name prefix for this OS.
var LibraryPrefix string

func init() {
	switch runtime.GOOS {
	case "darwin":
		LibraryExtension = ".dylib"
		LibraryPrefix = "lib"
	case "windows":
		LibraryExtension = ".dll"
		LibraryPrefix = ""
	default:
		LibraryExtension = ".so"
		LibraryPrefix = "lib"
	}
}

// FormatLibraryName returns the file name of a library at a given major
// version. A zero version yields the unversioned name.
//
//   - Linux:   FormatLibraryName("avfilter", 9) -> "libavfilter.so.9"
//   - macOS:   FormatLibraryName("avfilter", 9) -> "libavfilter.9.dylib"
//   - Windows: FormatLibraryName("avfilter", 9) -> "avfilter-9.dll"
func FormatLibraryName(name string, version int) string {
	if version <= 0 {
		return LibraryPrefix + name + LibraryExtension
	}
	switch runtime.GOOS {
	case "darwin":
		return fmt.Sprintf("%s%s.%d%s", LibraryPrefix, name, version, LibraryExtension)
	case "windows":
		return fmt.Sprintf("%s%s-%d%s", LibraryPrefix, name, version, LibraryExtension)
	default:
		return fmt.Sprintf("%s%s%s.%d", LibraryPrefix, name, LibraryExtension, version)
	}
}
