//go:build !ios && !android && (amd64 || arm64)

package platform

import (
	"runtime"
	"testing"
)

func TestIs64Bit(t *testing.T) {
	if !Is64Bit {
		t.Error("platform should be 64-bit")
	}
}

func TestFormatLibraryName(t *testing.T) {
	tests := []struct {
		goos    string
		name    string
		version int
		want    string
	}{
		{"linux", "avfilter", 9, "libavfilter.so.9"},
		{"linux", "avutil", 0, "libavutil.so"},
		{"darwin", "avfilter", 9, "libavfilter.9.dylib"},
		{"darwin", "avutil", 0, "libavutil.dylib"},
		{"windows", "avfilter", 9, "avfilter-9.dll"},
		{"windows", "avutil", 0, "avutil.dll"},
	}

	for _, tc := range tests {
		if tc.goos != runtime.GOOS {
			continue
		}
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatLibraryName(tc.name, tc.version); got != tc.want {
				t.Errorf("FormatLibraryName(%q, %d) = %q, want %q", tc.name, tc.version, got, tc.want)
			}
		})
	}
}
