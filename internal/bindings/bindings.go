//go:build !ios && !android && (amd64 || arm64)

// Package bindings loads the FFmpeg shared libraries with purego.
//
// The binding packages (avutil, avcodec, avformat, avfilter) register their
// symbols against the handles exposed here.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/spherecmp/internal/platform"
)

// LibDirEnv names an extra directory searched before the system paths.
const LibDirEnv = "SPHERECMP_FFMPEG_LIB_DIR"

// ErrNotLoaded is returned when FFmpeg functions are called before Load.
var ErrNotLoaded = errors.New("spherecmp: FFmpeg libraries not loaded")

// ErrLibraryNotFound is returned when a required FFmpeg library cannot be found.
var ErrLibraryNotFound = errors.New("spherecmp: FFmpeg library not found")

var (
	libAVUtil   uintptr
	libAVCodec  uintptr
	libAVFormat uintptr
	libAVFilter uintptr

	loaded   bool
	loadOnce sync.Once
	loadErr  error

	avutilVersion   func() uint32
	avfilterVersion func() uint32
)

// Supported major versions, newest first.
var (
	avutilVersions   = []int{59, 58, 57}
	avcodecVersions  = []int{61, 60, 59}
	avformatVersions = []int{61, 60, 59}
	avfilterVersions = []int{10, 9, 8}
)

// IsLoaded reports whether Load has succeeded.
func IsLoaded() bool {
	return loaded
}

// Load opens libavutil, libavcodec, libavformat and libavfilter in dependency
// order. It is safe to call multiple times; only the first call does work.
func Load() error {
	loadOnce.Do(func() {
		loadErr = doLoad()
		loaded = loadErr == nil
	})
	return loadErr
}

func doLoad() error {
	var err error

	if libAVUtil, err = loadLibrary("avutil", avutilVersions); err != nil {
		return fmt.Errorf("loading libavutil: %w", err)
	}
	if libAVCodec, err = loadLibrary("avcodec", avcodecVersions); err != nil {
		return fmt.Errorf("loading libavcodec: %w", err)
	}
	if libAVFormat, err = loadLibrary("avformat", avformatVersions); err != nil {
		return fmt.Errorf("loading libavformat: %w", err)
	}
	if libAVFilter, err = loadLibrary("avfilter", avfilterVersions); err != nil {
		return fmt.Errorf("loading libavfilter: %w", err)
	}

	purego.RegisterLibFunc(&avutilVersion, libAVUtil, "avutil_version")
	purego.RegisterLibFunc(&avfilterVersion, libAVFilter, "avfilter_version")
	return nil
}

func loadLibrary(name string, versions []int) (uintptr, error) {
	var candidates []string
	for _, dir := range LibrarySearchPaths() {
		for _, ver := range versions {
			candidates = append(candidates, filepath.Join(dir, platform.FormatLibraryName(name, ver)))
		}
		candidates = append(candidates, filepath.Join(dir, platform.FormatLibraryName(name, 0)))
	}
	// Bare names last so the dynamic loader can apply its own rules.
	for _, ver := range versions {
		candidates = append(candidates, platform.FormatLibraryName(name, ver))
	}
	candidates = append(candidates, platform.FormatLibraryName(name, 0))

	for _, path := range candidates {
		// RTLD_GLOBAL: the FFmpeg libraries resolve symbols from each other.
		lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			return lib, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// FindLibrary returns the first existing file for the named library. It does
// not load anything and is meant for diagnostics.
func FindLibrary(name string, versions []int) (string, error) {
	for _, dir := range LibrarySearchPaths() {
		for _, ver := range append(append([]int(nil), versions...), 0) {
			path := filepath.Join(dir, platform.FormatLibraryName(name, ver))
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// LibrarySearchPaths returns the directories searched for FFmpeg libraries.
func LibrarySearchPaths() []string {
	var paths []string
	if dir := os.Getenv(LibDirEnv); dir != "" {
		paths = append(paths, dir)
	}

	switch runtime.GOOS {
	case "darwin":
		if p := os.Getenv("DYLD_LIBRARY_PATH"); p != "" {
			paths = append(paths, filepath.SplitList(p)...)
		}
		paths = append(paths,
			"/opt/homebrew/lib",
			"/usr/local/lib",
			"/opt/homebrew/opt/ffmpeg/lib",
			"/usr/local/opt/ffmpeg/lib",
		)
	case "windows":
		if p := os.Getenv("PATH"); p != "" {
			paths = append(paths, filepath.SplitList(p)...)
		}
		if exe, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Dir(exe))
		}
		paths = append(paths, `C:\ffmpeg\bin`)
	default:
		if p := os.Getenv("LD_LIBRARY_PATH"); p != "" {
			paths = append(paths, filepath.SplitList(p)...)
		}
		paths = append(paths,
			"/usr/lib/x86_64-linux-gnu",
			"/usr/lib/aarch64-linux-gnu",
			"/usr/local/lib",
			"/usr/lib",
			"/lib/x86_64-linux-gnu",
			"/lib",
		)
	}
	return paths
}

// AVUtilVersion returns the packed libavutil version, or 0 when not loaded.
func AVUtilVersion() uint32 {
	if !loaded {
		return 0
	}
	return avutilVersion()
}

// AVFilterVersion returns the packed libavfilter version, or 0 when not loaded.
func AVFilterVersion() uint32 {
	if !loaded {
		return 0
	}
	return avfilterVersion()
}

// AVUtilMajor returns the libavutil major version, or 0 when not loaded.
func AVUtilMajor() int {
	return int(AVUtilVersion() >> 16)
}

// LibAVUtil returns the libavutil handle.
func LibAVUtil() uintptr { return libAVUtil }

// LibAVCodec returns the libavcodec handle.
func LibAVCodec() uintptr { return libAVCodec }

// LibAVFormat returns the libavformat handle.
func LibAVFormat() uintptr { return libAVFormat }

// LibAVFilter returns the libavfilter handle.
func LibAVFilter() uintptr { return libAVFilter }
