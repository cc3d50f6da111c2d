//go:build !ios && !android && (amd64 || arm64)

// Package spherecmp runs decoded video frames through a libavfilter graph
// and reports the per-frame metadata the graph's metric filter attaches,
// typically the ssim360 spherical similarity scores.
//
// The graph is built lazily from the first frame: a buffer source shaped
// like that frame, the user's filter chain, and a buffer sink. Each frame
// is pushed into the source and the sink is drained until it asks for more
// input; at end of stream the graph is flushed until the sink is exhausted.
//
// Basic usage:
//
//	dec, err := spherecmp.OpenDecoder("input.mkv", spherecmp.DecoderOptions{})
//	if err != nil {
//	    return err
//	}
//	defer dec.Close()
//
//	backend, err := spherecmp.NewFFmpegBackend()
//	if err != nil {
//	    return err
//	}
//	report := spherecmp.NewTextReporter(os.Stdout)
//	defer report.Close()
//
//	p, err := spherecmp.NewPipeline(spherecmp.Options{
//	    Filters:  "split[a][b];[a][b]ssim360",
//	    TimeBase: dec.StreamTimeBase(),
//	    Backend:  backend,
//	    Reporter: report,
//	})
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	return dec.Run(p)
//
// FFmpeg is loaded at runtime with purego; set SPHERECMP_FFMPEG_LIB_DIR to
// point at a specific build.
package spherecmp

import (
	"github.com/obinnaokechukwu/spherecmp/avutil"
	"github.com/obinnaokechukwu/spherecmp/internal/bindings"
)

// Init loads the FFmpeg libraries. It is called by OpenDecoder and
// NewFFmpegBackend, and is safe to call multiple times.
func Init() error {
	return bindings.Load()
}

// IsLoaded returns true if FFmpeg libraries have been successfully loaded.
func IsLoaded() bool {
	return bindings.IsLoaded()
}

// Version returns the libavutil and libavfilter versions.
func Version() (avutilVersion, avfilterVersion uint32) {
	return bindings.AVUtilVersion(), bindings.AVFilterVersion()
}

// Re-export common types for convenience
type (
	// Rational represents a rational number (fraction).
	Rational = avutil.Rational

	// PixelFormat represents video pixel formats.
	PixelFormat = avutil.PixelFormat
)
