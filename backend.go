//go:build !ios && !android && (amd64 || arm64)

package spherecmp

import (
	"github.com/obinnaokechukwu/spherecmp/avutil"
)

// Frame is a decoded video frame handed to the pipeline. Only the geometry
// is read by the pipeline itself; the backend's Source decides how to feed
// the picture into its graph.
type Frame interface {
	Width() int
	Height() int
	PixelFormat() avutil.PixelFormat
}

// FrameSink consumes decoded frames. ProcessFrame is called once per frame
// and exactly once more with a nil frame when the stream is exhausted. A
// non-nil error is fatal: the caller must stop feeding frames.
type FrameSink interface {
	ProcessFrame(frame Frame) error
}

// Backend builds the filter graphs and frame buffers a Pipeline runs on.
type Backend interface {
	// PixelFormatName returns the canonical name of a pixel format, or ""
	// when the format is unknown.
	PixelFormatName(pixFmt avutil.PixelFormat) string
	NewGraph() (Graph, error)
	NewScratchFrame() (ScratchFrame, error)
}

// Graph is an unconfigured filter graph. Source and Sink handles are valid
// only until Free.
type Graph interface {
	// Parse adds the filters in desc to the graph. It fails when the
	// description leaves inputs or outputs unconnected.
	Parse(desc string) error
	Source(name string) (Source, bool)
	Sink(name string) (Sink, bool)
	// Configure negotiates formats across the graph. Called once.
	Configure() error
	Free()
}

// Source is the endpoint frames are pushed into.
type Source interface {
	// WriteFrame pushes frame; a nil frame marks end of stream.
	WriteFrame(frame Frame) error
}

// Sink is the endpoint filtered frames are pulled from.
type Sink interface {
	// GetFrame moves the next output frame into dst. When nothing is ready
	// it returns an *avutil.Error carrying AVERROR(EAGAIN), and after end
	// of stream AVERROR_EOF.
	GetFrame(dst ScratchFrame) error
}

// ScratchFrame is the reusable buffer the Sink writes into. Its contents
// are only valid until the next GetFrame or Unref.
type ScratchFrame interface {
	// VisitMetadata calls fn for each metadata entry whose key starts with
	// prefix, in insertion order, stopping at the first error.
	VisitMetadata(prefix string, fn func(key, value string) error) error
	Unref()
	Free()
}
