//go:build !ios && !android && (amd64 || arm64)

// Package avfilter provides bindings to FFmpeg's libavfilter: graph parsing
// and configuration, named filter lookup, and the buffer source/sink pair.
package avfilter

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/spherecmp/avutil"
	"github.com/obinnaokechukwu/spherecmp/internal/bindings"
)

// Opaque types
type (
	// Graph represents an AVFilterGraph
	Graph = unsafe.Pointer
	// Context represents an AVFilterContext
	Context = unsafe.Pointer
	// InOut represents an AVFilterInOut
	InOut = unsafe.Pointer
)

var (
	initOnce sync.Once
	initErr  error
)

var (
	avfilter_graph_alloc      func() unsafe.Pointer
	avfilter_graph_free       func(graph *Graph)
	avfilter_graph_parse2     func(graph unsafe.Pointer, filters string, inputs, outputs *InOut) int32
	avfilter_graph_get_filter func(graph unsafe.Pointer, name string) unsafe.Pointer
	avfilter_graph_config     func(graph, logCtx unsafe.Pointer) int32
	avfilter_inout_free       func(inout *InOut)

	av_buffersrc_add_frame_flags func(ctx, frame unsafe.Pointer, flags int32) int32
	av_buffersink_get_frame      func(ctx, frame unsafe.Pointer) int32
)

// Buffer source flags
const (
	AV_BUFFERSRC_FLAG_NO_CHECK_FORMAT = 1 // Do not check for format changes
	AV_BUFFERSRC_FLAG_PUSH            = 4 // Push frame immediately
	AV_BUFFERSRC_FLAG_KEEP_REF        = 8 // Keep reference to frame
)

// Init binds the libavfilter symbols. Safe to call multiple times.
func Init() error {
	initOnce.Do(func() {
		initErr = initLibrary()
	})
	return initErr
}

func initLibrary() error {
	if err := bindings.Load(); err != nil {
		return fmt.Errorf("avfilter: failed to load library: %w", err)
	}
	lib := bindings.LibAVFilter()
	if lib == 0 {
		return errors.New("avfilter: library handle missing")
	}

	purego.RegisterLibFunc(&avfilter_graph_alloc, lib, "avfilter_graph_alloc")
	purego.RegisterLibFunc(&avfilter_graph_free, lib, "avfilter_graph_free")
	purego.RegisterLibFunc(&avfilter_graph_parse2, lib, "avfilter_graph_parse2")
	purego.RegisterLibFunc(&avfilter_graph_get_filter, lib, "avfilter_graph_get_filter")
	purego.RegisterLibFunc(&avfilter_graph_config, lib, "avfilter_graph_config")
	purego.RegisterLibFunc(&avfilter_inout_free, lib, "avfilter_inout_free")

	purego.RegisterLibFunc(&av_buffersrc_add_frame_flags, lib, "av_buffersrc_add_frame_flags")
	purego.RegisterLibFunc(&av_buffersink_get_frame, lib, "av_buffersink_get_frame")
	return nil
}

// GraphAlloc allocates an empty filter graph, nil on failure.
func GraphAlloc() Graph {
	if err := Init(); err != nil {
		return nil
	}
	return avfilter_graph_alloc()
}

// GraphFree frees a graph with all of its filters and sets *graph to nil.
func GraphFree(graph *Graph) {
	if graph == nil || *graph == nil {
		return
	}
	if err := Init(); err != nil {
		return
	}
	avfilter_graph_free(graph)
	*graph = nil
}

// GraphParse2 adds the filters described by filters to graph. The returned
// inputs and outputs list the pads left unconnected; the caller frees them
// with InOutFree.
func GraphParse2(graph Graph, filters string) (inputs, outputs InOut, err error) {
	if graph == nil {
		return nil, nil, errors.New("avfilter: nil graph")
	}
	if err := Init(); err != nil {
		return nil, nil, err
	}
	ret := avfilter_graph_parse2(graph, filters, &inputs, &outputs)
	if ret < 0 {
		return nil, nil, avutil.NewError(ret, "avfilter_graph_parse2")
	}
	return inputs, outputs, nil
}

// GraphGetFilter returns the filter instance called name, or nil.
func GraphGetFilter(graph Graph, name string) Context {
	if graph == nil {
		return nil
	}
	if err := Init(); err != nil {
		return nil
	}
	return avfilter_graph_get_filter(graph, name)
}

// GraphConfig checks the links and negotiates formats across the graph.
// The graph itself is the logging context.
func GraphConfig(graph Graph) error {
	if graph == nil {
		return errors.New("avfilter: nil graph")
	}
	if err := Init(); err != nil {
		return err
	}
	if ret := avfilter_graph_config(graph, graph); ret < 0 {
		return avutil.NewError(ret, "avfilter_graph_config")
	}
	return nil
}

// InOutFree frees an AVFilterInOut list and sets *inout to nil.
func InOutFree(inout *InOut) {
	if inout == nil || *inout == nil {
		return
	}
	if err := Init(); err != nil {
		return
	}
	avfilter_inout_free(inout)
	*inout = nil
}

// BufferSrcAddFrameFlags pushes frame into a buffer source. A nil frame
// marks end of stream.
func BufferSrcAddFrameFlags(ctx Context, frame avutil.Frame, flags int32) error {
	if ctx == nil {
		return errors.New("avfilter: nil context")
	}
	if err := Init(); err != nil {
		return err
	}
	if ret := av_buffersrc_add_frame_flags(ctx, frame, flags); ret < 0 {
		return avutil.NewError(ret, "av_buffersrc_add_frame_flags")
	}
	return nil
}

// BufferSinkGetFrame moves the next filtered frame into frame. The
// flow-control results AVERROR(EAGAIN) and AVERROR_EOF come back as
// *avutil.Error like any other failure; see avutil.IsAgain and avutil.IsEOF.
func BufferSinkGetFrame(ctx Context, frame avutil.Frame) error {
	if ctx == nil {
		return errors.New("avfilter: nil context")
	}
	if err := Init(); err != nil {
		return err
	}
	if ret := av_buffersink_get_frame(ctx, frame); ret < 0 {
		return avutil.NewError(ret, "av_buffersink_get_frame")
	}
	return nil
}
