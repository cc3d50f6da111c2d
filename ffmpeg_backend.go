//go:build !ios && !android && (amd64 || arm64)

package spherecmp

import (
	"errors"
	"fmt"

	"github.com/obinnaokechukwu/spherecmp/avfilter"
	"github.com/obinnaokechukwu/spherecmp/avutil"
)

// VideoFrame is a decoded AVFrame seen through the Frame interface. It does
// not own the AVFrame.
type VideoFrame struct {
	ptr avutil.Frame
}

// WrapFrame wraps an AVFrame pointer.
func WrapFrame(ptr avutil.Frame) *VideoFrame {
	return &VideoFrame{ptr: ptr}
}

// Width returns the frame width in pixels.
func (f *VideoFrame) Width() int { return int(avutil.GetFrameWidth(f.ptr)) }

// Height returns the frame height in pixels.
func (f *VideoFrame) Height() int { return int(avutil.GetFrameHeight(f.ptr)) }

// PixelFormat returns the frame's pixel format.
func (f *VideoFrame) PixelFormat() avutil.PixelFormat {
	return avutil.PixelFormat(avutil.GetFrameFormat(f.ptr))
}

// Raw returns the underlying AVFrame pointer.
func (f *VideoFrame) Raw() avutil.Frame { return f.ptr }

// rawFrame is implemented by frames backed by an AVFrame.
type rawFrame interface {
	Raw() avutil.Frame
}

// FFmpegBackend runs pipelines on libavfilter.
type FFmpegBackend struct{}

// NewFFmpegBackend loads the FFmpeg libraries and binds libavfilter.
func NewFFmpegBackend() (*FFmpegBackend, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	if err := avfilter.Init(); err != nil {
		return nil, fmt.Errorf("spherecmp: failed to initialize avfilter: %w", err)
	}
	// Reject before any frame is reported rather than on the first
	// metadata read.
	if err := avutil.CheckFrameLayout(); err != nil {
		return nil, fmt.Errorf("spherecmp: %w", err)
	}
	return &FFmpegBackend{}, nil
}

// PixelFormatName implements Backend.
func (*FFmpegBackend) PixelFormatName(pixFmt avutil.PixelFormat) string {
	return avutil.PixFmtName(pixFmt)
}

// NewGraph implements Backend.
func (*FFmpegBackend) NewGraph() (Graph, error) {
	g := avfilter.GraphAlloc()
	if g == nil {
		return nil, avutil.NewError(avutil.AVERROR_ENOMEM, "avfilter_graph_alloc")
	}
	return &ffmpegGraph{graph: g}, nil
}

// NewScratchFrame implements Backend.
func (*FFmpegBackend) NewScratchFrame() (ScratchFrame, error) {
	f := avutil.FrameAlloc()
	if f == nil {
		return nil, avutil.NewError(avutil.AVERROR_ENOMEM, "av_frame_alloc")
	}
	return &ffmpegScratch{ptr: f}, nil
}

type ffmpegGraph struct {
	graph avfilter.Graph
}

func (g *ffmpegGraph) Parse(desc string) error {
	inputs, outputs, err := avfilter.GraphParse2(g.graph, desc)
	if err != nil {
		return err
	}
	if inputs != nil || outputs != nil {
		avfilter.InOutFree(&inputs)
		avfilter.InOutFree(&outputs)
		return fmt.Errorf("filter graph leaves unconnected pads: %w",
			avutil.NewError(avutil.AVERROR_EINVAL, "avfilter_graph_parse2"))
	}
	return nil
}

func (g *ffmpegGraph) Source(name string) (Source, bool) {
	ctx := avfilter.GraphGetFilter(g.graph, name)
	if ctx == nil {
		return nil, false
	}
	return &bufferSource{ctx: ctx}, true
}

func (g *ffmpegGraph) Sink(name string) (Sink, bool) {
	ctx := avfilter.GraphGetFilter(g.graph, name)
	if ctx == nil {
		return nil, false
	}
	return &bufferSink{ctx: ctx}, true
}

func (g *ffmpegGraph) Configure() error {
	return avfilter.GraphConfig(g.graph)
}

func (g *ffmpegGraph) Free() {
	avfilter.GraphFree(&g.graph)
}

type bufferSource struct {
	ctx avfilter.Context
}

// WriteFrame pushes a new reference to frame; the caller keeps its own.
func (s *bufferSource) WriteFrame(frame Frame) error {
	var ptr avutil.Frame
	if frame != nil {
		rf, ok := frame.(rawFrame)
		if !ok || rf.Raw() == nil {
			return fmt.Errorf("%T is not backed by an AVFrame: %w",
				frame, avutil.NewError(avutil.AVERROR_EINVAL, "av_buffersrc_add_frame_flags"))
		}
		ptr = rf.Raw()
	}
	return avfilter.BufferSrcAddFrameFlags(s.ctx, ptr, avfilter.AV_BUFFERSRC_FLAG_KEEP_REF)
}

type bufferSink struct {
	ctx avfilter.Context
}

func (s *bufferSink) GetFrame(dst ScratchFrame) error {
	f, ok := dst.(*ffmpegScratch)
	if !ok || f == nil || f.ptr == nil {
		return errors.New("spherecmp: scratch frame was not allocated by FFmpegBackend")
	}
	return avfilter.BufferSinkGetFrame(s.ctx, f.ptr)
}

type ffmpegScratch struct {
	ptr avutil.Frame
}

func (f *ffmpegScratch) VisitMetadata(prefix string, fn func(key, value string) error) error {
	dict, err := avutil.GetFrameMetadata(f.ptr)
	if err != nil || dict == nil {
		return err
	}
	var entry avutil.DictionaryEntry
	for {
		entry = avutil.DictGet(dict, prefix, entry, avutil.AV_DICT_IGNORE_SUFFIX)
		if entry == nil {
			return nil
		}
		if err := fn(avutil.DictEntryKey(entry), avutil.DictEntryValue(entry)); err != nil {
			return err
		}
	}
}

func (f *ffmpegScratch) Unref() {
	if f == nil {
		return
	}
	avutil.FrameUnref(f.ptr)
}

func (f *ffmpegScratch) Free() {
	if f == nil {
		return
	}
	avutil.FrameFree(&f.ptr)
}
