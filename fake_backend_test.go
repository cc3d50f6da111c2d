//go:build !ios && !android && (amd64 || arm64)

package spherecmp

import (
	"fmt"
	"strings"

	"github.com/obinnaokechukwu/spherecmp/avutil"
)

// The fake backend interprets a tiny filter language so pipeline behaviour
// can be checked without FFmpeg:
//
//	null            passes frames through
//	pairwise        holds one frame back and releases it on the next input or at EOF
//	tag=key:value   appends a metadata entry to every frame
//	fail            rejects every pushed frame
//	eof             reports end of stream as soon as anything was pushed
//	stall           swallows end of stream, so the sink never reports EOF

type kv struct{ key, value string }

type fakeFrame struct {
	width, height int
	pixFmt        avutil.PixelFormat
	meta          []kv
}

func (f *fakeFrame) Width() int                      { return f.width }
func (f *fakeFrame) Height() int                     { return f.height }
func (f *fakeFrame) PixelFormat() avutil.PixelFormat { return f.pixFmt }

func newFakeFrame(meta ...kv) *fakeFrame {
	return &fakeFrame{width: 64, height: 32, pixFmt: avutil.PixelFormatYUV420P, meta: meta}
}

type fakeBackend struct {
	names map[avutil.PixelFormat]string

	noSource   bool
	graphErr   error
	scratchErr error

	graphsAllocated int
	configured      int
	descriptions    []string
	graphs          []*fakeGraph
	scratches       []*fakeScratch
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{names: map[avutil.PixelFormat]string{
		avutil.PixelFormatYUV420P: "yuv420p",
		avutil.PixelFormatRGB24:   "rgb24",
	}}
}

func (b *fakeBackend) PixelFormatName(pixFmt avutil.PixelFormat) string {
	return b.names[pixFmt]
}

func (b *fakeBackend) NewGraph() (Graph, error) {
	if b.graphErr != nil {
		return nil, b.graphErr
	}
	b.graphsAllocated++
	g := &fakeGraph{backend: b}
	b.graphs = append(b.graphs, g)
	return g, nil
}

func (b *fakeBackend) NewScratchFrame() (ScratchFrame, error) {
	if b.scratchErr != nil {
		return nil, b.scratchErr
	}
	s := &fakeScratch{}
	b.scratches = append(b.scratches, s)
	return s, nil
}

type stage interface {
	push(f *fakeFrame) []*fakeFrame
	flush() []*fakeFrame
}

type nullStage struct{}

func (nullStage) push(f *fakeFrame) []*fakeFrame { return []*fakeFrame{f} }
func (nullStage) flush() []*fakeFrame            { return nil }

type pairwiseStage struct{ held *fakeFrame }

func (s *pairwiseStage) push(f *fakeFrame) []*fakeFrame {
	prev := s.held
	s.held = f
	if prev == nil {
		return nil
	}
	return []*fakeFrame{prev}
}

func (s *pairwiseStage) flush() []*fakeFrame {
	if s.held == nil {
		return nil
	}
	out := []*fakeFrame{s.held}
	s.held = nil
	return out
}

type tagStage struct{ entry kv }

func (s tagStage) push(f *fakeFrame) []*fakeFrame {
	c := *f
	c.meta = append(append([]kv(nil), f.meta...), s.entry)
	return []*fakeFrame{&c}
}

func (tagStage) flush() []*fakeFrame { return nil }

type fakeGraph struct {
	backend *fakeBackend

	desc   string
	stages []stage
	failOn bool
	eofNow bool
	stall  bool

	hasSource, hasSink bool
	configured         bool

	queue  []*fakeFrame
	ended  bool
	pushes int
	freed  int
}

func (g *fakeGraph) Parse(desc string) error {
	g.desc = desc
	g.backend.descriptions = append(g.backend.descriptions, desc)

	parts := strings.Split(desc, ",")
	if len(parts) < 2 || !strings.HasPrefix(parts[0], SourceName+"=") || parts[len(parts)-1] != SinkName {
		return avutil.NewError(avutil.AVERROR_EINVAL, "avfilter_graph_parse2")
	}
	for _, p := range parts[1 : len(parts)-1] {
		name, args, _ := strings.Cut(p, "=")
		switch name {
		case "null":
			g.stages = append(g.stages, nullStage{})
		case "pairwise":
			g.stages = append(g.stages, &pairwiseStage{})
		case "tag":
			k, v, ok := strings.Cut(args, ":")
			if !ok {
				return avutil.NewError(avutil.AVERROR_EINVAL, "avfilter_graph_parse2")
			}
			g.stages = append(g.stages, tagStage{kv{k, v}})
		case "fail":
			g.failOn = true
		case "eof":
			g.eofNow = true
		case "stall":
			g.stall = true
		default:
			return avutil.NewError(avutil.AVERROR_FILTER_NOT_FOUND, "avfilter_graph_parse2")
		}
	}
	g.hasSource = !g.backend.noSource
	g.hasSink = true
	return nil
}

func (g *fakeGraph) Source(name string) (Source, bool) {
	if name != SourceName || !g.hasSource {
		return nil, false
	}
	return (*fakeSource)(g), true
}

func (g *fakeGraph) Sink(name string) (Sink, bool) {
	if name != SinkName || !g.hasSink {
		return nil, false
	}
	return (*fakeSink)(g), true
}

func (g *fakeGraph) Configure() error {
	if g.configured {
		return fmt.Errorf("graph configured twice")
	}
	g.configured = true
	g.backend.configured++
	return nil
}

func (g *fakeGraph) Free() { g.freed++ }

type fakeSource fakeGraph

func (s *fakeSource) WriteFrame(frame Frame) error {
	g := (*fakeGraph)(s)
	if g.failOn {
		return avutil.NewError(avutil.AVERROR_INVALIDDATA, "av_buffersrc_add_frame_flags")
	}
	g.pushes++
	if g.eofNow {
		g.ended = true
		return nil
	}

	if frame == nil {
		var out []*fakeFrame
		for i, st := range g.stages {
			flushed := st.flush()
			// Feed what this stage releases through the stages after it.
			for _, next := range g.stages[i+1:] {
				var moved []*fakeFrame
				for _, f := range flushed {
					moved = append(moved, next.push(f)...)
				}
				flushed = moved
			}
			out = append(out, flushed...)
		}
		g.queue = append(g.queue, out...)
		g.ended = !g.stall
		return nil
	}

	frames := []*fakeFrame{frame.(*fakeFrame)}
	for _, st := range g.stages {
		var next []*fakeFrame
		for _, f := range frames {
			next = append(next, st.push(f)...)
		}
		frames = next
	}
	g.queue = append(g.queue, frames...)
	return nil
}

type fakeSink fakeGraph

func (s *fakeSink) GetFrame(dst ScratchFrame) error {
	g := (*fakeGraph)(s)
	if len(g.queue) > 0 {
		f := g.queue[0]
		g.queue = g.queue[1:]
		dst.(*fakeScratch).meta = f.meta
		return nil
	}
	if g.ended {
		return avutil.NewError(avutil.AVERROR_EOF, "av_buffersink_get_frame")
	}
	return avutil.NewError(avutil.AVERROR_EAGAIN, "av_buffersink_get_frame")
}

type fakeScratch struct {
	meta   []kv
	unrefs int
	freed  int
}

func (s *fakeScratch) VisitMetadata(prefix string, fn func(key, value string) error) error {
	for _, e := range s.meta {
		if !strings.HasPrefix(e.key, prefix) {
			continue
		}
		if err := fn(e.key, e.value); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeScratch) Unref() {
	s.meta = nil
	s.unrefs++
}

func (s *fakeScratch) Free() { s.freed++ }
