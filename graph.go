//go:build !ios && !android && (amd64 || arm64)

package spherecmp

import (
	"fmt"
	"strings"

	"github.com/obinnaokechukwu/spherecmp/avutil"
)

// Fixed names of the graph endpoints.
const (
	SourceName = "buffer@src"
	SinkName   = "buffersink@sink"
)

// graphSession is a configured graph together with its endpoints and the
// scratch frame. The endpoints never outlive the graph: close frees both.
type graphSession struct {
	graph   Graph
	source  Source
	sink    Sink
	scratch ScratchFrame
}

func (s *graphSession) close() {
	if s.scratch != nil {
		s.scratch.Free()
		s.scratch = nil
	}
	if s.graph != nil {
		s.graph.Free()
		s.graph = nil
	}
	s.source = nil
	s.sink = nil
}

// GraphDescription returns the full filtergraph text for a chain fed by a
// buffer source with the given geometry and ending in a buffer sink. A
// blank chain connects the source straight to the sink.
func GraphDescription(width, height int, pixFmtName string, timeBase avutil.Rational, chain string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s=width=%d:height=%d:pix_fmt=%s:time_base=%d/%d,",
		SourceName, width, height, pixFmtName, timeBase.Num, timeBase.Den)
	if strings.TrimSpace(chain) != "" {
		b.WriteString(chain)
		b.WriteByte(',')
	}
	b.WriteString(SinkName)
	return b.String()
}

// newGraphSession builds and configures the graph for frames shaped like
// sample. Every failure is terminal and leaves nothing allocated.
func newGraphSession(backend Backend, sample Frame, timeBase avutil.Rational, chain string) (_ *graphSession, err error) {
	name := backend.PixelFormatName(sample.PixelFormat())
	if name == "" {
		return nil, fmt.Errorf("spherecmp: pixel format %d has no name: %w",
			sample.PixelFormat(), avutil.NewError(avutil.AVERROR_EINVAL, "av_get_pix_fmt_name"))
	}
	if !timeBase.Valid() {
		return nil, fmt.Errorf("spherecmp: invalid stream time base %s: %w",
			timeBase, avutil.NewError(avutil.AVERROR_EINVAL, "time_base"))
	}

	desc := GraphDescription(sample.Width(), sample.Height(), name, timeBase, chain)

	graph, err := backend.NewGraph()
	if err != nil {
		return nil, fmt.Errorf("spherecmp: failed to allocate filter graph: %w", err)
	}
	s := &graphSession{graph: graph}
	defer func() {
		if err != nil {
			s.close()
		}
	}()

	if err := graph.Parse(desc); err != nil {
		return nil, fmt.Errorf("spherecmp: failed to parse filter graph %q: %w", desc, err)
	}

	var ok bool
	if s.source, ok = graph.Source(SourceName); !ok {
		return nil, fmt.Errorf("spherecmp: %s not found in graph: %w",
			SourceName, avutil.NewError(avutil.AVERROR_BUG, "avfilter_graph_get_filter"))
	}
	if s.sink, ok = graph.Sink(SinkName); !ok {
		return nil, fmt.Errorf("spherecmp: %s not found in graph: %w",
			SinkName, avutil.NewError(avutil.AVERROR_BUG, "avfilter_graph_get_filter"))
	}

	if err := graph.Configure(); err != nil {
		return nil, fmt.Errorf("spherecmp: failed to configure filter graph: %w", err)
	}

	if s.scratch, err = backend.NewScratchFrame(); err != nil {
		return nil, fmt.Errorf("spherecmp: failed to allocate output frame: %w", err)
	}
	return s, nil
}
