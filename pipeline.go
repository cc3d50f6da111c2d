//go:build !ios && !android && (amd64 || arm64)

package spherecmp

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/obinnaokechukwu/spherecmp/avutil"
)

// DefaultMetadataPrefix selects the frame metadata written by the ssim360
// filter.
const DefaultMetadataPrefix = "lavfi.ssim360"

// ErrPipelineClosed is returned when a frame reaches a closed pipeline.
var ErrPipelineClosed = errors.New("spherecmp: pipeline is closed")

// Options configures a Pipeline.
type Options struct {
	// Filters is the user chain placed between the buffer source and the
	// buffer sink, in libavfilter syntax (e.g. "ssim360=...").
	Filters string
	// TimeBase of the input stream; its denominator must be positive.
	TimeBase avutil.Rational

	Backend  Backend  // required
	Reporter Reporter // required

	Metrics *Metrics     // optional
	Logger  *slog.Logger // optional, discards when nil

	// MetadataPrefix selects the metadata entries reported for each output
	// frame. Defaults to DefaultMetadataPrefix.
	MetadataPrefix string
}

// Pipeline pushes frames through a filter graph built from the first frame
// it sees and reports every frame the graph emits. It implements FrameSink.
//
// A Pipeline is not safe for concurrent use.
type Pipeline struct {
	opts    Options
	log     *slog.Logger
	session *graphSession // nil until the first real frame
	frames  uint64
	err     error // first fatal error, returned by every later call
	closed  bool
}

// NewPipeline creates a pipeline. No graph is built until the first frame.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Backend == nil {
		return nil, errors.New("spherecmp: pipeline needs a backend")
	}
	if opts.Reporter == nil {
		return nil, errors.New("spherecmp: pipeline needs a reporter")
	}
	if opts.MetadataPrefix == "" {
		opts.MetadataPrefix = DefaultMetadataPrefix
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{opts: opts, log: logger}, nil
}

// Initialized reports whether the filter graph has been built.
func (p *Pipeline) Initialized() bool {
	return p.session != nil
}

// FramesEmitted returns the number of frames pulled from the sink so far.
func (p *Pipeline) FramesEmitted() uint64 {
	return p.frames
}

// ProcessFrame pushes frame into the graph and reports everything the graph
// has ready. A nil frame flushes the graph. The first real frame builds the
// graph; a nil frame before that is a no-op.
//
// Failures are permanent: once ProcessFrame returns an error, every later
// call returns the same error without touching the graph.
func (p *Pipeline) ProcessFrame(frame Frame) error {
	if p.closed {
		return ErrPipelineClosed
	}
	if p.err != nil {
		return p.err
	}
	if err := p.process(frame); err != nil {
		p.err = err
		return err
	}
	return nil
}

// Err returns the error that stopped the pipeline, if any.
func (p *Pipeline) Err() error {
	return p.err
}

func (p *Pipeline) process(frame Frame) error {
	if p.session == nil {
		if frame == nil {
			p.log.Debug("end of stream before any frame, nothing to flush")
			return nil
		}
		if err := p.initialize(frame); err != nil {
			return err
		}
	}

	flushing := frame == nil
	if err := p.session.source.WriteFrame(frame); err != nil {
		return fmt.Errorf("spherecmp: failed to push frame into %s: %w", SourceName, err)
	}
	p.opts.Metrics.observePush(flushing)

	return p.drain(flushing)
}

func (p *Pipeline) initialize(sample Frame) error {
	s, err := newGraphSession(p.opts.Backend, sample, p.opts.TimeBase, p.opts.Filters)
	if err != nil {
		p.log.Error("filter graph setup failed", "error", err)
		return err
	}
	p.session = s
	p.opts.Metrics.observeGraphInit()
	p.log.Debug("filter graph configured",
		"width", sample.Width(),
		"height", sample.Height(),
		"pix_fmt", int(sample.PixelFormat()),
		"time_base", p.opts.TimeBase.String(),
		"filters", p.opts.Filters)
	return nil
}

// drain pulls frames until the sink asks for more input, or, when flushing,
// until it reports end of stream. Any other outcome is fatal, including the
// other phase's flow-control code.
func (p *Pipeline) drain(flushing bool) error {
	s := p.session
	for {
		err := s.sink.GetFrame(s.scratch)
		if err != nil {
			if !flushing && avutil.IsAgain(err) {
				return nil
			}
			if flushing && avutil.IsEOF(err) {
				return nil
			}
			return fmt.Errorf("spherecmp: failed to pull frame from %s: %w", SinkName, err)
		}

		seq := p.frames
		p.frames++
		err = p.report(seq, s.scratch)
		s.scratch.Unref()
		if err != nil {
			return err
		}
	}
}

func (p *Pipeline) report(seq uint64, frame ScratchFrame) error {
	if err := p.opts.Reporter.ReportFrame(seq); err != nil {
		return fmt.Errorf("spherecmp: failed to report frame %d: %w", seq, err)
	}
	return frame.VisitMetadata(p.opts.MetadataPrefix, func(key, value string) error {
		if err := p.opts.Reporter.ReportMetadata(key, value); err != nil {
			return fmt.Errorf("spherecmp: failed to report %s of frame %d: %w", key, seq, err)
		}
		return nil
	})
}

// Close releases the filter graph and the scratch frame. It is safe to call
// on a pipeline that never built a graph, and more than once.
func (p *Pipeline) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if p.session != nil {
		p.session.close()
		p.session = nil
	}
	return nil
}
