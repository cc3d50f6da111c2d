//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"io"
	"log/slog"

	"github.com/obinnaokechukwu/spherecmp"
	"github.com/schollz/progressbar/v3"
)

// progressSink counts decoded frames on a stderr spinner before handing
// them to the pipeline.
type progressSink struct {
	next spherecmp.FrameSink
	bar  *progressbar.ProgressBar
	log  *slog.Logger
}

// newProgressSink wraps next. A maxFrames of 0 means the total is unknown.
func newProgressSink(next spherecmp.FrameSink, w io.Writer, maxFrames int, log *slog.Logger) *progressSink {
	total := -1
	if maxFrames > 0 {
		total = maxFrames
	}
	bar := progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Decoding frames"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionClearOnFinish(),
	)
	return &progressSink{next: next, bar: bar, log: log}
}

func (s *progressSink) ProcessFrame(frame spherecmp.Frame) error {
	if frame == nil {
		// Exit keeps the decoded count; Finish would jump to the bar's max.
		if err := s.bar.Exit(); err != nil {
			s.log.Debug("progress bar exit failed", "error", err)
		}
	} else if err := s.bar.Add(1); err != nil {
		s.log.Debug("progress bar update failed", "error", err)
	}
	return s.next.ProcessFrame(frame)
}
