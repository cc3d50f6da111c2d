//go:build !ios && !android && (amd64 || arm64)

package spherecmp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Reporter receives every frame pulled from the sink: first its sequence
// number, then each selected metadata entry. Strings passed to a Reporter
// are copies and may be retained.
type Reporter interface {
	ReportFrame(seq uint64) error
	ReportMetadata(key, value string) error
}

// TextReporter writes the plain report format:
//
//	frame 0
//	lavfi.ssim360.all=0.95
//	frame 1
//	...
//
// Output is buffered; call Flush (or Close) when done.
type TextReporter struct {
	w *bufio.Writer
}

// NewTextReporter returns a TextReporter writing to w.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: bufio.NewWriter(w)}
}

// ReportFrame implements Reporter.
func (r *TextReporter) ReportFrame(seq uint64) error {
	_, err := fmt.Fprintf(r.w, "frame %d\n", seq)
	return err
}

// ReportMetadata implements Reporter.
func (r *TextReporter) ReportMetadata(key, value string) error {
	_, err := fmt.Fprintf(r.w, "%s=%s\n", key, value)
	return err
}

// Flush writes any buffered output.
func (r *TextReporter) Flush() error {
	return r.w.Flush()
}

// Close flushes the reporter. The underlying writer is not closed.
func (r *TextReporter) Close() error {
	return r.Flush()
}

// MultiReporter forwards every call to each reporter in order.
type MultiReporter []Reporter

// ReportFrame implements Reporter.
func (m MultiReporter) ReportFrame(seq uint64) error {
	var errs []error
	for _, r := range m {
		if err := r.ReportFrame(seq); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ReportMetadata implements Reporter.
func (m MultiReporter) ReportMetadata(key, value string) error {
	var errs []error
	for _, r := range m {
		if err := r.ReportMetadata(key, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
