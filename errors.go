//go:build !ios && !android && (amd64 || arm64)

package spherecmp

import (
	"github.com/obinnaokechukwu/spherecmp/avutil"
)

// FFmpegError is an error from FFmpeg operations.
// It contains the raw FFmpeg error code and a human-readable message.
type FFmpegError = avutil.Error

// Error code constants re-exported from avutil
const (
	AVERROR_EOF     = avutil.AVERROR_EOF
	AVERROR_EAGAIN  = avutil.AVERROR_EAGAIN
	AVERROR_EINVAL  = avutil.AVERROR_EINVAL
	AVERROR_ENOMEM  = avutil.AVERROR_ENOMEM
	AVERROR_BUG     = avutil.AVERROR_BUG
	AVERROR_UNKNOWN = avutil.AVERROR_UNKNOWN
)

// ErrorCode returns the FFmpeg error code from an error, or 0 if not an FFmpeg error.
func ErrorCode(err error) int32 {
	return avutil.Code(err)
}

// ExitCode maps the result of a run to a process exit status: 0 on success,
// the FFmpeg code carried by err, or AVERROR_UNKNOWN when err has none.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code := avutil.Code(err); code < 0 {
		return int(code)
	}
	return int(AVERROR_UNKNOWN)
}
