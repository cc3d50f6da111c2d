//go:build !ios && !android && (amd64 || arm64)

package avutil

import (
	"errors"
	"fmt"
	"syscall"
)

// FFmpeg error codes (AVERROR values).
const (
	AVERROR_EOF               int32 = -541478725             // End of file
	AVERROR_EAGAIN            int32 = -int32(syscall.EAGAIN) // Resource temporarily unavailable
	AVERROR_EINVAL            int32 = -int32(syscall.EINVAL) // Invalid argument
	AVERROR_ENOMEM            int32 = -int32(syscall.ENOMEM) // Out of memory
	AVERROR_FILTER_NOT_FOUND  int32 = -1279870712            // Filter not found
	AVERROR_DECODER_NOT_FOUND int32 = -1128613112            // Decoder not found
	AVERROR_INVALIDDATA       int32 = -1094995529            // Invalid data
	AVERROR_BUG               int32 = -558323010             // Bug detected
	AVERROR_UNKNOWN           int32 = -1313558101            // Unknown error
)

// Error is a failed FFmpeg call or a condition reported with an FFmpeg code.
type Error struct {
	Code    int32  // Raw FFmpeg error code
	Message string // Human-readable message
	Op      string // Operation that failed
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("ffmpeg %s: %s (code %d)", e.Op, e.Message, e.Code)
}

// NewError creates an Error from a return code. It returns nil if code >= 0.
func NewError(code int32, op string) error {
	if code >= 0 {
		return nil
	}
	return &Error{
		Code:    code,
		Message: ErrorString(code),
		Op:      op,
	}
}

// IsEOF reports whether err carries AVERROR_EOF.
func IsEOF(err error) bool {
	return Code(err) == AVERROR_EOF
}

// IsAgain reports whether err carries AVERROR(EAGAIN).
func IsAgain(err error) bool {
	return Code(err) == AVERROR_EAGAIN
}

// Code returns the FFmpeg code carried by err, or 0 if there is none.
func Code(err error) int32 {
	var ffErr *Error
	if errors.As(err, &ffErr) {
		return ffErr.Code
	}
	return 0
}

func fallbackErrorString(code int32) string {
	switch code {
	case AVERROR_EOF:
		return "End of file"
	case AVERROR_EAGAIN:
		return "Resource temporarily unavailable"
	case AVERROR_EINVAL:
		return "Invalid argument"
	case AVERROR_ENOMEM:
		return "Cannot allocate memory"
	case AVERROR_FILTER_NOT_FOUND:
		return "Filter not found"
	case AVERROR_DECODER_NOT_FOUND:
		return "Decoder not found"
	case AVERROR_BUG:
		return "Internal bug, should not have happened"
	}
	return fmt.Sprintf("Error number %d occurred", code)
}
