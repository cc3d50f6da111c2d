//go:build !ios && !android && (amd64 || arm64)

package avcodec

// CodecID represents FFmpeg codec identifiers (enum AVCodecID).
type CodecID int32

// Video codec IDs used by the tests. Decoding itself takes the ID straight
// from the stream parameters, so any codec libavcodec knows works.
const (
	CodecIDNone     CodecID = 0
	CodecIDMPEG4    CodecID = 12
	CodecIDRAWVIDEO CodecID = 13
	CodecIDH264     CodecID = 27
	CodecIDFFV1     CodecID = 33
	CodecIDHEVC     CodecID = 173
)
