//go:build !ios && !android && (amd64 || arm64)

package avutil

// PixelFormat is an FFmpeg AVPixelFormat value.
type PixelFormat int32

// A few common pixel formats (from FFmpeg's pixfmt.h). Any other value is
// resolved by name through libavutil.
const (
	PixelFormatNone     PixelFormat = -1
	PixelFormatYUV420P  PixelFormat = 0
	PixelFormatYUYV422  PixelFormat = 1
	PixelFormatRGB24    PixelFormat = 2
	PixelFormatBGR24    PixelFormat = 3
	PixelFormatYUV422P  PixelFormat = 4
	PixelFormatYUV444P  PixelFormat = 5
	PixelFormatGray8    PixelFormat = 8
	PixelFormatYUVJ420P PixelFormat = 12
	PixelFormatNV12     PixelFormat = 23
	PixelFormatRGBA     PixelFormat = 26
	PixelFormatBGRA     PixelFormat = 28
)

// MediaType is an FFmpeg AVMediaType value.
type MediaType int32

const (
	MediaTypeUnknown MediaType = -1
	MediaTypeVideo   MediaType = 0
	MediaTypeAudio   MediaType = 1
)
