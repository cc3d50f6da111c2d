//go:build !ios && !android && (amd64 || arm64)

// Package avformat provides bindings to the demuxing half of FFmpeg's
// libavformat.
package avformat

import (
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/spherecmp/avcodec"
	"github.com/obinnaokechukwu/spherecmp/avutil"
	"github.com/obinnaokechukwu/spherecmp/internal/bindings"
)

// FormatContext is an opaque FFmpeg AVFormatContext pointer.
type FormatContext = unsafe.Pointer

// InputFormat is an opaque FFmpeg AVInputFormat pointer.
type InputFormat = unsafe.Pointer

// Stream is an opaque FFmpeg AVStream pointer.
type Stream = unsafe.Pointer

var (
	avformatOpenInput      func(ctx *unsafe.Pointer, url string, fmt, options unsafe.Pointer) int32
	avformatCloseInput     func(ctx *unsafe.Pointer)
	avformatFindStreamInfo func(ctx unsafe.Pointer, options *unsafe.Pointer) int32
	avReadFrame            func(ctx, pkt unsafe.Pointer) int32

	bindingsRegistered bool
)

func init() {
	registerBindings()
}

func registerBindings() {
	if bindingsRegistered {
		return
	}
	if err := bindings.Load(); err != nil {
		return
	}
	lib := bindings.LibAVFormat()
	if lib == 0 {
		return
	}

	purego.RegisterLibFunc(&avformatOpenInput, lib, "avformat_open_input")
	purego.RegisterLibFunc(&avformatCloseInput, lib, "avformat_close_input")
	purego.RegisterLibFunc(&avformatFindStreamInfo, lib, "avformat_find_stream_info")
	purego.RegisterLibFunc(&avReadFrame, lib, "av_read_frame")

	bindingsRegistered = true
}

// OpenInput opens url and reads its header. On failure *ctx is left nil.
func OpenInput(ctx *FormatContext, url string, fmt InputFormat, options *avutil.Dictionary) error {
	if avformatOpenInput == nil {
		return bindings.ErrNotLoaded
	}
	var opts unsafe.Pointer
	if options != nil {
		opts = *options
	}
	ret := avformatOpenInput(ctx, url, fmt, opts)
	runtime.KeepAlive(url)
	if ret < 0 {
		return avutil.NewError(ret, "avformat_open_input")
	}
	return nil
}

// CloseInput closes an input opened with OpenInput and sets *ctx to nil.
func CloseInput(ctx *FormatContext) {
	if ctx == nil || *ctx == nil || avformatCloseInput == nil {
		return
	}
	avformatCloseInput(ctx)
	*ctx = nil
}

// FindStreamInfo probes packets to fill in stream parameters.
func FindStreamInfo(ctx FormatContext, options *avutil.Dictionary) error {
	if avformatFindStreamInfo == nil {
		return bindings.ErrNotLoaded
	}
	ret := avformatFindStreamInfo(ctx, options)
	if ret < 0 {
		return avutil.NewError(ret, "avformat_find_stream_info")
	}
	return nil
}

// ReadFrame reads the next packet of any stream. AVERROR_EOF marks the end.
func ReadFrame(ctx FormatContext, pkt avcodec.Packet) error {
	if avReadFrame == nil {
		return bindings.ErrNotLoaded
	}
	ret := avReadFrame(ctx, pkt)
	if ret < 0 {
		return avutil.NewError(ret, "av_read_frame")
	}
	return nil
}

// AVFormatContext struct field offsets (FFmpeg 6.x and 7.x)
const (
	offsetNumStreams = 44 // unsigned int nb_streams
	offsetStreams    = 48 // AVStream **streams
)

// GetNumStreams returns the number of streams in the container.
func GetNumStreams(ctx FormatContext) int {
	if ctx == nil {
		return 0
	}
	return int(*(*uint32)(unsafe.Add(ctx, offsetNumStreams)))
}

// GetStream returns the stream at index, or nil when out of range.
func GetStream(ctx FormatContext, index int) Stream {
	if ctx == nil || index < 0 || index >= GetNumStreams(ctx) {
		return nil
	}
	streams := *(*unsafe.Pointer)(unsafe.Add(ctx, offsetStreams))
	if streams == nil {
		return nil
	}
	return *(*unsafe.Pointer)(unsafe.Add(streams, uintptr(index)*unsafe.Sizeof(uintptr(0))))
}

// AVStream struct field offsets (FFmpeg 6.x and 7.x)
const (
	offsetStreamCodecPar = 16 // AVCodecParameters *codecpar
	offsetStreamTimeBase = 32 // AVRational time_base
)

// GetStreamCodecPar returns the stream's codec parameters.
func GetStreamCodecPar(stream Stream) avcodec.Parameters {
	if stream == nil {
		return nil
	}
	return *(*unsafe.Pointer)(unsafe.Add(stream, offsetStreamCodecPar))
}

// GetStreamTimeBase returns the unit of the stream's timestamps.
func GetStreamTimeBase(stream Stream) avutil.Rational {
	if stream == nil {
		return avutil.Rational{}
	}
	num := *(*int32)(unsafe.Add(stream, offsetStreamTimeBase))
	den := *(*int32)(unsafe.Add(stream, offsetStreamTimeBase+4))
	return avutil.NewRational(num, den)
}

// AVCodecParameters struct field offsets (FFmpeg 6.x and 7.x)
const (
	offsetCodecParType    = 0  // enum AVMediaType codec_type
	offsetCodecParCodecID = 4  // enum AVCodecID codec_id
	offsetCodecParFormat  = 28 // int format
	offsetCodecParWidth   = 56 // int width
	offsetCodecParHeight  = 60 // int height
)

// GetCodecParType returns the media type of the stream.
func GetCodecParType(par avcodec.Parameters) avutil.MediaType {
	if par == nil {
		return avutil.MediaTypeUnknown
	}
	return avutil.MediaType(*(*int32)(unsafe.Add(par, offsetCodecParType)))
}

// GetCodecParCodecID returns the codec ID of the stream.
func GetCodecParCodecID(par avcodec.Parameters) avcodec.CodecID {
	if par == nil {
		return avcodec.CodecIDNone
	}
	return avcodec.CodecID(*(*int32)(unsafe.Add(par, offsetCodecParCodecID)))
}

// GetCodecParFormat returns the pixel format of a video stream.
func GetCodecParFormat(par avcodec.Parameters) avutil.PixelFormat {
	if par == nil {
		return avutil.PixelFormatNone
	}
	return avutil.PixelFormat(*(*int32)(unsafe.Add(par, offsetCodecParFormat)))
}

// GetCodecParWidth returns the coded width of a video stream.
func GetCodecParWidth(par avcodec.Parameters) int32 {
	if par == nil {
		return 0
	}
	return *(*int32)(unsafe.Add(par, offsetCodecParWidth))
}

// GetCodecParHeight returns the coded height of a video stream.
func GetCodecParHeight(par avcodec.Parameters) int32 {
	if par == nil {
		return 0
	}
	return *(*int32)(unsafe.Add(par, offsetCodecParHeight))
}
