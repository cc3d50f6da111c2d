//go:build !ios && !android && (amd64 || arm64)

package spherecmp

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/obinnaokechukwu/spherecmp/avcodec"
	"github.com/obinnaokechukwu/spherecmp/avformat"
	"github.com/obinnaokechukwu/spherecmp/avutil"
)

// ErrDecoderClosed is returned by Run after Close.
var ErrDecoderClosed = errors.New("spherecmp: decoder is closed")

// DecoderOptions configures a Decoder.
type DecoderOptions struct {
	// StreamIndex selects the container stream to decode. It must be a
	// video stream.
	StreamIndex int

	// MaxFrames stops demuxing after this many decoded frames; 0 decodes
	// the whole stream.
	MaxFrames uint64

	Logger *slog.Logger // optional
}

// Decoder demuxes one video stream of a media file and feeds the decoded
// frames to a FrameSink.
type Decoder struct {
	formatCtx avformat.FormatContext
	codecCtx  avcodec.Context
	packet    avcodec.Packet
	frame     avutil.Frame

	streamIndex int
	timeBase    avutil.Rational
	codecName   string
	maxFrames   uint64
	decoded     uint64

	log    *slog.Logger
	closed bool
}

// OpenDecoder opens path and the decoder of the selected stream.
func OpenDecoder(path string, opts DecoderOptions) (_ *Decoder, err error) {
	if err := Init(); err != nil {
		return nil, err
	}

	d := &Decoder{
		streamIndex: opts.StreamIndex,
		maxFrames:   opts.MaxFrames,
		log:         opts.Logger,
	}
	if d.log == nil {
		d.log = slog.New(slog.DiscardHandler)
	}
	defer func() {
		if err != nil {
			d.Close()
		}
	}()

	if err := avformat.OpenInput(&d.formatCtx, path, nil, nil); err != nil {
		return nil, fmt.Errorf("spherecmp: failed to open %s: %w", path, err)
	}
	if err := avformat.FindStreamInfo(d.formatCtx, nil); err != nil {
		return nil, fmt.Errorf("spherecmp: failed to read stream info of %s: %w", path, err)
	}

	stream := avformat.GetStream(d.formatCtx, d.streamIndex)
	if stream == nil {
		return nil, fmt.Errorf("spherecmp: %s has no stream %d: %w",
			path, d.streamIndex, avutil.NewError(avutil.AVERROR_EINVAL, "avformat_find_stream_info"))
	}
	codecPar := avformat.GetStreamCodecPar(stream)
	if avformat.GetCodecParType(codecPar) != avutil.MediaTypeVideo {
		return nil, fmt.Errorf("spherecmp: stream %d of %s is not a video stream: %w",
			d.streamIndex, path, avutil.NewError(avutil.AVERROR_EINVAL, "avformat_find_stream_info"))
	}
	d.timeBase = avformat.GetStreamTimeBase(stream)

	codec := avcodec.FindDecoder(avformat.GetCodecParCodecID(codecPar))
	if codec == nil {
		return nil, fmt.Errorf("spherecmp: no decoder for stream %d: %w",
			d.streamIndex, avutil.NewError(avutil.AVERROR_DECODER_NOT_FOUND, "avcodec_find_decoder"))
	}
	d.codecName = avcodec.GetCodecName(codec)

	if d.codecCtx = avcodec.AllocContext3(codec); d.codecCtx == nil {
		return nil, avutil.NewError(avutil.AVERROR_ENOMEM, "avcodec_alloc_context3")
	}
	if err := avcodec.ParametersToContext(d.codecCtx, codecPar); err != nil {
		return nil, err
	}
	if err := avcodec.Open2(d.codecCtx, codec, nil); err != nil {
		return nil, fmt.Errorf("spherecmp: failed to open %s decoder: %w", d.codecName, err)
	}

	if d.packet = avcodec.PacketAlloc(); d.packet == nil {
		return nil, avutil.NewError(avutil.AVERROR_ENOMEM, "av_packet_alloc")
	}
	if d.frame = avutil.FrameAlloc(); d.frame == nil {
		return nil, avutil.NewError(avutil.AVERROR_ENOMEM, "av_frame_alloc")
	}

	d.log.Debug("decoder opened",
		"path", path,
		"stream", d.streamIndex,
		"codec", d.codecName,
		"time_base", d.timeBase.String())
	return d, nil
}

// StreamTimeBase returns the time base of the decoded stream.
func (d *Decoder) StreamTimeBase() avutil.Rational {
	return d.timeBase
}

// CodecName returns the short name of the stream's decoder.
func (d *Decoder) CodecName() string {
	return d.codecName
}

// FramesDecoded returns the number of frames handed to the sink.
func (d *Decoder) FramesDecoded() uint64 {
	return d.decoded
}

func (d *Decoder) limitReached() bool {
	return d.maxFrames > 0 && d.decoded >= d.maxFrames
}

// Run decodes the stream, calling sink.ProcessFrame for every frame and
// once with nil at the end. The first error from the sink stops the run
// and is returned unchanged. The frame passed to the sink is only valid
// for the duration of the call.
func (d *Decoder) Run(sink FrameSink) error {
	if d.closed {
		return ErrDecoderClosed
	}

	for !d.limitReached() {
		err := avformat.ReadFrame(d.formatCtx, d.packet)
		if err != nil {
			// Read errors end the input the same way EOF does.
			if !avutil.IsEOF(err) {
				d.log.Warn("demuxing stopped early", "error", err)
			}
			break
		}
		if int(avcodec.GetPacketStreamIndex(d.packet)) != d.streamIndex {
			avcodec.PacketUnref(d.packet)
			continue
		}

		err = avcodec.SendPacket(d.codecCtx, d.packet)
		avcodec.PacketUnref(d.packet)
		if err != nil {
			return fmt.Errorf("spherecmp: decoding failed: %w", err)
		}
		if err := d.receive(sink); err != nil {
			return err
		}
	}

	if !d.limitReached() {
		if err := avcodec.SendPacket(d.codecCtx, nil); err != nil {
			return fmt.Errorf("spherecmp: decoder flush failed: %w", err)
		}
		if err := d.receive(sink); err != nil {
			return err
		}
	}

	d.log.Debug("end of stream", "frames", d.decoded)
	return sink.ProcessFrame(nil)
}

// receive hands every frame the codec has ready to sink.
func (d *Decoder) receive(sink FrameSink) error {
	vf := WrapFrame(d.frame)
	for !d.limitReached() {
		err := avcodec.ReceiveFrame(d.codecCtx, d.frame)
		if avutil.IsAgain(err) || avutil.IsEOF(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("spherecmp: decoding failed: %w", err)
		}

		d.decoded++
		err = sink.ProcessFrame(vf)
		avutil.FrameUnref(d.frame)
		if err != nil {
			return err
		}
	}
	return nil
}

// Close releases all resources. It is safe to call more than once.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	if d.frame != nil {
		avutil.FrameFree(&d.frame)
	}
	if d.packet != nil {
		avcodec.PacketFree(&d.packet)
	}
	if d.codecCtx != nil {
		avcodec.FreeContext(&d.codecCtx)
	}
	if d.formatCtx != nil {
		avformat.CloseInput(&d.formatCtx)
	}
	return nil
}
