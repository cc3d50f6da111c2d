//go:build !ios && !android && (amd64 || arm64)

// Command spherecmp decodes a video file, runs every frame through an
// FFmpeg filter chain and prints the metadata the chain attaches.
//
// Usage:
//
//	spherecmp [flags] <input file> <filterchain>
//
// For each filtered frame the report on stdout is a "frame N" line followed
// by one key=value line per metadata entry under the configured prefix
// (lavfi.ssim360 by default). Diagnostics go to stderr. On failure the exit
// status is the negative FFmpeg error code.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/obinnaokechukwu/spherecmp"
	"github.com/obinnaokechukwu/spherecmp/internal/config"
	"github.com/obinnaokechukwu/spherecmp/internal/logging"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "spherecmp.toml"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	logging.SetOutput(stderr)

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		logging.GetLogger("cli").Error("spherecmp failed", "error", err)
		return spherecmp.ExitCode(err)
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := config.Defaults()
	opts.Config = defaultConfigPath

	cmd := &cobra.Command{
		Use:   "spherecmp <input file> <filterchain>",
		Short: "Print per-frame filter metadata for a video file",
		Long: `spherecmp decodes one video stream of a file (stream 0 by default), pushes every frame
through buffer -> <filterchain> -> buffersink and prints, for each output
frame, "frame N" followed by the metadata entries under the report prefix.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Missing arguments are not an error.
			if len(args) < 2 {
				fmt.Fprintf(stderr, "usage: %s <input file> <filterchain>\n", cmd.Name())
				return nil
			}

			if err := config.LoadConfig(&opts, cmd); err != nil {
				return err
			}
			if err := opts.Validate(); err != nil {
				return err
			}
			logging.Initialize(opts.Logging())

			if len(args) > 2 {
				logging.GetLogger("cli").Warn("ignoring extra arguments", "args", args[2:])
			}
			return compare(&opts, args[0], args[1], stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVar(&opts.Config, "config", opts.Config, "path to TOML config file (ignored when missing)")
	flags.StringVar(&opts.LoggingLevel, "log-level", opts.LoggingLevel, "log level: debug, info, warn, error")
	flags.StringVar(&opts.LoggingFormat, "log-format", opts.LoggingFormat, "log format: text or json")
	flags.StringVar(&opts.FFmpegLogLevel, "ffmpeg-log-level", opts.FFmpegLogLevel, "FFmpeg library log level (quiet ... trace)")
	flags.StringVar(&opts.MetadataPrefix, "metadata-prefix", opts.MetadataPrefix, "report metadata keys starting with this prefix")
	flags.IntVar(&opts.StreamIndex, "stream-index", opts.StreamIndex, "container stream to decode")
	flags.IntVar(&opts.MaxFrames, "max-frames", opts.MaxFrames, "stop after this many decoded frames (0 = all)")
	flags.StringVar(&opts.MetricsTextfile, "metrics-textfile", opts.MetricsTextfile, "write Prometheus metrics to this file when done")
	flags.BoolVar(&opts.Progress, "progress", opts.Progress, "show a decode progress indicator on stderr")

	return cmd
}

// compare wires the decoder, the FFmpeg backend and the reporters together
// and runs the file to completion.
func compare(opts *config.Options, input, filters string, stdout, stderr io.Writer) error {
	log := logging.GetLogger("cli").With("run_id", uuid.NewString())

	if err := spherecmp.Init(); err != nil {
		return err
	}
	level, err := spherecmp.ParseLogLevel(opts.FFmpegLogLevel)
	if err != nil {
		return err
	}
	if err := spherecmp.SetLogLevel(level); err != nil {
		return err
	}
	avutilVersion, avfilterVersion := spherecmp.Version()
	log.Debug("FFmpeg loaded",
		"avutil", fmt.Sprintf("%d.%d.%d", avutilVersion>>16, (avutilVersion>>8)&0xFF, avutilVersion&0xFF),
		"avfilter", fmt.Sprintf("%d.%d.%d", avfilterVersion>>16, (avfilterVersion>>8)&0xFF, avfilterVersion&0xFF))

	dec, err := spherecmp.OpenDecoder(input, spherecmp.DecoderOptions{
		StreamIndex: opts.StreamIndex,
		MaxFrames:   uint64(opts.MaxFrames),
		Logger:      logging.GetLogger("decoder"),
	})
	if err != nil {
		return err
	}
	defer dec.Close()

	backend, err := spherecmp.NewFFmpegBackend()
	if err != nil {
		return err
	}

	text := spherecmp.NewTextReporter(stdout)
	var (
		reporter spherecmp.Reporter = text
		metrics  *spherecmp.Metrics
	)
	if opts.MetricsTextfile != "" {
		metrics = spherecmp.NewMetrics()
		reporter = spherecmp.MultiReporter{text, metrics}
	}

	pipeline, err := spherecmp.NewPipeline(spherecmp.Options{
		Filters:        filters,
		TimeBase:       dec.StreamTimeBase(),
		Backend:        backend,
		Reporter:       reporter,
		Metrics:        metrics,
		Logger:         logging.GetLogger("pipeline"),
		MetadataPrefix: opts.MetadataPrefix,
	})
	if err != nil {
		return err
	}
	defer pipeline.Close()

	log.Debug("running", "input", input, "codec", dec.CodecName(), "time_base", dec.StreamTimeBase().String())

	var sink spherecmp.FrameSink = pipeline
	if opts.Progress {
		sink = newProgressSink(pipeline, stderr, opts.MaxFrames, log)
	}

	// Partial output stays on stdout when the run fails.
	runErr := dec.Run(sink)
	flushErr := text.Close()

	if opts.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(opts.MetricsTextfile); err != nil {
			log.Warn("failed to write metrics textfile", "path", opts.MetricsTextfile, "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if flushErr != nil {
		return fmt.Errorf("writing report: %w", flushErr)
	}
	log.Info("done", "frames_decoded", dec.FramesDecoded(), "frames_emitted", pipeline.FramesEmitted())
	return nil
}
