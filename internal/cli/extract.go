package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/earhorn/earhorn/internal/audio"
	"github.com/earhorn/earhorn/internal/format"
	"github.com/earhorn/earhorn/internal/tools"
)

// ExtractCmd creates the extract command.
func ExtractCmd(env *Env) *cobra.Command {
	var (
		startStr string
		endStr   string
		mono     bool
		rate     int
		speed    float64
	)

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract a time segment of an audio file to MP3",
		Long: `Extract the segment between --start and --end into a new MP3 next to
the source file. The output name encodes the bounds, so extracting the
same segment twice produces the same path.

Timestamps accept plain seconds (90, 90.5) or durations (1m30s).`,
		Example: `  earhorn extract lecture.mp3 --start 90 --end 3m
  earhorn extract interview.m4a --start 10m --end 25m --mono --rate 16000
  earhorn extract podcast.mp3 --start 0 --end 5m --speed 1.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseTimestamp(startStr)
			if err != nil {
				return err
			}
			end, err := parseTimestamp(endStr)
			if err != nil {
				return err
			}
			opts := audio.SegmentOptions{
				Start:      start,
				End:        end,
				Mono:       mono,
				SampleRate: rate,
				Speed:      speed,
			}
			return runExtract(cmd.Context(), env, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&startStr, "start", "", "Segment start (seconds or duration, e.g. 90 or 1m30s)")
	cmd.Flags().StringVar(&endStr, "end", "", "Segment end (seconds or duration)")
	cmd.Flags().BoolVar(&mono, "mono", false, "Downmix to a single channel")
	cmd.Flags().IntVar(&rate, "rate", 0, "Output sample rate in Hz (0 keeps the source rate)")
	cmd.Flags().Float64Var(&speed, "speed", 1.0, "Playback speed factor (0.5-2.0)")

	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func runExtract(ctx context.Context, env *Env, path string, opts audio.SegmentOptions) error {
	// 1. File exists
	if err := checkInputFile(path); err != nil {
		return err
	}

	// 2. Bounds ordered (the extractor checks too; failing here is cheaper)
	if opts.End <= opts.Start {
		return fmt.Errorf("%w: start %s is not before end %s",
			audio.ErrInvalidSegmentBounds, format.Duration(opts.Start), format.Duration(opts.End))
	}

	// 3. Resolve ffmpeg
	cfg := loadConfig(env)
	resolver := env.Tools.NewResolver(cfg.Tools)

	ffmpegPath, err := resolver.Resolve(tools.FFmpeg)
	if err != nil {
		return err
	}

	extractor, err := env.Extractors.NewExtractor(ffmpegPath)
	if err != nil {
		return err
	}

	// 4. Extract
	fmt.Fprintf(env.Stderr, "Extracting %s - %s from %s...\n",
		format.Duration(opts.Start), format.Duration(opts.End), path)

	outPath, err := extractor.Extract(ctx, path, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(env.Stdout, outPath)
	return nil
}
