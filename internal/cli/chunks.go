package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/earhorn/earhorn/internal/audio"
	"github.com/earhorn/earhorn/internal/tools"
)

type chunksOptions struct {
	chunk   time.Duration
	overlap time.Duration
	speed   float64
	keep    bool

	// Which flags were set explicitly; unset ones fall back to config.
	chunkSet   bool
	overlapSet bool
	speedSet   bool
}

// ChunksCmd creates the chunks command.
func ChunksCmd(env *Env) *cobra.Command {
	var (
		chunk   time.Duration
		overlap time.Duration
		speed   float64
		keep    bool
	)

	cmd := &cobra.Command{
		Use:   "chunks <file>",
		Short: "Split an audio file into overlapping MP3 chunks",
		Long: `Split an audio file into fixed-length chunks, each overlapping the
previous one so speech at a boundary lands whole in at least one chunk.
Chunks are extracted lazily, one at a time, and printed as they appear.

Files no longer than one chunk are passed through whole without
re-encoding. By default extracted chunk files are removed after being
listed; --keep retains them next to the source file.`,
		Example: `  earhorn chunks lecture.mp3
  earhorn chunks lecture.mp3 --chunk 10m --overlap 1m --keep
  earhorn chunks meeting.m4a --speed 1.5 --keep`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := chunksOptions{
				chunk:      chunk,
				overlap:    overlap,
				speed:      speed,
				keep:       keep,
				chunkSet:   cmd.Flags().Changed("chunk"),
				overlapSet: cmd.Flags().Changed("overlap"),
				speedSet:   cmd.Flags().Changed("speed"),
			}
			return runChunks(cmd.Context(), env, args[0], opts)
		},
	}

	cmd.Flags().DurationVar(&chunk, "chunk", audio.DefaultChunkDuration, "Chunk length")
	cmd.Flags().DurationVar(&overlap, "overlap", audio.DefaultOverlap, "Overlap between consecutive chunks")
	cmd.Flags().Float64Var(&speed, "speed", 1.0, "Playback speed factor (0.5-2.0)")
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep extracted chunk files")

	return cmd
}

func runChunks(ctx context.Context, env *Env, path string, opts chunksOptions) error {
	// 1. File exists
	if err := checkInputFile(path); err != nil {
		return err
	}

	// 2. Config supplies whatever the flags left unset
	cfg := loadConfig(env)

	chunk := cfg.Chunking.GetChunkDuration()
	if opts.chunkSet {
		chunk = opts.chunk
	}
	overlap := cfg.Chunking.GetOverlapDuration()
	if opts.overlapSet {
		overlap = opts.overlap
	}
	speed := cfg.Chunking.PlaybackSpeed
	if opts.speedSet {
		speed = opts.speed
	}

	// 3. Resolve tools
	resolver := env.Tools.NewResolver(cfg.Tools)

	ffprobePath, err := resolver.Resolve(tools.FFprobe)
	if err != nil {
		return err
	}
	ffmpegPath, err := resolver.Resolve(tools.FFmpeg)
	if err != nil {
		return err
	}

	// 4. Build the chunker
	prober, err := env.Probers.NewProber(ffprobePath)
	if err != nil {
		return err
	}
	extractor, err := env.Extractors.NewExtractor(ffmpegPath)
	if err != nil {
		return err
	}

	chunker, err := env.Chunkers.NewChunker(prober, extractor, chunk, overlap, speed)
	if err != nil {
		return err
	}

	// 5. Walk the chunks, printing each as it is extracted
	count := 0
	for c, err := range chunker.Chunks(ctx, path) {
		if err != nil {
			return err
		}
		count++

		fmt.Fprintf(env.Stdout, "%s\t%s\n", c, c.Path)

		if !opts.keep {
			if err := c.Cleanup(); err != nil {
				fmt.Fprintf(env.Stderr, "Warning: failed to remove %s: %v\n", c.Path, err)
			}
		}
	}

	fmt.Fprintf(env.Stderr, "%d chunks\n", count)
	return nil
}
