package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/earhorn/earhorn/internal/audio"
	"github.com/earhorn/earhorn/internal/config"
	"github.com/earhorn/earhorn/internal/format"
	"github.com/earhorn/earhorn/internal/tools"
	"github.com/earhorn/earhorn/internal/transcribe"
)

// EnvOpenAIAPIKey is the environment variable holding the OpenAI API key.
const EnvOpenAIAPIKey = "OPENAI_API_KEY"

// supportedFormats are the audio formats the transcription API accepts.
var supportedFormats = map[string]bool{
	".flac": true,
	".m4a":  true,
	".mp3":  true,
	".mp4":  true,
	".mpeg": true,
	".mpga": true,
	".ogg":  true,
	".wav":  true,
	".webm": true,
}

// supportedFormatsList returns a sorted, comma-separated list for error messages.
func supportedFormatsList() string {
	formats := make([]string, 0, len(supportedFormats))
	for f := range supportedFormats {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return strings.Join(formats, ", ")
}

type transcribeOptions struct {
	output   string
	language string
	prompt   string
	parallel int

	parallelSet bool
}

// TranscribeCmd creates the transcribe command.
func TranscribeCmd(env *Env) *cobra.Command {
	var (
		output   string
		language string
		prompt   string
		parallel int
	)

	cmd := &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Transcribe an audio file to text",
		Long: `Transcribe an audio file using the OpenAI transcription API.

Long files are split into overlapping chunks (see the chunks command)
and transcribed chunk by chunk. With --parallel 1 chunks are extracted
lazily and transcribed one at a time, so only one chunk file exists on
disk at any moment. Higher values extract everything first and fan the
requests out concurrently.

The transcript is written next to the input as <name>.txt unless -o is
given. Requires OPENAI_API_KEY.`,
		Example: `  earhorn transcribe lecture.mp3
  earhorn transcribe meeting.m4a -o minutes.txt --language en
  earhorn transcribe interview.ogg --parallel 1 --prompt "Names: Ada, Gries"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := transcribeOptions{
				output:      output,
				language:    language,
				prompt:      prompt,
				parallel:    parallel,
				parallelSet: cmd.Flags().Changed("parallel"),
			}
			return runTranscribe(cmd.Context(), env, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: <input>.txt)")
	cmd.Flags().StringVarP(&language, "language", "l", "", "ISO 639-1 language hint (e.g. en, fr)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Context prompt to bias transcription (names, jargon)")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "Concurrent API requests (default from config)")

	return cmd
}

func runTranscribe(ctx context.Context, env *Env, inputPath string, opts transcribeOptions) error {
	// === VALIDATION (fail-fast) ===

	// 1. File exists
	if err := checkInputFile(inputPath); err != nil {
		return err
	}

	// 2. Format supported
	ext := strings.ToLower(filepath.Ext(inputPath))
	if !supportedFormats[ext] {
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, supportedFormatsList())
	}

	// 3. Output path decided up front so a collision costs nothing
	cfg := loadConfig(env)
	output := config.ResolveOutputPath(opts.output, cfg.OutputDir, deriveOutputPath(filepath.Base(inputPath)))
	if err := checkOutputPath(output); err != nil {
		return err
	}

	// 4. Parallelism bounds
	parallel := cfg.Transcription.MaxParallel
	if opts.parallelSet {
		parallel = opts.parallel
	}
	parallel = clampParallel(parallel)

	// 5. API key present
	apiKey := env.Getenv(EnvOpenAIAPIKey)
	if apiKey == "" {
		return fmt.Errorf("%w (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvOpenAIAPIKey)
	}

	// === SETUP ===

	resolver := env.Tools.NewResolver(cfg.Tools)

	ffprobePath, err := resolver.Resolve(tools.FFprobe)
	if err != nil {
		return err
	}
	ffmpegPath, err := resolver.Resolve(tools.FFmpeg)
	if err != nil {
		return err
	}

	prober, err := env.Probers.NewProber(ffprobePath)
	if err != nil {
		return err
	}
	extractor, err := env.Extractors.NewExtractor(ffmpegPath)
	if err != nil {
		return err
	}

	chunker, err := env.Chunkers.NewChunker(prober, extractor,
		cfg.Chunking.GetChunkDuration(), cfg.Chunking.GetOverlapDuration(), cfg.Chunking.PlaybackSpeed)
	if err != nil {
		return err
	}

	transcriber := env.Transcribers.NewTranscriber(apiKey)

	language := opts.language
	if language == "" {
		language = cfg.Transcription.Language
	}
	tOpts := transcribe.Options{
		Prompt:   opts.prompt,
		Language: language,
	}

	// === TRANSCRIPTION ===

	var results []string
	if parallel <= 1 {
		results, err = transcribeSequential(ctx, env, chunker, inputPath, transcriber, tOpts)
	} else {
		results, err = transcribeParallel(ctx, env, chunker, inputPath, transcriber, tOpts, parallel)
	}
	if err != nil {
		return err
	}

	// === OUTPUT ===

	transcript := strings.Join(results, "\n\n")
	if err := writeFileAtomic(output, transcript); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Done: %s\n", output)
	return nil
}

// transcribeSequential drives the chunk iterator directly: one chunk file on
// disk at a time, each temporary removed as soon as its text is in hand.
func transcribeSequential(ctx context.Context, env *Env, chunker Chunker, path string,
	t transcribe.Transcriber, opts transcribe.Options) ([]string, error) {

	var results []string
	for chunk, err := range chunker.Chunks(ctx, path) {
		if err != nil {
			return nil, err
		}

		fmt.Fprintf(env.Stderr, "Transcribing %s...\n", chunk)

		text, terr := t.Transcribe(ctx, chunk.Path, opts)
		if cerr := chunk.Cleanup(); cerr != nil {
			fmt.Fprintf(env.Stderr, "Warning: failed to remove %s: %v\n", chunk.Path, cerr)
		}
		if terr != nil {
			return nil, fmt.Errorf("chunk %d (%s): %w", chunk.Index, filepath.Base(chunk.Path), terr)
		}

		results = append(results, text)
	}
	return results, nil
}

// transcribeParallel materializes every chunk first, then fans the requests
// out with bounded concurrency. Faster, but all chunk files coexist on disk.
func transcribeParallel(ctx context.Context, env *Env, chunker Chunker, path string,
	t transcribe.Transcriber, opts transcribe.Options, parallel int) ([]string, error) {

	fmt.Fprintln(env.Stderr, "Chunking audio...")

	var chunks []audio.Chunk
	for chunk, err := range chunker.Chunks(ctx, path) {
		if err != nil {
			cleanupChunks(env, chunks)
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	defer cleanupChunks(env, chunks)

	totalDuration := chunkSpan(chunks)
	fmt.Fprintf(env.Stderr, "Transcribing %d chunks covering %s (%d in parallel)...\n",
		len(chunks), format.Duration(totalDuration), parallel)

	return transcribe.TranscribeAll(ctx, chunks, t, opts, parallel)
}

func cleanupChunks(env *Env, chunks []audio.Chunk) {
	if err := audio.CleanupChunks(chunks); err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to clean up chunk files: %v\n", err)
	}
}

// chunkSpan returns the source duration covered by the chunks.
func chunkSpan(chunks []audio.Chunk) time.Duration {
	if len(chunks) == 0 {
		return 0
	}
	return chunks[len(chunks)-1].End
}

// clampParallel bounds the number of parallel requests to a sensible range.
func clampParallel(n int) int {
	if n < 1 {
		return 1
	}
	if n > transcribe.MaxRecommendedParallel {
		return transcribe.MaxRecommendedParallel
	}
	return n
}

// deriveOutputPath derives the transcript filename from the input filename.
// "lecture.mp3" becomes "lecture.txt".
func deriveOutputPath(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".txt"
}
