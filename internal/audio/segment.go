package audio

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/earhorn/earhorn/internal/tools"
)

// Compile-time interface implementation check.
var _ Extractor = (*FFmpegExtractor)(nil)

// Playback speed bounds. A single ffmpeg atempo filter instance accepts
// factors in [0.5, 2.0]; values outside are clamped rather than chained.
const (
	MinSpeed = 0.5
	MaxSpeed = 2.0
)

// VoiceSampleRate is the sample rate applied to transcription chunks.
// 22.05kHz keeps speech intelligible while shrinking upload size.
const VoiceSampleRate = 22050

// SegmentOptions selects the time range and transcode settings for Extract.
type SegmentOptions struct {
	Start time.Duration // Segment start in the source audio.
	End   time.Duration // Segment end; must not precede Start.

	Mono       bool    // Downmix to a single channel.
	SampleRate int     // Output sample rate in Hz; 0 keeps the source rate.
	Speed      float64 // Playback speed factor; 0 or 1 leaves tempo untouched.
}

// Extractor produces time-bounded segments of audio files.
type Extractor interface {
	// Extract writes the selected segment of path to a new MP3 file and
	// returns its path. The output path is derived from the input path and
	// bounds (see SegmentPath); an existing file there is overwritten.
	Extract(ctx context.Context, path string, opts SegmentOptions) (string, error)
}

// FFmpegExtractor extracts segments using the ffmpeg CLI.
type FFmpegExtractor struct {
	ffmpegPath string

	// Injectable dependency (defaults to OS implementation).
	cmd commandRunner
}

// FFmpegExtractorOption configures an FFmpegExtractor.
type FFmpegExtractorOption func(*FFmpegExtractor)

// WithExtractorCommandRunner sets the command runner for FFmpegExtractor.
func WithExtractorCommandRunner(r commandRunner) FFmpegExtractorOption {
	return func(e *FFmpegExtractor) {
		e.cmd = r
	}
}

// NewFFmpegExtractor creates an extractor backed by the ffmpeg binary at ffmpegPath.
func NewFFmpegExtractor(ffmpegPath string, opts ...FFmpegExtractorOption) (*FFmpegExtractor, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpeg path cannot be empty: %w", tools.ErrToolNotFound)
	}

	e := &FFmpegExtractor{
		ffmpegPath: ffmpegPath,
		cmd:        osCommandRunner{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Extract transcodes the [opts.Start, opts.End] range of path into a sibling
// MP3 named after the input and the bounds.
func (e *FFmpegExtractor) Extract(ctx context.Context, path string, opts SegmentOptions) (string, error) {
	if opts.Start < 0 || opts.End < opts.Start {
		return "", fmt.Errorf("%w: start %v, end %v", ErrInvalidSegmentBounds, opts.Start, opts.End)
	}

	outPath := SegmentPath(path, opts.Start, opts.End)
	args := segmentArgs(path, outPath, opts)

	output, err := e.cmd.CombinedOutput(ctx, e.ffmpegPath, args)
	if err != nil {
		return "", fmt.Errorf("%w: failed to extract %s: %v\nOutput: %s",
			ErrTranscodeFailed, outPath, err, strings.TrimSpace(string(output)))
	}

	return outPath, nil
}

// SegmentPath returns the output path for a segment of the file at path
// covering [start, end]. The name is a pure function of its inputs, so the
// same request always lands on the same file.
func SegmentPath(path string, start, end time.Duration) string {
	return path + ".segment-" + formatSeconds(start) + "-" + formatSeconds(end) + ".mp3"
}

// EffectiveSpeed normalizes a requested speed factor: unset (0) means 1.0,
// everything else is clamped to [MinSpeed, MaxSpeed].
func EffectiveSpeed(speed float64) float64 {
	if speed == 0 {
		return 1.0
	}
	return min(max(speed, MinSpeed), MaxSpeed)
}

// segmentArgs builds the ffmpeg argument list for a segment extraction.
// Optional flags appear only when requested; at speed 1.0 no tempo filter
// is inserted at all.
func segmentArgs(path, outPath string, opts SegmentOptions) []string {
	args := []string{
		"-y",
		"-i", path,
		"-ss", formatFFmpegTime(opts.Start),
		"-to", formatFFmpegTime(opts.End),
		"-vn",
	}
	if opts.Mono {
		args = append(args, "-ac", "1")
	}
	if opts.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(opts.SampleRate))
	}
	if speed := EffectiveSpeed(opts.Speed); speed != 1.0 {
		args = append(args, "-filter:a", "atempo="+strconv.FormatFloat(speed, 'f', -1, 64))
	}
	args = append(args, "-codec:a", "libmp3lame", outPath)
	return args
}

// formatSeconds renders a duration as plain seconds for file names:
// whole values lose the decimal point (300 not 300.0), fractional values
// keep only the digits they need.
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// formatFFmpegTime formats a duration for ffmpeg -ss/-to arguments.
func formatFFmpegTime(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := d.Seconds() - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}
