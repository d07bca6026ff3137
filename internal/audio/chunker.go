package audio

import (
	"context"
	"fmt"
	"iter"
	"os"
	"time"

	"github.com/earhorn/earhorn/internal/format"
)

// Default chunking parameters.
const (
	// DefaultChunkDuration is the target duration per chunk.
	// Five minutes keeps each upload well under API payload limits.
	DefaultChunkDuration = 5 * time.Minute

	// DefaultOverlap is how far consecutive chunks overlap.
	// 30s ensures words at chunk boundaries are captured in at least one chunk.
	DefaultOverlap = 30 * time.Second
)

// Chunk is one segment of a larger audio file.
// Temporary chunks are extracted files the caller must clean up after use;
// a non-temporary chunk points at the original source file.
type Chunk struct {
	Path      string        // Path to the chunk file.
	Index     int           // Zero-based index for ordering.
	Start     time.Duration // Start timestamp in the source audio.
	End       time.Duration // End timestamp in the source audio.
	Temporary bool          // True when Path is an extracted file, not the source.
}

// Duration returns the length of this chunk.
func (c Chunk) Duration() time.Duration {
	return c.End - c.Start
}

// String returns a human-readable representation for progress output.
func (c Chunk) String() string {
	return fmt.Sprintf("chunk %d: %s-%s",
		c.Index,
		format.Duration(c.Start),
		format.Duration(c.End))
}

// Cleanup removes the chunk file from disk. Non-temporary chunks point at
// the original source file and are left alone.
func (c Chunk) Cleanup() error {
	if !c.Temporary {
		return nil
	}
	return os.Remove(c.Path)
}

// Chunker splits audio files into fixed-duration chunks with overlap,
// extracting them one at a time so arbitrarily long recordings can be
// processed without holding every chunk on disk at once.
type Chunker struct {
	prober    Prober
	extractor Extractor

	chunk   time.Duration
	overlap time.Duration
	speed   float64
}

// ChunkerOption configures a Chunker.
type ChunkerOption func(*Chunker)

// WithChunkerSpeed sets the playback speed factor applied while extracting
// chunks. Values outside [MinSpeed, MaxSpeed] are clamped at extraction time.
func WithChunkerSpeed(speed float64) ChunkerOption {
	return func(c *Chunker) {
		c.speed = speed
	}
}

// NewChunker creates a Chunker that splits files into chunkDuration-long
// pieces overlapping by overlap. A zero or negative chunkDuration selects
// the default; a negative overlap is treated as none.
func NewChunker(prober Prober, extractor Extractor, chunkDuration, overlap time.Duration, opts ...ChunkerOption) (*Chunker, error) {
	if prober == nil {
		return nil, fmt.Errorf("prober cannot be nil")
	}
	if extractor == nil {
		return nil, fmt.Errorf("extractor cannot be nil")
	}
	if chunkDuration <= 0 {
		chunkDuration = DefaultChunkDuration
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkDuration {
		return nil, fmt.Errorf("%w: overlap %v >= chunk %v", ErrInvalidOverlap, overlap, chunkDuration)
	}

	c := &Chunker{
		prober:    prober,
		extractor: extractor,
		chunk:     chunkDuration,
		overlap:   overlap,
		speed:     1.0,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Chunks returns the chunks of the file at path in source order, extracting
// each lazily as the iterator advances. Files no longer than one chunk plus
// twice the overlap are passed through whole: a single non-temporary chunk
// referencing the original file, with no extraction run.
//
// Chunk files already yielded are never removed by the Chunker, even when a
// later extraction fails; cleanup belongs to the caller.
func (c *Chunker) Chunks(ctx context.Context, path string) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		info, err := c.prober.Probe(ctx, path)
		if err != nil {
			yield(Chunk{}, fmt.Errorf("failed to probe audio duration: %w", err))
			return
		}
		total := info.Duration

		// Small files are not worth re-encoding.
		if total <= c.chunk+2*c.overlap {
			yield(Chunk{Path: path, Index: 0, Start: 0, End: total}, nil)
			return
		}

		step := c.chunk - c.overlap
		for i := 0; ; i++ {
			start := time.Duration(i) * step
			end := min(start+c.chunk, total)

			chunkPath, err := c.extractor.Extract(ctx, path, SegmentOptions{
				Start:      start,
				End:        end,
				Mono:       true,
				SampleRate: VoiceSampleRate,
				Speed:      c.speed,
			})
			if err != nil {
				yield(Chunk{}, err)
				return
			}

			if !yield(Chunk{
				Path:      chunkPath,
				Index:     i,
				Start:     start,
				End:       end,
				Temporary: true,
			}, nil) {
				return
			}

			// Last chunk reached the end.
			if end >= total {
				return
			}
		}
	}
}

// ForEach runs fn on every chunk of the file at path in order, stopping at
// the first chunking or handler error.
func (c *Chunker) ForEach(ctx context.Context, path string, fn func(Chunk) error) error {
	for chunk, err := range c.Chunks(ctx, path) {
		if err != nil {
			return err
		}
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}

// CleanupChunks removes every temporary chunk file, continuing past
// individual failures and reporting the first one.
func CleanupChunks(chunks []Chunk) error {
	var firstErr error
	for _, chunk := range chunks {
		if err := chunk.Cleanup(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
