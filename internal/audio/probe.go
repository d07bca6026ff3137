package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/earhorn/earhorn/internal/tools"
)

// Compile-time interface implementation check.
var _ Prober = (*FFprobeProber)(nil)

// FileInfo describes an audio file as reported by the media prober.
// Fields missing from the container metadata are left at their zero value.
type FileInfo struct {
	Duration time.Duration `json:"duration_seconds"`
	BitRate  int           `json:"bit_rate"`
	Title    string        `json:"title,omitempty"`
	Artist   string        `json:"artist,omitempty"`
	Album    string        `json:"album,omitempty"`
}

// Prober reads metadata from audio files.
type Prober interface {
	// Probe returns duration, bit rate, and container tags for the file
	// at path. Fails with ErrProbeFailed if the file cannot be read.
	Probe(ctx context.Context, path string) (FileInfo, error)
}

// FFprobeProber reads metadata using the ffprobe CLI.
type FFprobeProber struct {
	ffprobePath string

	// Injectable dependency (defaults to OS implementation).
	cmd commandRunner
}

// FFprobeProberOption configures an FFprobeProber.
type FFprobeProberOption func(*FFprobeProber)

// WithProberCommandRunner sets the command runner for FFprobeProber.
func WithProberCommandRunner(r commandRunner) FFprobeProberOption {
	return func(p *FFprobeProber) {
		p.cmd = r
	}
}

// NewFFprobeProber creates a prober backed by the ffprobe binary at ffprobePath.
func NewFFprobeProber(ffprobePath string, opts ...FFprobeProberOption) (*FFprobeProber, error) {
	if ffprobePath == "" {
		return nil, fmt.Errorf("ffprobe path cannot be empty: %w", tools.ErrToolNotFound)
	}

	p := &FFprobeProber{
		ffprobePath: ffprobePath,
		cmd:         osCommandRunner{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// probeResult mirrors the JSON emitted by `ffprobe -print_format json -show_format`.
// Numeric fields arrive as strings; tag keys vary in case across containers.
type probeResult struct {
	Format struct {
		Duration string            `json:"duration"`
		BitRate  string            `json:"bit_rate"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
}

// Probe runs ffprobe and parses the format section of its JSON output.
func (p *FFprobeProber) Probe(ctx context.Context, path string) (FileInfo, error) {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		path,
	}

	output, err := p.cmd.CombinedOutput(ctx, p.ffprobePath, args)
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: %s: %v\nOutput: %s",
			ErrProbeFailed, path, err, strings.TrimSpace(string(output)))
	}

	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return FileInfo{}, fmt.Errorf("%w: unexpected ffprobe output for %s: %v",
			ErrProbeFailed, path, err)
	}

	info, err := fileInfoFromProbe(result)
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: %s: %v", ErrProbeFailed, path, err)
	}

	return info, nil
}

// fileInfoFromProbe converts raw ffprobe strings to typed fields.
// Absent duration or bit rate stays zero; malformed values are an error.
func fileInfoFromProbe(result probeResult) (FileInfo, error) {
	var info FileInfo

	if raw := result.Format.Duration; raw != "" {
		seconds, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return FileInfo{}, fmt.Errorf("parse duration %q: %v", raw, err)
		}
		info.Duration = time.Duration(seconds * float64(time.Second))
	}

	if raw := result.Format.BitRate; raw != "" {
		bitRate, err := strconv.Atoi(raw)
		if err != nil {
			return FileInfo{}, fmt.Errorf("parse bit rate %q: %v", raw, err)
		}
		info.BitRate = bitRate
	}

	for key, value := range result.Format.Tags {
		switch strings.ToLower(key) {
		case "title":
			info.Title = value
		case "artist":
			info.Artist = value
		case "album":
			info.Album = value
		}
	}

	return info, nil
}
