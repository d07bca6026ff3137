// Package config loads earhorn's YAML configuration file.
//
// The file lives at ~/.config/earhorn/config.yaml (XDG_CONFIG_HOME is
// honored, EARHORN_CONFIG overrides the full path). A missing file is not an
// error: every field has a usable default so the tool works untouched on a
// fresh machine.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the config file location when set.
const EnvConfigPath = "EARHORN_CONFIG"

// configFileName is the file name inside the config directory.
const configFileName = "config.yaml"

// Sentinel errors.
var (
	// ErrInvalidConfig indicates a config file value failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfigExists indicates Init found an existing config file.
	ErrConfigExists = errors.New("config file already exists")
)

// Config is the root of the configuration file.
type Config struct {
	// OutputDir is the default directory for recordings and transcripts.
	// Empty means the current working directory.
	OutputDir string `yaml:"output_dir"`

	Tools         ToolsConfig         `yaml:"tools"`
	Chunking      ChunkingConfig      `yaml:"chunking"`
	Recording     RecordingConfig     `yaml:"recording"`
	Silence       SilenceConfig       `yaml:"silence"`
	Transcription TranscriptionConfig `yaml:"transcription"`
}

// ToolsConfig pins explicit paths for external tools.
// Empty values fall back to $PATH lookup.
type ToolsConfig struct {
	FFmpeg    string `yaml:"ffmpeg"`
	FFprobe   string `yaml:"ffprobe"`
	Rec       string `yaml:"rec"`
	Afplay    string `yaml:"afplay"`
	Osascript string `yaml:"osascript"`
	Pgrep     string `yaml:"pgrep"`
}

// Overrides returns the configured tool paths keyed by tool name, with
// tildes expanded, in the shape the tool resolver consumes.
func (tc ToolsConfig) Overrides() map[string]string {
	return map[string]string{
		"ffmpeg":    ExpandPath(tc.FFmpeg),
		"ffprobe":   ExpandPath(tc.FFprobe),
		"rec":       ExpandPath(tc.Rec),
		"afplay":    ExpandPath(tc.Afplay),
		"osascript": ExpandPath(tc.Osascript),
		"pgrep":     ExpandPath(tc.Pgrep),
	}
}

// ChunkingConfig controls how long files are split for sequential processing.
type ChunkingConfig struct {
	// ChunkSeconds is the target chunk length.
	ChunkSeconds float64 `yaml:"chunk_seconds"`

	// OverlapSeconds is the shared range between consecutive chunks, kept so
	// speech at a boundary lands whole in at least one chunk.
	OverlapSeconds float64 `yaml:"overlap_seconds"`

	// PlaybackSpeed is the tempo factor applied to extracted chunks.
	// Values outside [0.5, 2.0] are clamped at use, not rejected here.
	PlaybackSpeed float64 `yaml:"playback_speed"`
}

// GetChunkDuration returns the chunk length as a time.Duration.
func (cc ChunkingConfig) GetChunkDuration() time.Duration {
	return time.Duration(cc.ChunkSeconds * float64(time.Second))
}

// GetOverlapDuration returns the overlap as a time.Duration.
func (cc ChunkingConfig) GetOverlapDuration() time.Duration {
	return time.Duration(cc.OverlapSeconds * float64(time.Second))
}

// Validate checks chunking parameters.
func (cc ChunkingConfig) Validate() error {
	if cc.ChunkSeconds <= 0 {
		return fmt.Errorf("%w: chunking: chunk_seconds (%g) must be positive", ErrInvalidConfig, cc.ChunkSeconds)
	}
	if cc.OverlapSeconds < 0 {
		return fmt.Errorf("%w: chunking: overlap_seconds (%g) must not be negative", ErrInvalidConfig, cc.OverlapSeconds)
	}
	if cc.OverlapSeconds >= cc.ChunkSeconds {
		return fmt.Errorf("%w: chunking: overlap_seconds (%g) must be less than chunk_seconds (%g)",
			ErrInvalidConfig, cc.OverlapSeconds, cc.ChunkSeconds)
	}
	return nil
}

// RecordingConfig controls microphone capture.
type RecordingConfig struct {
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
}

// Validate checks recording parameters.
func (rc RecordingConfig) Validate() error {
	if rc.SampleRate <= 0 {
		return fmt.Errorf("%w: recording: sample_rate (%d) must be positive", ErrInvalidConfig, rc.SampleRate)
	}
	if rc.Channels < 1 || rc.Channels > 2 {
		return fmt.Errorf("%w: recording: channels (%d) must be 1 or 2", ErrInvalidConfig, rc.Channels)
	}
	return nil
}

// SilenceConfig names the applications whose playback gets paused before
// recording or playing. Empty names disable that half of the behavior.
type SilenceConfig struct {
	Browser     string   `yaml:"browser"`
	MediaPlayer string   `yaml:"media_player"`
	VideoHosts  []string `yaml:"video_hosts"`
}

// TranscriptionConfig controls the transcription pipeline.
type TranscriptionConfig struct {
	// Language is an ISO 639-1 hint passed to the API. Empty lets the
	// service auto-detect.
	Language string `yaml:"language"`

	// MaxParallel caps concurrent transcription requests.
	MaxParallel int `yaml:"max_parallel"`
}

// Validate checks transcription parameters.
func (tc TranscriptionConfig) Validate() error {
	if tc.MaxParallel < 1 {
		return fmt.Errorf("%w: transcription: max_parallel (%d) must be at least 1", ErrInvalidConfig, tc.MaxParallel)
	}
	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Chunking.Validate(); err != nil {
		return err
	}
	if err := c.Recording.Validate(); err != nil {
		return err
	}
	return c.Transcription.Validate()
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Chunking: ChunkingConfig{
			ChunkSeconds:   300,
			OverlapSeconds: 30,
			PlaybackSpeed:  1.0,
		},
		Recording: RecordingConfig{
			SampleRate: 22050,
			Channels:   1,
		},
		Silence: SilenceConfig{
			Browser:     "Google Chrome",
			MediaPlayer: "Spotify",
			VideoHosts:  []string{"youtube.com", "youtu.be"},
		},
		Transcription: TranscriptionConfig{
			MaxParallel: 4,
		},
	}
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/earhorn.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "earhorn"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "earhorn"), nil
}

// Path returns the config file location, honoring EARHORN_CONFIG.
func Path() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return ExpandPath(p), nil
	}

	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, configFileName), nil
}

// Load reads the config file, layering it over Default().
// A missing file returns the defaults; a malformed or invalid file is an
// error.
func Load() (Config, error) {
	cfg := Default()

	p, err := Path()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	// Unmarshal into the defaults so absent keys keep their default values.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse %s: %w", p, err)
	}

	if err := cfg.Validate(); err != nil {
		return Default(), err
	}

	cfg.OutputDir = ExpandPath(cfg.OutputDir)
	return cfg, nil
}

// starterConfig is what `earhorn config init` writes: the defaults, stated
// explicitly, with every knob visible.
const starterConfig = `# earhorn configuration

# Default directory for recordings and transcripts (empty = current dir).
output_dir: ""

# Explicit tool paths. Empty values are looked up on $PATH.
# EARHORN_FFMPEG etc. override these per invocation.
tools:
  ffmpeg: ""
  ffprobe: ""
  rec: ""
  afplay: ""
  osascript: ""
  pgrep: ""

# How long files are split for sequential processing.
chunking:
  chunk_seconds: 300
  overlap_seconds: 30
  playback_speed: 1.0

# Microphone capture format.
recording:
  sample_rate: 22050
  channels: 1

# Applications paused before recording or playback.
silence:
  browser: "Google Chrome"
  media_player: "Spotify"
  video_hosts:
    - youtube.com
    - youtu.be

# Transcription pipeline.
transcription:
  language: ""
  max_parallel: 4
`

// Init writes a commented starter config and returns its path.
// Fails with ErrConfigExists when a file is already present.
func Init() (string, error) {
	p, err := Path()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(p); err == nil {
		return "", fmt.Errorf("%w: %s", ErrConfigExists, p)
	}

	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil { // #nosec G301 -- user config dir
		return "", fmt.Errorf("cannot create config directory: %w", err)
	}

	if err := os.WriteFile(p, []byte(starterConfig), 0644); err != nil { // #nosec G306 -- user config file
		return "", fmt.Errorf("cannot write config file: %w", err)
	}
	return p, nil
}

// ResolveOutputPath resolves the final output path using the following precedence:
//  1. If output is absolute, use it as-is
//  2. If output is relative and outputDir is set, join them
//  3. If output is empty, use defaultName in outputDir (or cwd if no outputDir)
//
// All paths are cleaned to normalize separators and remove redundant elements.
func ResolveOutputPath(output, outputDir, defaultName string) string {
	if output != "" && filepath.IsAbs(output) {
		return filepath.Clean(output)
	}

	if output != "" {
		if outputDir != "" {
			return filepath.Clean(filepath.Join(outputDir, output))
		}
		return filepath.Clean(output)
	}

	if outputDir != "" {
		return filepath.Clean(filepath.Join(outputDir, defaultName))
	}
	return filepath.Clean(defaultName)
}

// ValidOutputDir checks if a directory path is usable as output_dir,
// creating it when absent. Returns nil if valid.
func ValidOutputDir(d string) error {
	if d == "" {
		return fmt.Errorf("output directory cannot be empty")
	}

	d = ExpandPath(d)

	info, err := os.Stat(d)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user output dir
				return fmt.Errorf("cannot create directory: %w", err)
			}
			return nil
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", d)
	}

	// Probe writability by creating and removing a marker file.
	testFile := filepath.Join(d, ".earhorn-write-test")
	f, err := os.Create(testFile) // #nosec G304 -- path is constructed from validated dir
	if err != nil {
		return fmt.Errorf("directory is not writable: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(testFile)
		return fmt.Errorf("directory is not writable: %w", err)
	}
	_ = os.Remove(testFile)

	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}
