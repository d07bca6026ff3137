// Package cli implements the earhorn command-line interface.
//
// Commands are thin orchestration layers: they validate input, resolve
// external tools, wire domain objects together, and report progress.
// All side effects flow through the Env struct so tests can intercept them.
package cli

import (
	"context"
	"io"
	"iter"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/earhorn/earhorn/internal/audio"
	"github.com/earhorn/earhorn/internal/config"
	"github.com/earhorn/earhorn/internal/silence"
	"github.com/earhorn/earhorn/internal/tag"
	"github.com/earhorn/earhorn/internal/tools"
	"github.com/earhorn/earhorn/internal/transcribe"
	"github.com/earhorn/earhorn/internal/tui"
)

// ---------------------------------------------------------------------------
// Dependency interfaces
// ---------------------------------------------------------------------------

// ConfigLoader provides access to the configuration file.
type ConfigLoader interface {
	// Load returns the effective configuration (defaults when no file exists).
	Load() (config.Config, error)
	// Init writes a starter configuration file and returns its path.
	Init() (string, error)
	// Path returns the location of the configuration file.
	Path() (string, error)
}

// ToolResolver locates external tool binaries.
type ToolResolver interface {
	Resolve(tool tools.Tool) (string, error)
}

// ToolResolverFactory creates tool resolvers honoring configured overrides.
type ToolResolverFactory interface {
	NewResolver(cfg config.ToolsConfig) ToolResolver
}

// ProberFactory creates media probers bound to an ffprobe binary.
type ProberFactory interface {
	NewProber(ffprobePath string) (audio.Prober, error)
}

// ExtractorFactory creates segment extractors bound to an ffmpeg binary.
type ExtractorFactory interface {
	NewExtractor(ffmpegPath string) (audio.Extractor, error)
}

// Chunker yields overlapping chunks of an audio file in source order.
type Chunker interface {
	Chunks(ctx context.Context, path string) iter.Seq2[audio.Chunk, error]
}

// ChunkerFactory creates chunkers over a prober and extractor.
type ChunkerFactory interface {
	NewChunker(prober audio.Prober, extractor audio.Extractor,
		chunk, overlap time.Duration, speed float64) (Chunker, error)
}

// Recording is a microphone capture in progress.
// *audio.Recording implements this.
type Recording interface {
	// Path returns the output file being written.
	Path() string
	// Done is closed once the capture process has exited.
	Done() <-chan struct{}
	// Err reports how the capture ended. Nil while still running.
	Err() error
	// Wait blocks until the capture ends or ctx is canceled.
	Wait(ctx context.Context) (string, error)
	// Stop asks the capture to flush and exit. Safe to call more than once.
	Stop()
}

// Recorder starts microphone captures.
type Recorder interface {
	Start(ctx context.Context, outPath string) (Recording, error)
}

// RecorderFactory creates recorders bound to a rec binary.
type RecorderFactory interface {
	NewRecorder(recPath string, opts ...audio.RecorderOption) (Recorder, error)
}

// Player plays audio files to completion.
type Player interface {
	Play(ctx context.Context, path string) error
}

// PlayerFactory creates players bound to an afplay binary.
// A nil silencer skips the pause-other-media step.
type PlayerFactory interface {
	NewPlayer(afplayPath string, silencer audio.Silencer) (Player, error)
}

// SilencerFactory creates playback silencers from configured app names.
type SilencerFactory interface {
	NewSilencer(osascriptPath, pgrepPath string, cfg config.SilenceConfig) (audio.Silencer, error)
}

// DeviceListerFactory creates audio input device listers bound to ffmpeg.
type DeviceListerFactory interface {
	NewDeviceLister(ffmpegPath string) (audio.DeviceLister, error)
}

// TranscriberFactory creates transcribers for the given API key.
type TranscriberFactory interface {
	NewTranscriber(apiKey string) transcribe.Transcriber
}

// TagStore reads and writes ID3 metadata on finished recordings.
type TagStore interface {
	Write(path string, info tag.Info) error
	Read(path string) (tag.Info, error)
}

// Monitor runs the interactive recording display until the capture ends.
type Monitor interface {
	Run(rec Recording) error
}

// ---------------------------------------------------------------------------
// Env
// ---------------------------------------------------------------------------

// Env holds the external dependencies of every command.
// Tests replace fields to observe behavior without touching the system.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Now    func() time.Time

	Config       ConfigLoader
	Tools        ToolResolverFactory
	Probers      ProberFactory
	Extractors   ExtractorFactory
	Chunkers     ChunkerFactory
	Recorders    RecorderFactory
	Players      PlayerFactory
	Silencers    SilencerFactory
	DeviceLister DeviceListerFactory
	Transcribers TranscriberFactory
	Tags         TagStore
	Monitor      Monitor
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the writer for primary command output.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) { e.Stdout = w }
}

// WithStderr sets the writer for progress and warnings.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) { e.Stderr = w }
}

// WithGetenv sets the environment variable lookup function.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) { e.Getenv = fn }
}

// WithNow sets the clock.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) { e.Now = fn }
}

// WithConfigLoader sets the configuration loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) { e.Config = l }
}

// WithToolResolverFactory sets the tool resolver factory.
func WithToolResolverFactory(f ToolResolverFactory) EnvOption {
	return func(e *Env) { e.Tools = f }
}

// WithProberFactory sets the prober factory.
func WithProberFactory(f ProberFactory) EnvOption {
	return func(e *Env) { e.Probers = f }
}

// WithExtractorFactory sets the extractor factory.
func WithExtractorFactory(f ExtractorFactory) EnvOption {
	return func(e *Env) { e.Extractors = f }
}

// WithChunkerFactory sets the chunker factory.
func WithChunkerFactory(f ChunkerFactory) EnvOption {
	return func(e *Env) { e.Chunkers = f }
}

// WithRecorderFactory sets the recorder factory.
func WithRecorderFactory(f RecorderFactory) EnvOption {
	return func(e *Env) { e.Recorders = f }
}

// WithPlayerFactory sets the player factory.
func WithPlayerFactory(f PlayerFactory) EnvOption {
	return func(e *Env) { e.Players = f }
}

// WithSilencerFactory sets the silencer factory.
func WithSilencerFactory(f SilencerFactory) EnvOption {
	return func(e *Env) { e.Silencers = f }
}

// WithDeviceListerFactory sets the device lister factory.
func WithDeviceListerFactory(f DeviceListerFactory) EnvOption {
	return func(e *Env) { e.DeviceLister = f }
}

// WithTranscriberFactory sets the transcriber factory.
func WithTranscriberFactory(f TranscriberFactory) EnvOption {
	return func(e *Env) { e.Transcribers = f }
}

// WithTagStore sets the ID3 tag store.
func WithTagStore(t TagStore) EnvOption {
	return func(e *Env) { e.Tags = t }
}

// WithMonitor sets the interactive recording monitor.
func WithMonitor(m Monitor) EnvOption {
	return func(e *Env) { e.Monitor = m }
}

// DefaultEnv returns an Env wired to the real system.
func DefaultEnv() *Env {
	return &Env{
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Getenv:       os.Getenv,
		Now:          time.Now,
		Config:       defaultConfigLoader{},
		Tools:        defaultToolResolverFactory{},
		Probers:      defaultProberFactory{},
		Extractors:   defaultExtractorFactory{},
		Chunkers:     defaultChunkerFactory{},
		Recorders:    defaultRecorderFactory{},
		Players:      defaultPlayerFactory{},
		Silencers:    defaultSilencerFactory{},
		DeviceLister: defaultDeviceListerFactory{},
		Transcribers: defaultTranscriberFactory{},
		Tags:         defaultTagStore{},
		Monitor:      defaultMonitor{},
	}
}

// NewEnv returns a default Env with the given options applied.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) { return config.Load() }
func (defaultConfigLoader) Init() (string, error)        { return config.Init() }
func (defaultConfigLoader) Path() (string, error)        { return config.Path() }

type defaultToolResolverFactory struct{}

func (defaultToolResolverFactory) NewResolver(cfg config.ToolsConfig) ToolResolver {
	return tools.NewResolver(tools.WithOverrides(cfg.Overrides()))
}

type defaultProberFactory struct{}

func (defaultProberFactory) NewProber(ffprobePath string) (audio.Prober, error) {
	p, err := audio.NewFFprobeProber(ffprobePath)
	if err != nil {
		return nil, err
	}
	return p, nil
}

type defaultExtractorFactory struct{}

func (defaultExtractorFactory) NewExtractor(ffmpegPath string) (audio.Extractor, error) {
	e, err := audio.NewFFmpegExtractor(ffmpegPath)
	if err != nil {
		return nil, err
	}
	return e, nil
}

type defaultChunkerFactory struct{}

func (defaultChunkerFactory) NewChunker(prober audio.Prober, extractor audio.Extractor,
	chunk, overlap time.Duration, speed float64) (Chunker, error) {
	c, err := audio.NewChunker(prober, extractor, chunk, overlap, audio.WithChunkerSpeed(speed))
	if err != nil {
		return nil, err
	}
	return c, nil
}

type defaultRecorderFactory struct{}

func (defaultRecorderFactory) NewRecorder(recPath string, opts ...audio.RecorderOption) (Recorder, error) {
	r, err := audio.NewRecorder(recPath, opts...)
	if err != nil {
		return nil, err
	}
	return defaultRecorder{r}, nil
}

// defaultRecorder adapts *audio.Recorder to the Recorder interface,
// narrowing its concrete *audio.Recording to the Recording interface.
type defaultRecorder struct {
	r *audio.Recorder
}

func (d defaultRecorder) Start(ctx context.Context, outPath string) (Recording, error) {
	rec, err := d.r.Start(ctx, outPath)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

type defaultPlayerFactory struct{}

func (defaultPlayerFactory) NewPlayer(afplayPath string, silencer audio.Silencer) (Player, error) {
	var opts []audio.PlayerOption
	if silencer != nil {
		opts = append(opts, audio.WithPlayerSilencer(silencer))
	}
	p, err := audio.NewPlayer(afplayPath, opts...)
	if err != nil {
		return nil, err
	}
	return p, nil
}

type defaultSilencerFactory struct{}

func (defaultSilencerFactory) NewSilencer(osascriptPath, pgrepPath string, cfg config.SilenceConfig) (audio.Silencer, error) {
	s, err := silence.New(osascriptPath, pgrepPath,
		silence.WithBrowser(cfg.Browser),
		silence.WithMediaPlayer(cfg.MediaPlayer),
		silence.WithVideoHosts(cfg.VideoHosts),
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

type defaultDeviceListerFactory struct{}

func (defaultDeviceListerFactory) NewDeviceLister(ffmpegPath string) (audio.DeviceLister, error) {
	l, err := audio.NewFFmpegDeviceLister(ffmpegPath)
	if err != nil {
		return nil, err
	}
	return l, nil
}

type defaultTranscriberFactory struct{}

func (defaultTranscriberFactory) NewTranscriber(apiKey string) transcribe.Transcriber {
	return transcribe.NewOpenAITranscriber(openai.NewClient(apiKey))
}

type defaultTagStore struct{}

func (defaultTagStore) Write(path string, info tag.Info) error { return tag.Write(path, info) }
func (defaultTagStore) Read(path string) (tag.Info, error)     { return tag.Read(path) }

type defaultMonitor struct{}

func (defaultMonitor) Run(rec Recording) error { return tui.Run(rec) }

// Compile-time verification that defaults satisfy their interfaces.
var (
	_ ConfigLoader        = defaultConfigLoader{}
	_ ToolResolverFactory = defaultToolResolverFactory{}
	_ ProberFactory       = defaultProberFactory{}
	_ ExtractorFactory    = defaultExtractorFactory{}
	_ ChunkerFactory      = defaultChunkerFactory{}
	_ RecorderFactory     = defaultRecorderFactory{}
	_ PlayerFactory       = defaultPlayerFactory{}
	_ SilencerFactory     = defaultSilencerFactory{}
	_ DeviceListerFactory = defaultDeviceListerFactory{}
	_ TranscriberFactory  = defaultTranscriberFactory{}
	_ TagStore            = defaultTagStore{}
	_ Monitor             = defaultMonitor{}
	_ Chunker             = (*audio.Chunker)(nil)
	_ Recording           = (*audio.Recording)(nil)
)
