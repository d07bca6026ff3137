package cli

import (
	"context"
	"iter"
	"os"
	"sync"
	"time"

	"github.com/earhorn/earhorn/internal/audio"
	"github.com/earhorn/earhorn/internal/config"
	"github.com/earhorn/earhorn/internal/tag"
	"github.com/earhorn/earhorn/internal/tools"
	"github.com/earhorn/earhorn/internal/transcribe"
)

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)
	InitFunc func() (string, error)
	PathFunc func() (string, error)

	mu        sync.Mutex
	loadCalls int
	initCalls int
	pathCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Default(), nil
}

func (m *mockConfigLoader) Init() (string, error) {
	m.mu.Lock()
	m.initCalls++
	m.mu.Unlock()

	if m.InitFunc != nil {
		return m.InitFunc()
	}
	return "/home/test/.config/earhorn/config.yaml", nil
}

func (m *mockConfigLoader) Path() (string, error) {
	m.mu.Lock()
	m.pathCalls++
	m.mu.Unlock()

	if m.PathFunc != nil {
		return m.PathFunc()
	}
	return "/home/test/.config/earhorn/config.yaml", nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

func (m *mockConfigLoader) InitCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initCalls
}

// ---------------------------------------------------------------------------
// Mock ToolResolver + ToolResolverFactory
// ---------------------------------------------------------------------------

type mockToolResolver struct {
	ResolveFunc func(tool tools.Tool) (string, error)

	mu           sync.Mutex
	resolveCalls []string // tool names, in resolution order
}

func (m *mockToolResolver) Resolve(tool tools.Tool) (string, error) {
	m.mu.Lock()
	m.resolveCalls = append(m.resolveCalls, tool.Name)
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(tool)
	}
	return "/usr/bin/" + tool.Name, nil
}

func (m *mockToolResolver) ResolveCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.resolveCalls...)
}

type mockToolResolverFactory struct {
	NewResolverFunc func(cfg config.ToolsConfig) ToolResolver

	mu               sync.Mutex
	newResolverCalls []config.ToolsConfig
	resolver         *mockToolResolver
}

func (m *mockToolResolverFactory) NewResolver(cfg config.ToolsConfig) ToolResolver {
	m.mu.Lock()
	m.newResolverCalls = append(m.newResolverCalls, cfg)
	m.mu.Unlock()

	if m.NewResolverFunc != nil {
		return m.NewResolverFunc(cfg)
	}
	if m.resolver != nil {
		return m.resolver
	}
	return &mockToolResolver{}
}

func (m *mockToolResolverFactory) NewResolverCalls() []config.ToolsConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]config.ToolsConfig, len(m.newResolverCalls))
	copy(result, m.newResolverCalls)
	return result
}

// ---------------------------------------------------------------------------
// Mock Prober + ProberFactory
// ---------------------------------------------------------------------------

type mockProber struct {
	ProbeFunc func(ctx context.Context, path string) (audio.FileInfo, error)

	mu         sync.Mutex
	probeCalls []string
}

func (m *mockProber) Probe(ctx context.Context, path string) (audio.FileInfo, error) {
	m.mu.Lock()
	m.probeCalls = append(m.probeCalls, path)
	m.mu.Unlock()

	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx, path)
	}
	return audio.FileInfo{Duration: 10 * time.Minute, BitRate: 128000}, nil
}

func (m *mockProber) ProbeCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.probeCalls...)
}

type mockProberFactory struct {
	NewProberFunc func(ffprobePath string) (audio.Prober, error)

	mu             sync.Mutex
	newProberCalls []string
	prober         *mockProber
}

func (m *mockProberFactory) NewProber(ffprobePath string) (audio.Prober, error) {
	m.mu.Lock()
	m.newProberCalls = append(m.newProberCalls, ffprobePath)
	m.mu.Unlock()

	if m.NewProberFunc != nil {
		return m.NewProberFunc(ffprobePath)
	}
	if m.prober != nil {
		return m.prober, nil
	}
	return &mockProber{}, nil
}

func (m *mockProberFactory) NewProberCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.newProberCalls...)
}

// ---------------------------------------------------------------------------
// Mock Extractor + ExtractorFactory
// ---------------------------------------------------------------------------

type mockExtractor struct {
	ExtractFunc func(ctx context.Context, path string, opts audio.SegmentOptions) (string, error)

	mu           sync.Mutex
	extractCalls []extractCall
}

type extractCall struct {
	Path string
	Opts audio.SegmentOptions
}

func (m *mockExtractor) Extract(ctx context.Context, path string, opts audio.SegmentOptions) (string, error) {
	m.mu.Lock()
	m.extractCalls = append(m.extractCalls, extractCall{Path: path, Opts: opts})
	m.mu.Unlock()

	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, path, opts)
	}
	return audio.SegmentPath(path, opts.Start, opts.End), nil
}

func (m *mockExtractor) ExtractCalls() []extractCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]extractCall, len(m.extractCalls))
	copy(result, m.extractCalls)
	return result
}

type mockExtractorFactory struct {
	NewExtractorFunc func(ffmpegPath string) (audio.Extractor, error)

	mu                sync.Mutex
	newExtractorCalls []string
	extractor         *mockExtractor
}

func (m *mockExtractorFactory) NewExtractor(ffmpegPath string) (audio.Extractor, error) {
	m.mu.Lock()
	m.newExtractorCalls = append(m.newExtractorCalls, ffmpegPath)
	m.mu.Unlock()

	if m.NewExtractorFunc != nil {
		return m.NewExtractorFunc(ffmpegPath)
	}
	if m.extractor != nil {
		return m.extractor, nil
	}
	return &mockExtractor{}, nil
}

func (m *mockExtractorFactory) NewExtractorCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.newExtractorCalls...)
}

// ---------------------------------------------------------------------------
// Mock Chunker + ChunkerFactory
// ---------------------------------------------------------------------------

// chunkSeq builds an iterator over fixed chunks, yielding err (if non-nil)
// after the last one.
func chunkSeq(chunks []audio.Chunk, err error) iter.Seq2[audio.Chunk, error] {
	return func(yield func(audio.Chunk, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
		if err != nil {
			yield(audio.Chunk{}, err)
		}
	}
}

type mockChunker struct {
	ChunksFunc func(ctx context.Context, path string) iter.Seq2[audio.Chunk, error]

	mu          sync.Mutex
	chunksCalls []string
}

func (m *mockChunker) Chunks(ctx context.Context, path string) iter.Seq2[audio.Chunk, error] {
	m.mu.Lock()
	m.chunksCalls = append(m.chunksCalls, path)
	m.mu.Unlock()

	if m.ChunksFunc != nil {
		return m.ChunksFunc(ctx, path)
	}
	// Pass the whole file through as a single chunk by default.
	return chunkSeq([]audio.Chunk{
		{Path: path, Index: 0, Start: 0, End: 5 * time.Minute},
	}, nil)
}

func (m *mockChunker) ChunksCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.chunksCalls...)
}

type mockChunkerFactory struct {
	NewChunkerFunc func(prober audio.Prober, extractor audio.Extractor,
		chunk, overlap time.Duration, speed float64) (Chunker, error)

	mu              sync.Mutex
	newChunkerCalls []newChunkerCall
	chunker         *mockChunker
}

type newChunkerCall struct {
	Chunk   time.Duration
	Overlap time.Duration
	Speed   float64
}

func (m *mockChunkerFactory) NewChunker(prober audio.Prober, extractor audio.Extractor,
	chunk, overlap time.Duration, speed float64) (Chunker, error) {

	m.mu.Lock()
	m.newChunkerCalls = append(m.newChunkerCalls, newChunkerCall{Chunk: chunk, Overlap: overlap, Speed: speed})
	m.mu.Unlock()

	if m.NewChunkerFunc != nil {
		return m.NewChunkerFunc(prober, extractor, chunk, overlap, speed)
	}
	if m.chunker != nil {
		return m.chunker, nil
	}
	return &mockChunker{}, nil
}

func (m *mockChunkerFactory) NewChunkerCalls() []newChunkerCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]newChunkerCall, len(m.newChunkerCalls))
	copy(result, m.newChunkerCalls)
	return result
}

// ---------------------------------------------------------------------------
// Mock Recording + Recorder + RecorderFactory
// ---------------------------------------------------------------------------

type mockRecording struct {
	path string

	done      chan struct{}
	closeOnce sync.Once

	mu        sync.Mutex
	err       error
	stopCalls int
}

func newMockRecording(path string) *mockRecording {
	return &mockRecording{path: path, done: make(chan struct{})}
}

// finish marks the capture as ended with err and closes Done.
func (m *mockRecording) finish(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
	m.closeOnce.Do(func() { close(m.done) })
}

func (m *mockRecording) Path() string { return m.path }

func (m *mockRecording) Done() <-chan struct{} { return m.done }

func (m *mockRecording) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *mockRecording) Wait(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-m.done:
		return m.path, m.Err()
	}
}

func (m *mockRecording) Stop() {
	m.mu.Lock()
	m.stopCalls++
	m.mu.Unlock()
	m.closeOnce.Do(func() { close(m.done) })
}

func (m *mockRecording) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

type mockRecorder struct {
	StartFunc func(ctx context.Context, outPath string) (Recording, error)

	mu         sync.Mutex
	startCalls []string
}

func (m *mockRecorder) Start(ctx context.Context, outPath string) (Recording, error) {
	m.mu.Lock()
	m.startCalls = append(m.startCalls, outPath)
	m.mu.Unlock()

	if m.StartFunc != nil {
		return m.StartFunc(ctx, outPath)
	}
	// Simulate a capture that finished immediately, leaving a file behind.
	if err := os.WriteFile(outPath, []byte("fake audio data"), 0644); err != nil {
		return nil, err
	}
	rec := newMockRecording(outPath)
	rec.finish(nil)
	return rec, nil
}

func (m *mockRecorder) StartCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.startCalls...)
}

type mockRecorderFactory struct {
	NewRecorderFunc func(recPath string, opts ...audio.RecorderOption) (Recorder, error)

	mu               sync.Mutex
	newRecorderCalls []string
	recorder         *mockRecorder
}

func (m *mockRecorderFactory) NewRecorder(recPath string, opts ...audio.RecorderOption) (Recorder, error) {
	m.mu.Lock()
	m.newRecorderCalls = append(m.newRecorderCalls, recPath)
	m.mu.Unlock()

	if m.NewRecorderFunc != nil {
		return m.NewRecorderFunc(recPath, opts...)
	}
	if m.recorder != nil {
		return m.recorder, nil
	}
	return &mockRecorder{}, nil
}

func (m *mockRecorderFactory) NewRecorderCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.newRecorderCalls...)
}

// ---------------------------------------------------------------------------
// Mock Player + PlayerFactory
// ---------------------------------------------------------------------------

type mockPlayer struct {
	PlayFunc func(ctx context.Context, path string) error

	mu        sync.Mutex
	playCalls []string
}

func (m *mockPlayer) Play(ctx context.Context, path string) error {
	m.mu.Lock()
	m.playCalls = append(m.playCalls, path)
	m.mu.Unlock()

	if m.PlayFunc != nil {
		return m.PlayFunc(ctx, path)
	}
	return nil
}

func (m *mockPlayer) PlayCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.playCalls...)
}

type mockPlayerFactory struct {
	NewPlayerFunc func(afplayPath string, silencer audio.Silencer) (Player, error)

	mu             sync.Mutex
	newPlayerCalls []playerCall
	player         *mockPlayer
}

type playerCall struct {
	AfplayPath  string
	HasSilencer bool
}

func (m *mockPlayerFactory) NewPlayer(afplayPath string, silencer audio.Silencer) (Player, error) {
	m.mu.Lock()
	m.newPlayerCalls = append(m.newPlayerCalls, playerCall{AfplayPath: afplayPath, HasSilencer: silencer != nil})
	m.mu.Unlock()

	if m.NewPlayerFunc != nil {
		return m.NewPlayerFunc(afplayPath, silencer)
	}
	if m.player != nil {
		return m.player, nil
	}
	return &mockPlayer{}, nil
}

func (m *mockPlayerFactory) NewPlayerCalls() []playerCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]playerCall, len(m.newPlayerCalls))
	copy(result, m.newPlayerCalls)
	return result
}

// ---------------------------------------------------------------------------
// Mock Silencer + SilencerFactory
// ---------------------------------------------------------------------------

type mockSilencer struct {
	PauseFunc func(ctx context.Context)

	mu         sync.Mutex
	pauseCalls int
}

func (m *mockSilencer) Pause(ctx context.Context) {
	m.mu.Lock()
	m.pauseCalls++
	m.mu.Unlock()

	if m.PauseFunc != nil {
		m.PauseFunc(ctx)
	}
}

func (m *mockSilencer) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

type mockSilencerFactory struct {
	NewSilencerFunc func(osascriptPath, pgrepPath string, cfg config.SilenceConfig) (audio.Silencer, error)

	mu               sync.Mutex
	newSilencerCalls []silencerCall
	silencer         *mockSilencer
}

type silencerCall struct {
	OsascriptPath string
	PgrepPath     string
	Cfg           config.SilenceConfig
}

func (m *mockSilencerFactory) NewSilencer(osascriptPath, pgrepPath string, cfg config.SilenceConfig) (audio.Silencer, error) {
	m.mu.Lock()
	m.newSilencerCalls = append(m.newSilencerCalls, silencerCall{
		OsascriptPath: osascriptPath,
		PgrepPath:     pgrepPath,
		Cfg:           cfg,
	})
	m.mu.Unlock()

	if m.NewSilencerFunc != nil {
		return m.NewSilencerFunc(osascriptPath, pgrepPath, cfg)
	}
	if m.silencer != nil {
		return m.silencer, nil
	}
	return &mockSilencer{}, nil
}

func (m *mockSilencerFactory) NewSilencerCalls() []silencerCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]silencerCall, len(m.newSilencerCalls))
	copy(result, m.newSilencerCalls)
	return result
}

// ---------------------------------------------------------------------------
// Mock DeviceLister + DeviceListerFactory
// ---------------------------------------------------------------------------

type mockDeviceLister struct {
	ListDevicesFunc func(ctx context.Context) ([]audio.Device, error)

	mu        sync.Mutex
	listCalls int
}

func (m *mockDeviceLister) ListDevices(ctx context.Context) ([]audio.Device, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()

	if m.ListDevicesFunc != nil {
		return m.ListDevicesFunc(ctx)
	}
	return []audio.Device{
		{ID: ":0", Name: "MacBook Pro Microphone"},
		{ID: ":1", Name: "BlackHole 2ch"},
	}, nil
}

func (m *mockDeviceLister) ListDevicesCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

type mockDeviceListerFactory struct {
	NewDeviceListerFunc func(ffmpegPath string) (audio.DeviceLister, error)

	mu                   sync.Mutex
	newDeviceListerCalls []string
	lister               *mockDeviceLister
}

func (m *mockDeviceListerFactory) NewDeviceLister(ffmpegPath string) (audio.DeviceLister, error) {
	m.mu.Lock()
	m.newDeviceListerCalls = append(m.newDeviceListerCalls, ffmpegPath)
	m.mu.Unlock()

	if m.NewDeviceListerFunc != nil {
		return m.NewDeviceListerFunc(ffmpegPath)
	}
	if m.lister != nil {
		return m.lister, nil
	}
	return &mockDeviceLister{}, nil
}

func (m *mockDeviceListerFactory) NewDeviceListerCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.newDeviceListerCalls...)
}

// ---------------------------------------------------------------------------
// Mock TranscriberFactory + Transcriber
// ---------------------------------------------------------------------------

type mockTranscriberFactory struct {
	NewTranscriberFunc func(apiKey string) transcribe.Transcriber

	mu                  sync.Mutex
	newTranscriberCalls []string // API keys passed
	transcriber         *mockTranscriber
}

func (m *mockTranscriberFactory) NewTranscriber(apiKey string) transcribe.Transcriber {
	m.mu.Lock()
	m.newTranscriberCalls = append(m.newTranscriberCalls, apiKey)
	m.mu.Unlock()

	if m.NewTranscriberFunc != nil {
		return m.NewTranscriberFunc(apiKey)
	}
	if m.transcriber != nil {
		return m.transcriber
	}
	return &mockTranscriber{}
}

func (m *mockTranscriberFactory) NewTranscriberCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.newTranscriberCalls...)
}

type mockTranscriber struct {
	TranscribeFunc func(ctx context.Context, audioPath string, opts transcribe.Options) (string, error)

	mu              sync.Mutex
	transcribeCalls []transcribeCall
}

type transcribeCall struct {
	AudioPath string
	Opts      transcribe.Options
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioPath string, opts transcribe.Options) (string, error) {
	m.mu.Lock()
	m.transcribeCalls = append(m.transcribeCalls, transcribeCall{AudioPath: audioPath, Opts: opts})
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audioPath, opts)
	}
	return "transcribed text", nil
}

func (m *mockTranscriber) TranscribeCalls() []transcribeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]transcribeCall, len(m.transcribeCalls))
	copy(result, m.transcribeCalls)
	return result
}

// ---------------------------------------------------------------------------
// Mock TagStore
// ---------------------------------------------------------------------------

type mockTagStore struct {
	WriteFunc func(path string, info tag.Info) error
	ReadFunc  func(path string) (tag.Info, error)

	mu         sync.Mutex
	writeCalls []tagWriteCall
}

type tagWriteCall struct {
	Path string
	Info tag.Info
}

func (m *mockTagStore) Write(path string, info tag.Info) error {
	m.mu.Lock()
	m.writeCalls = append(m.writeCalls, tagWriteCall{Path: path, Info: info})
	m.mu.Unlock()

	if m.WriteFunc != nil {
		return m.WriteFunc(path, info)
	}
	return nil
}

func (m *mockTagStore) Read(path string) (tag.Info, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(path)
	}
	return tag.Info{}, nil
}

func (m *mockTagStore) WriteCalls() []tagWriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]tagWriteCall, len(m.writeCalls))
	copy(result, m.writeCalls)
	return result
}

// ---------------------------------------------------------------------------
// Mock Monitor
// ---------------------------------------------------------------------------

type mockMonitor struct {
	RunFunc func(rec Recording) error

	mu       sync.Mutex
	runCalls int
}

func (m *mockMonitor) Run(rec Recording) error {
	m.mu.Lock()
	m.runCalls++
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(rec)
	}
	<-rec.Done()
	return nil
}

func (m *mockMonitor) RunCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runCalls
}

// ---------------------------------------------------------------------------
// Compile-time interface verification
// ---------------------------------------------------------------------------

var (
	_ ConfigLoader           = (*mockConfigLoader)(nil)
	_ ToolResolver           = (*mockToolResolver)(nil)
	_ ToolResolverFactory    = (*mockToolResolverFactory)(nil)
	_ audio.Prober           = (*mockProber)(nil)
	_ ProberFactory          = (*mockProberFactory)(nil)
	_ audio.Extractor        = (*mockExtractor)(nil)
	_ ExtractorFactory       = (*mockExtractorFactory)(nil)
	_ Chunker                = (*mockChunker)(nil)
	_ ChunkerFactory         = (*mockChunkerFactory)(nil)
	_ Recording              = (*mockRecording)(nil)
	_ Recorder               = (*mockRecorder)(nil)
	_ RecorderFactory        = (*mockRecorderFactory)(nil)
	_ Player                 = (*mockPlayer)(nil)
	_ PlayerFactory          = (*mockPlayerFactory)(nil)
	_ audio.Silencer         = (*mockSilencer)(nil)
	_ SilencerFactory        = (*mockSilencerFactory)(nil)
	_ audio.DeviceLister     = (*mockDeviceLister)(nil)
	_ DeviceListerFactory    = (*mockDeviceListerFactory)(nil)
	_ transcribe.Transcriber = (*mockTranscriber)(nil)
	_ TranscriberFactory     = (*mockTranscriberFactory)(nil)
	_ TagStore               = (*mockTagStore)(nil)
	_ Monitor                = (*mockMonitor)(nil)
)
