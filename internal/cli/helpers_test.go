package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/earhorn/earhorn/internal/config"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	configLoader *mockConfigLoader
	resolver     *mockToolResolver
	tools        *mockToolResolverFactory
	prober       *mockProber
	probers      *mockProberFactory
	extractor    *mockExtractor
	extractors   *mockExtractorFactory
	chunker      *mockChunker
	chunkers     *mockChunkerFactory
	recorder     *mockRecorder
	recorders    *mockRecorderFactory
	player       *mockPlayer
	players      *mockPlayerFactory
	silencer     *mockSilencer
	silencers    *mockSilencerFactory
	lister       *mockDeviceLister
	deviceLister *mockDeviceListerFactory
	transcriber  *mockTranscriber
	transcribers *mockTranscriberFactory
	tags         *mockTagStore
	monitor      *mockMonitor
}

// newTestMocks builds every mock and wires each factory to a shared inner
// mock so tests can assert on calls without replacing the factory.
func newTestMocks() *testMocks {
	m := &testMocks{
		configLoader: &mockConfigLoader{},
		resolver:     &mockToolResolver{},
		prober:       &mockProber{},
		extractor:    &mockExtractor{},
		chunker:      &mockChunker{},
		recorder:     &mockRecorder{},
		player:       &mockPlayer{},
		silencer:     &mockSilencer{},
		lister:       &mockDeviceLister{},
		transcriber:  &mockTranscriber{},
		tags:         &mockTagStore{},
		monitor:      &mockMonitor{},
	}
	m.tools = &mockToolResolverFactory{resolver: m.resolver}
	m.probers = &mockProberFactory{prober: m.prober}
	m.extractors = &mockExtractorFactory{extractor: m.extractor}
	m.chunkers = &mockChunkerFactory{chunker: m.chunker}
	m.recorders = &mockRecorderFactory{recorder: m.recorder}
	m.players = &mockPlayerFactory{player: m.player}
	m.silencers = &mockSilencerFactory{silencer: m.silencer}
	m.deviceLister = &mockDeviceListerFactory{lister: m.lister}
	m.transcribers = &mockTranscriberFactory{transcriber: m.transcriber}
	return m
}

// ---------------------------------------------------------------------------
// testEnv - creates a fully mocked Env for testing
// ---------------------------------------------------------------------------

// testEnvOptions configures a test environment.
type testEnvOptions struct {
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
	now    func() time.Time
	mocks  *testMocks
}

// testEnvOption configures testEnv.
type testEnvOption func(*testEnvOptions)

func withStdout(w io.Writer) testEnvOption {
	return func(o *testEnvOptions) { o.stdout = w }
}

func withStderr(w io.Writer) testEnvOption {
	return func(o *testEnvOptions) { o.stderr = w }
}

func withGetenv(fn func(string) string) testEnvOption {
	return func(o *testEnvOptions) { o.getenv = fn }
}

func withNow(fn func() time.Time) testEnvOption {
	return func(o *testEnvOptions) { o.now = fn }
}

func withMocks(m *testMocks) testEnvOption {
	return func(o *testEnvOptions) { o.mocks = m }
}

// testEnv creates a test Env with all dependencies mocked.
// Returns the Env and the mocks for assertions.
func testEnv(opts ...testEnvOption) (*Env, *testMocks) {
	options := &testEnvOptions{
		stdout: &syncBuffer{},
		stderr: &syncBuffer{},
		getenv: defaultTestEnv,
		now: func() time.Time {
			return time.Date(2026, 1, 26, 14, 30, 52, 0, time.UTC)
		},
		mocks: newTestMocks(),
	}

	for _, opt := range opts {
		opt(options)
	}

	m := options.mocks
	env := &Env{
		Stdout:       options.stdout,
		Stderr:       options.stderr,
		Getenv:       options.getenv,
		Now:          options.now,
		Config:       m.configLoader,
		Tools:        m.tools,
		Probers:      m.probers,
		Extractors:   m.extractors,
		Chunkers:     m.chunkers,
		Recorders:    m.recorders,
		Players:      m.players,
		Silencers:    m.silencers,
		DeviceLister: m.deviceLister,
		Transcribers: m.transcribers,
		Tags:         m.tags,
		Monitor:      m.monitor,
	}

	return env, m
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// fixedTime returns a function that always returns the given time.
func fixedTime(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// staticEnv returns a getenv function that returns values from the given map.
func staticEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

// defaultTestEnv supplies an API key and nothing else.
func defaultTestEnv(key string) string {
	if key == EnvOpenAIAPIKey {
		return "test-api-key"
	}
	return ""
}

// createTestAudioFile creates a temporary audio file for testing.
// Returns the file path. The file is automatically cleaned up after the test.
func createTestAudioFile(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)

	// Write minimal content to make the file non-empty
	if err := os.WriteFile(path, []byte("fake audio content"), 0644); err != nil {
		t.Fatalf("failed to create test audio file: %v", err)
	}
	return path
}

// createChunkFile creates a file standing in for an extracted chunk.
func createChunkFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("chunk"), 0644); err != nil {
		t.Fatalf("failed to create chunk file: %v", err)
	}
	return path
}

// configWith returns a ConfigLoader whose Load returns the defaults after
// applying mutate.
func configWith(mutate func(*config.Config)) *mockConfigLoader {
	return &mockConfigLoader{
		LoadFunc: func() (config.Config, error) {
			cfg := config.Default()
			mutate(&cfg)
			return cfg, nil
		},
	}
}

// configWithOutputDir returns a ConfigLoader that returns a config with the
// given output directory.
func configWithOutputDir(outputDir string) *mockConfigLoader {
	return configWith(func(cfg *config.Config) {
		cfg.OutputDir = outputDir
	})
}
