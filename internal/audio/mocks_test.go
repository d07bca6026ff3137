package audio_test

// Hand-rolled mocks for the audio package's injectable dependencies.
// Shared by the probe, segment, chunker, recorder, player, and device tests.

import (
	"context"
	"os"
	"sync"

	"github.com/earhorn/earhorn/internal/audio"
)

// mockCall records a single external command invocation.
type mockCall struct {
	name string
	args []string
}

// mockCommandRunner implements audio.CommandRunner with a programmable
// response and call recording.
type mockCommandRunner struct {
	outputFunc func(ctx context.Context, name string, args []string) ([]byte, error)
	calls      []mockCall
}

func (m *mockCommandRunner) CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error) {
	m.calls = append(m.calls, mockCall{name: name, args: args})
	if m.outputFunc != nil {
		return m.outputFunc(ctx, name, args)
	}
	return nil, nil
}

// mockProber implements audio.Prober with a fixed result.
type mockProber struct {
	info  audio.FileInfo
	err   error
	calls []string
}

func (p *mockProber) Probe(ctx context.Context, path string) (audio.FileInfo, error) {
	p.calls = append(p.calls, path)
	if p.err != nil {
		return audio.FileInfo{}, p.err
	}
	return p.info, nil
}

// extractCall records a single segment extraction request.
type extractCall struct {
	path string
	opts audio.SegmentOptions
}

// mockExtractor implements audio.Extractor. By default it succeeds and
// returns the derived segment path without touching the filesystem.
type mockExtractor struct {
	extractFunc func(ctx context.Context, path string, opts audio.SegmentOptions) (string, error)
	calls       []extractCall
}

func (e *mockExtractor) Extract(ctx context.Context, path string, opts audio.SegmentOptions) (string, error) {
	e.calls = append(e.calls, extractCall{path: path, opts: opts})
	if e.extractFunc != nil {
		return e.extractFunc(ctx, path, opts)
	}
	return audio.SegmentPath(path, opts.Start, opts.End), nil
}

// silencerFunc adapts a function to the audio.Silencer interface.
type silencerFunc func(ctx context.Context)

func (f silencerFunc) Pause(ctx context.Context) {
	f(ctx)
}

// mockProcess implements audio.CaptureProcess. Wait blocks until the
// process "exits": either the test calls finish, a signal arrives while
// exitOnSignal is set, or Kill runs.
type mockProcess struct {
	mu           sync.Mutex
	signals      []os.Signal
	kills        int
	signalErr    error
	exitOnSignal bool

	waitErr  error
	exit     chan struct{}
	exitOnce sync.Once
}

func newMockProcess(waitErr error) *mockProcess {
	return &mockProcess{
		waitErr: waitErr,
		exit:    make(chan struct{}),
	}
}

func (p *mockProcess) Signal(sig os.Signal) error {
	p.mu.Lock()
	p.signals = append(p.signals, sig)
	exitNow := p.exitOnSignal
	sigErr := p.signalErr
	p.mu.Unlock()

	if sigErr != nil {
		return sigErr
	}
	if exitNow {
		p.finish()
	}
	return nil
}

func (p *mockProcess) Kill() error {
	p.mu.Lock()
	p.kills++
	p.mu.Unlock()
	p.finish()
	return nil
}

func (p *mockProcess) Wait() error {
	<-p.exit
	return p.waitErr
}

// finish makes Wait return, as if the process exited.
func (p *mockProcess) finish() {
	p.exitOnce.Do(func() {
		close(p.exit)
	})
}

func (p *mockProcess) signalsSeen() []os.Signal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]os.Signal(nil), p.signals...)
}

func (p *mockProcess) killCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kills
}

// mockCaptureStarter implements audio.CaptureStarter.
type mockCaptureStarter struct {
	startFunc func(name string, args []string) (audio.CaptureProcess, error)
	proc      *mockProcess
	err       error
	calls     []mockCall
}

func (s *mockCaptureStarter) Start(name string, args []string) (audio.CaptureProcess, error) {
	s.calls = append(s.calls, mockCall{name: name, args: args})
	if s.startFunc != nil {
		return s.startFunc(name, args)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.proc, nil
}
