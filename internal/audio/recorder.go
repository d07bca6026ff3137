package audio

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/earhorn/earhorn/internal/tools"
)

// Default recording parameters. 22.05kHz mono is plenty for voice and keeps
// files small enough to transcribe without re-encoding.
const (
	DefaultSampleRate = 22050
	DefaultChannels   = 1

	// DefaultStopTimeout is how long Stop waits for rec to flush and exit
	// after SIGINT before killing it.
	DefaultStopTimeout = 5 * time.Second
)

// WarnFunc receives diagnostic messages that must not interrupt the caller.
type WarnFunc func(format string, args ...any)

// defaultWarnFunc writes warnings to stderr.
func defaultWarnFunc(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// Silencer asks other applications to pause their audio output.
// Implementations are best-effort and never report failure.
type Silencer interface {
	Pause(ctx context.Context)
}

// Recorder captures microphone audio to disk using the sox `rec` CLI.
// The input device follows sox conventions: set AUDIODEV in the environment
// to record from something other than the system default.
type Recorder struct {
	recPath     string
	sampleRate  int
	channels    int
	stopTimeout time.Duration
	silencer    Silencer
	warn        WarnFunc

	// Injectable dependency (defaults to OS implementation).
	starter captureStarter
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithSampleRate sets the recording sample rate in Hz.
func WithSampleRate(rate int) RecorderOption {
	return func(r *Recorder) {
		if rate > 0 {
			r.sampleRate = rate
		}
	}
}

// WithChannels sets the number of recording channels.
func WithChannels(channels int) RecorderOption {
	return func(r *Recorder) {
		if channels > 0 {
			r.channels = channels
		}
	}
}

// WithSilencer sets a Silencer invoked right before capture starts, so the
// recording does not pick up music or videos playing elsewhere.
func WithSilencer(s Silencer) RecorderOption {
	return func(r *Recorder) {
		r.silencer = s
	}
}

// WithStopTimeout sets how long Stop waits before escalating to SIGKILL.
func WithStopTimeout(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		if d > 0 {
			r.stopTimeout = d
		}
	}
}

// WithRecorderWarnFunc sets a callback for recorder warning messages.
// By default, warnings are written to stderr. Set to nil to suppress.
func WithRecorderWarnFunc(fn WarnFunc) RecorderOption {
	return func(r *Recorder) {
		r.warn = fn
	}
}

// WithRecorderStarter sets the process starter for Recorder.
func WithRecorderStarter(s captureStarter) RecorderOption {
	return func(r *Recorder) {
		r.starter = s
	}
}

// NewRecorder creates a Recorder backed by the rec binary at recPath.
func NewRecorder(recPath string, opts ...RecorderOption) (*Recorder, error) {
	if recPath == "" {
		return nil, fmt.Errorf("rec path cannot be empty: %w", tools.ErrToolNotFound)
	}

	r := &Recorder{
		recPath:     recPath,
		sampleRate:  DefaultSampleRate,
		channels:    DefaultChannels,
		stopTimeout: DefaultStopTimeout,
		warn:        defaultWarnFunc,
		starter:     osCaptureStarter{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Start silences other applications, then spawns rec writing to outPath.
// The returned Recording is live immediately; the caller decides when it
// ends, via Stop or an external signal to the rec process.
func (r *Recorder) Start(ctx context.Context, outPath string) (*Recording, error) {
	if outPath == "" {
		return nil, fmt.Errorf("output path cannot be empty")
	}

	if r.silencer != nil {
		r.silencer.Pause(ctx)
	}

	proc, err := r.starter.Start(r.recPath, recordArgs(outPath, r.sampleRate, r.channels))
	if err != nil {
		return nil, fmt.Errorf("%w: rec: %v", ErrSpawnFailed, err)
	}

	rec := &Recording{
		path:        outPath,
		proc:        proc,
		warn:        r.warn,
		stopTimeout: r.stopTimeout,
		done:        make(chan struct{}),
	}
	go rec.monitor()

	return rec, nil
}

// recordArgs builds the rec argument list: quiet mode, explicit channel
// count and sample rate, output file last.
func recordArgs(outPath string, sampleRate, channels int) []string {
	return []string{
		"-q",
		"-c", strconv.Itoa(channels),
		"-r", strconv.Itoa(sampleRate),
		outPath,
	}
}

// Recording is a capture in progress. It ends when the rec process exits,
// whether through Stop, an outside signal, or a crash; the output file is
// whatever rec managed to flush by then.
type Recording struct {
	path        string
	proc        captureProcess
	warn        WarnFunc
	stopTimeout time.Duration

	done     chan struct{}
	err      error // Written once by monitor before done closes.
	stopOnce sync.Once
}

// Path returns the output file path.
func (r *Recording) Path() string {
	return r.path
}

// Done returns a channel closed when the rec process has exited.
func (r *Recording) Done() <-chan struct{} {
	return r.done
}

// Err reports how the rec process exited. It returns nil while the
// recording is still running, and nil after a clean exit.
func (r *Recording) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Wait blocks until the recording ends and returns the output path.
// A non-zero exit from rec does not fail the wait: an interrupted capture
// still leaves a playable file, so the exit status is only logged and left
// for Err. Wait fails only when ctx is canceled first.
func (r *Recording) Wait(ctx context.Context) (string, error) {
	select {
	case <-r.done:
		return r.path, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Stop ends the recording: SIGINT first so rec finalizes the file, SIGKILL
// if it has not exited after the stop timeout. Stop blocks until the
// process is gone and is safe to call more than once.
func (r *Recording) Stop() {
	r.stopOnce.Do(func() {
		select {
		case <-r.done:
			return
		default:
		}

		// SIGINT lets rec flush buffers and write the file header.
		if err := r.proc.Signal(os.Interrupt); err != nil {
			_ = r.proc.Kill()
		}

		select {
		case <-r.done:
		case <-time.After(r.stopTimeout):
			_ = r.proc.Kill()
			<-r.done
		}
	})
}

// monitor waits for the rec process and records how it went.
func (r *Recording) monitor() {
	if err := r.proc.Wait(); err != nil {
		r.err = err
		if r.warn != nil {
			r.warn("rec exited: %v", err)
		}
	}
	close(r.done)
}
