package audio

import (
	"context"
	"os"
	"os/exec"
)

// commandRunner executes external commands to completion and returns their
// combined output.
type commandRunner interface {
	CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error)
}

// captureProcess is a started long-running process under caller control.
type captureProcess interface {
	Signal(sig os.Signal) error
	Kill() error
	Wait() error
}

// captureStarter launches long-running capture and playback processes.
// Unlike commandRunner, the process is returned immediately so the caller
// can signal it while it runs.
type captureStarter interface {
	Start(name string, args []string) (captureProcess, error)
}

// --- Default implementations using real OS functions ---

// osCommandRunner implements commandRunner using exec.CommandContext.
type osCommandRunner struct{}

func (osCommandRunner) CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error) {
	// #nosec G204 -- name and args are built by this package, not user input
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// osCaptureStarter implements captureStarter using exec.Command.
// Stdio stays nil, which os/exec maps to the null device.
type osCaptureStarter struct{}

func (osCaptureStarter) Start(name string, args []string) (captureProcess, error) {
	// #nosec G204 -- name and args are built by this package, not user input
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &osProcess{cmd: cmd}, nil
}

// osProcess wraps a started exec.Cmd as a captureProcess.
type osProcess struct {
	cmd *exec.Cmd
}

func (p *osProcess) Signal(sig os.Signal) error {
	return p.cmd.Process.Signal(sig)
}

func (p *osProcess) Kill() error {
	return p.cmd.Process.Kill()
}

func (p *osProcess) Wait() error {
	return p.cmd.Wait()
}
