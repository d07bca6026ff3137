// Package detach launches fire-and-forget background processes.
//
// Commands dispatched here are intentionally unsupervised: the caller gets no
// handle, no output, and no failure signal. This is the right shape for OS
// automation side effects (pausing another application's playback) where the
// primary action must not wait on, or fail because of, the side effect.
package detach

import (
	"os/exec"
	"strings"
	"syscall"
)

// defaultShell interprets the command string. Always present on macOS.
const defaultShell = "/bin/sh"

// processStarter starts a command and immediately relinquishes it.
type processStarter interface {
	Start(path string, args []string) error
}

// osProcessStarter spawns real processes, detached into their own session
// with all stdio on the null device.
type osProcessStarter struct{}

func (osProcessStarter) Start(path string, args []string) error {
	// #nosec G204 -- path is the system shell; the command string is built
	// by callers from configuration, not remote input
	cmd := exec.Command(path, args...)
	// Stdin/Stdout/Stderr stay nil, which os/exec maps to /dev/null.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	// Drop our reference; the child outlives us and init reaps it.
	return cmd.Process.Release()
}

// Invoker dispatches shell command strings as detached background processes.
type Invoker struct {
	shell   string
	starter processStarter
}

// NewInvoker creates an Invoker that interprets commands with /bin/sh.
// Pass nil to spawn real processes.
func NewInvoker(starter processStarter) *Invoker {
	if starter == nil {
		starter = osProcessStarter{}
	}
	return &Invoker{shell: defaultShell, starter: starter}
}

// Spawn launches command in the background and returns immediately.
// There is no result: spawn failures are invisible to the caller by
// contract. Blank commands are ignored.
func (in *Invoker) Spawn(command string) {
	if strings.TrimSpace(command) == "" {
		return
	}
	_ = in.starter.Start(in.shell, []string{"-c", command})
}

// Quote returns s as a single POSIX shell word, safe to embed in a command
// string passed to Spawn. Embedded single quotes become the '\'' sequence.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
