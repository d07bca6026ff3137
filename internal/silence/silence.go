// Package silence asks other macOS applications to pause their audio so a
// recording or playback session starts clean.
//
// Everything here is best-effort by contract: the pause requests are
// dispatched as detached osascript processes and their outcomes are never
// observed. A browser that refuses automation, a missing player, or a
// malformed tab must not stop the recording that triggered the request.
package silence

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/earhorn/earhorn/internal/detach"
	"github.com/earhorn/earhorn/internal/tools"
)

// invoker dispatches fire-and-forget shell commands.
type invoker interface {
	Spawn(command string)
}

// commandRunner executes external commands to completion and returns their
// combined output.
type commandRunner interface {
	CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error)
}

// osCommandRunner implements commandRunner using exec.CommandContext.
type osCommandRunner struct{}

func (osCommandRunner) CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error) {
	// #nosec G204 -- name and args are built by this package, not user input
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Silencer pauses configured applications' audio output. An empty browser or
// media player name disables that half of the behavior.
type Silencer struct {
	osascriptPath string
	pgrepPath     string

	browser     string
	mediaPlayer string
	videoHosts  []string

	// Injectable dependencies (default to OS implementations).
	invoker invoker
	cmd     commandRunner
}

// Option configures a Silencer.
type Option func(*Silencer)

// WithBrowser sets the browser application whose video tabs get paused.
func WithBrowser(name string) Option {
	return func(s *Silencer) {
		s.browser = name
	}
}

// WithMediaPlayer sets the media player application to pause.
func WithMediaPlayer(name string) Option {
	return func(s *Silencer) {
		s.mediaPlayer = name
	}
}

// WithVideoHosts sets the URL substrings identifying tabs worth pausing.
func WithVideoHosts(hosts []string) Option {
	return func(s *Silencer) {
		s.videoHosts = hosts
	}
}

// WithInvoker sets the background process dispatcher.
func WithInvoker(i invoker) Option {
	return func(s *Silencer) {
		s.invoker = i
	}
}

// WithCommandRunner sets the command runner used for process checks.
func WithCommandRunner(r commandRunner) Option {
	return func(s *Silencer) {
		s.cmd = r
	}
}

// New creates a Silencer that drives osascript and pgrep at the given paths.
func New(osascriptPath, pgrepPath string, opts ...Option) (*Silencer, error) {
	if osascriptPath == "" {
		return nil, fmt.Errorf("osascript path cannot be empty: %w", tools.ErrToolNotFound)
	}
	if pgrepPath == "" {
		return nil, fmt.Errorf("pgrep path cannot be empty: %w", tools.ErrToolNotFound)
	}

	s := &Silencer{
		osascriptPath: osascriptPath,
		pgrepPath:     pgrepPath,
		invoker:       detach.NewInvoker(nil),
		cmd:           osCommandRunner{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Pause asks the configured browser to pause video tabs and the configured
// media player to pause playback. Applications that are not running are
// skipped entirely; everything else is dispatched and forgotten.
func (s *Silencer) Pause(ctx context.Context) {
	if s.browser != "" && len(s.videoHosts) > 0 && s.isRunning(ctx, s.browser) {
		s.invoker.Spawn(s.osascriptCommand(browserPauseScript(s.browser, s.videoHosts)))
	}
	if s.mediaPlayer != "" && s.isRunning(ctx, s.mediaPlayer) {
		s.invoker.Spawn(s.osascriptCommand(playerPauseScript(s.mediaPlayer)))
	}
}

// isRunning checks for a live process with exactly the given name.
// pgrep exits zero only on a match.
func (s *Silencer) isRunning(ctx context.Context, app string) bool {
	_, err := s.cmd.CombinedOutput(ctx, s.pgrepPath, []string{"-x", app})
	return err == nil
}

// osascriptCommand wraps an AppleScript source as a shell command string
// suitable for detached dispatch.
func (s *Silencer) osascriptCommand(script string) string {
	return s.osascriptPath + " -e " + detach.Quote(script)
}

// browserPauseScript builds an AppleScript that walks every window and tab
// of the browser and pauses the video element in tabs on known video hosts.
// Each tab is wrapped in its own try block: a tab that cannot be scripted
// (chrome:// pages, killed renderers) must not abort the walk.
func browserPauseScript(browser string, hosts []string) string {
	conditions := make([]string, len(hosts))
	for i, host := range hosts {
		conditions[i] = "URL of t contains " + scriptString(host)
	}

	var b strings.Builder
	b.WriteString("tell application " + scriptString(browser) + "\n")
	b.WriteString("\trepeat with w in windows\n")
	b.WriteString("\t\trepeat with t in tabs of w\n")
	b.WriteString("\t\t\ttry\n")
	b.WriteString("\t\t\t\tif " + strings.Join(conditions, " or ") + " then\n")
	b.WriteString("\t\t\t\t\ttell t to execute javascript \"document.querySelector('video').pause()\"\n")
	b.WriteString("\t\t\t\tend if\n")
	b.WriteString("\t\t\tend try\n")
	b.WriteString("\t\tend repeat\n")
	b.WriteString("\tend repeat\n")
	b.WriteString("end tell")
	return b.String()
}

// playerPauseScript builds an AppleScript pausing a scriptable media player.
func playerPauseScript(player string) string {
	return "tell application " + scriptString(player) + " to pause"
}

// scriptString renders s as a double-quoted AppleScript string literal.
func scriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
