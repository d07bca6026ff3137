// Command earhorn probes, slices, records, silences, plays, and transcribes
// desktop audio on macOS.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/earhorn/earhorn/internal/audio"
	"github.com/earhorn/earhorn/internal/cli"
	"github.com/earhorn/earhorn/internal/config"
	"github.com/earhorn/earhorn/internal/tools"
	"github.com/earhorn/earhorn/internal/transcribe"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK            = 0
	ExitGeneral       = 1
	ExitUsage         = 2
	ExitSetup         = 3
	ExitValidation    = 4
	ExitAudio         = 5
	ExitTranscription = 6
	ExitInterrupt     = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	env := cli.DefaultEnv()

	rootCmd := &cobra.Command{
		Use:     "earhorn",
		Short:   "A desktop audio toolbox for macOS",
		Long:    "Probe, slice, record, silence, play, and transcribe desktop audio.",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Errors are printed once, by us, with an exit code attached.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(cli.ProbeCmd(env))
	rootCmd.AddCommand(cli.ExtractCmd(env))
	rootCmd.AddCommand(cli.ChunksCmd(env))
	rootCmd.AddCommand(cli.RecordCmd(env))
	rootCmd.AddCommand(cli.PlayCmd(env))
	rootCmd.AddCommand(cli.SilenceCmd(env))
	rootCmd.AddCommand(cli.DevicesCmd(env))
	rootCmd.AddCommand(cli.TranscribeCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup: missing external tools or credentials.
	if errors.Is(err, tools.ErrToolNotFound) ||
		errors.Is(err, cli.ErrAPIKeyMissing) ||
		errors.Is(err, audio.ErrNoAudioDevice) {
		return ExitSetup
	}

	// Validation: bad arguments or configuration.
	if errors.Is(err, cli.ErrInvalidDuration) ||
		errors.Is(err, cli.ErrUnsupportedFormat) ||
		errors.Is(err, cli.ErrFileNotFound) ||
		errors.Is(err, cli.ErrOutputExists) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, config.ErrConfigExists) ||
		errors.Is(err, audio.ErrInvalidOverlap) ||
		errors.Is(err, audio.ErrInvalidSegmentBounds) {
		return ExitValidation
	}

	// Audio processing.
	if errors.Is(err, audio.ErrProbeFailed) ||
		errors.Is(err, audio.ErrTranscodeFailed) ||
		errors.Is(err, audio.ErrSpawnFailed) ||
		errors.Is(err, audio.ErrPlaybackFailed) {
		return ExitAudio
	}

	// Transcription API.
	if errors.Is(err, transcribe.ErrRateLimit) ||
		errors.Is(err, transcribe.ErrQuotaExceeded) ||
		errors.Is(err, transcribe.ErrTimeout) ||
		errors.Is(err, transcribe.ErrAuthFailed) ||
		errors.Is(err, transcribe.ErrBadRequest) {
		return ExitTranscription
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns are substrings of the errors cobra returns for
// command-line misuse. Cobra doesn't type these errors, so matching their
// text is the only way to tell them apart from runtime failures.
var cobraUsageErrorPatterns = []string{
	"required flag",
	"unknown flag",
	"unknown shorthand",
	"unknown command",
	"flag needs an argument",
	"invalid argument",
	"if any flags in the group",
	"accepts ",
	"requires at least",
	"requires at most",
}

func isCobraUsageError(err error) bool {
	msg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
