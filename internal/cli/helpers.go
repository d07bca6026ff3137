package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/earhorn/earhorn/internal/audio"
	"github.com/earhorn/earhorn/internal/config"
	"github.com/earhorn/earhorn/internal/tools"
)

// loadConfig returns the effective configuration. A broken config file is
// reported as a warning and the defaults are used, so an old or hand-mangled
// file never bricks the tool. Only `config show` fails hard on it.
func loadConfig(env *Env) config.Config {
	cfg, err := env.Config.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: using default config: %v\n", err)
	}
	return cfg
}

// checkInputFile verifies the input file exists and is accessible.
func checkInputFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}
	return nil
}

// newSilencer resolves the tools the playback silencer shells out to and
// builds it with the configured application names.
func newSilencer(env *Env, resolver ToolResolver, cfg config.SilenceConfig) (audio.Silencer, error) {
	osascriptPath, err := resolver.Resolve(tools.Osascript)
	if err != nil {
		return nil, err
	}
	pgrepPath, err := resolver.Resolve(tools.Pgrep)
	if err != nil {
		return nil, err
	}
	return env.Silencers.NewSilencer(osascriptPath, pgrepPath, cfg)
}

// optionalSilencer builds a silencer if the required tools are available,
// warning and returning nil otherwise. Recording and playback degrade
// gracefully when osascript or pgrep is missing; the standalone silence
// command does not.
func optionalSilencer(env *Env, resolver ToolResolver, cfg config.SilenceConfig) audio.Silencer {
	s, err := newSilencer(env, resolver, cfg)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: playback silencing unavailable: %v\n", err)
		return nil
	}
	return s
}

// parseTimestamp parses a segment bound given either as plain seconds
// ("90", "90.5") or as a Go duration ("1m30s").
func parseTimestamp(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("timestamp %q must not be negative: %w", s, ErrInvalidDuration)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w (use seconds like 90 or a duration like 1m30s)", s, ErrInvalidDuration)
	}
	if d < 0 {
		return 0, fmt.Errorf("timestamp %q must not be negative: %w", s, ErrInvalidDuration)
	}
	return d, nil
}

// fileSize returns the size of the file at path in bytes.
func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
