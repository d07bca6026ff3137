// Package tools locates the external command-line tools earhorn delegates
// its audio work to. Nothing is downloaded or installed: a missing tool
// resolves to an error carrying an install hint.
package tools

import "fmt"

// Tool describes one external command-line dependency.
type Tool struct {
	Name   string // executable name looked up on $PATH
	EnvVar string // environment variable overriding resolution
	Hint   string // how to obtain the tool, shown on resolution failure
}

// The tools earhorn shells out to. afplay, osascript and pgrep ship with
// macOS; their hints only matter when a configured override is broken.
var (
	FFmpeg    = Tool{Name: "ffmpeg", EnvVar: "EARHORN_FFMPEG", Hint: "brew install ffmpeg"}
	FFprobe   = Tool{Name: "ffprobe", EnvVar: "EARHORN_FFPROBE", Hint: "brew install ffmpeg"}
	Rec       = Tool{Name: "rec", EnvVar: "EARHORN_REC", Hint: "brew install sox"}
	Afplay    = Tool{Name: "afplay", EnvVar: "EARHORN_AFPLAY", Hint: "included with macOS"}
	Osascript = Tool{Name: "osascript", EnvVar: "EARHORN_OSASCRIPT", Hint: "included with macOS"}
	Pgrep     = Tool{Name: "pgrep", EnvVar: "EARHORN_PGREP", Hint: "included with macOS"}
)

// Resolver finds external tools.
type Resolver struct {
	env       envProvider
	stat      fileStatter
	overrides map[string]string // tool name -> path from the config file
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(r *Resolver) { r.env = e }
}

// WithFileStatter sets the file statter implementation.
func WithFileStatter(s fileStatter) ResolverOption {
	return func(r *Resolver) { r.stat = s }
}

// WithOverrides sets configured tool paths, keyed by tool name.
// Empty values are ignored.
func WithOverrides(paths map[string]string) ResolverOption {
	return func(r *Resolver) { r.overrides = paths }
}

// NewResolver creates a Resolver with the given options.
// Uses production defaults if no options are provided.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		env:  osEnvProvider{},
		stat: osFileStatter{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds a tool using the following precedence:
//  1. The tool's environment variable (error if set but pointing nowhere)
//  2. The configured path from the config file's tools section
//  3. System PATH
func (r *Resolver) Resolve(tool Tool) (string, error) {
	if envPath := r.env.Getenv(tool.EnvVar); envPath != "" {
		if _, err := r.stat.Stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but no binary exists there",
				ErrToolNotFound, tool.EnvVar, envPath)
		}
		return envPath, nil
	}

	if cfgPath := r.overrides[tool.Name]; cfgPath != "" {
		if _, err := r.stat.Stat(cfgPath); err != nil {
			return "", fmt.Errorf("%w: config sets %s to %q but no binary exists there",
				ErrToolNotFound, tool.Name, cfgPath)
		}
		return cfgPath, nil
	}

	if path, err := r.env.LookPath(tool.Name); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w: %s (%s)", ErrToolNotFound, tool.Name, tool.Hint)
}
