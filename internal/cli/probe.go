package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/earhorn/earhorn/internal/audio"
	"github.com/earhorn/earhorn/internal/format"
	"github.com/earhorn/earhorn/internal/tools"
)

// ProbeCmd creates the probe command.
func ProbeCmd(env *Env) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "probe <file>",
		Short: "Show duration, bit rate, and tags of a media file",
		Long: `Probe a media file with ffprobe and report its duration, bit rate,
and embedded tags (title, artist, album).`,
		Example: `  earhorn probe lecture.mp3
  earhorn probe session.m4a --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd.Context(), env, args[0], jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print machine-readable JSON")

	return cmd
}

func runProbe(ctx context.Context, env *Env, path string, jsonOut bool) error {
	// 1. File exists
	if err := checkInputFile(path); err != nil {
		return err
	}

	// 2. Resolve ffprobe
	cfg := loadConfig(env)
	resolver := env.Tools.NewResolver(cfg.Tools)

	ffprobePath, err := resolver.Resolve(tools.FFprobe)
	if err != nil {
		return err
	}

	prober, err := env.Probers.NewProber(ffprobePath)
	if err != nil {
		return err
	}

	// 3. Probe and report
	info, err := prober.Probe(ctx, path)
	if err != nil {
		return err
	}

	if jsonOut {
		return printProbeJSON(env.Stdout, path, info)
	}

	printProbeText(env.Stdout, path, info)
	return nil
}

// probeReport is the machine-readable shape of probe output.
type probeReport struct {
	Path            string  `json:"path"`
	DurationSeconds float64 `json:"duration_seconds"`
	BitRate         int     `json:"bit_rate,omitempty"`
	Title           string  `json:"title,omitempty"`
	Artist          string  `json:"artist,omitempty"`
	Album           string  `json:"album,omitempty"`
}

func printProbeJSON(w io.Writer, path string, info audio.FileInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(probeReport{
		Path:            path,
		DurationSeconds: info.Duration.Seconds(),
		BitRate:         info.BitRate,
		Title:           info.Title,
		Artist:          info.Artist,
		Album:           info.Album,
	})
}

func printProbeText(w io.Writer, path string, info audio.FileInfo) {
	fmt.Fprintf(w, "File:     %s\n", path)
	fmt.Fprintf(w, "Duration: %s\n", format.Duration(info.Duration))
	if info.BitRate > 0 {
		fmt.Fprintf(w, "Bit rate: %s\n", format.BitRate(info.BitRate))
	}
	if info.Title != "" {
		fmt.Fprintf(w, "Title:    %s\n", info.Title)
	}
	if info.Artist != "" {
		fmt.Fprintf(w, "Artist:   %s\n", info.Artist)
	}
	if info.Album != "" {
		fmt.Fprintf(w, "Album:    %s\n", info.Album)
	}
}
