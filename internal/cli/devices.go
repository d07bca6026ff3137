package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/earhorn/earhorn/internal/tools"
)

// DevicesCmd creates the devices command.
func DevicesCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio input devices",
		Long: `List audio input devices via ffmpeg's avfoundation backend.
Real microphones are listed first, virtual capture devices last.

Recording uses the system default input. To record from another device,
set AUDIODEV to its name; sox reads it.`,
		Example: `  earhorn devices
  AUDIODEV="MacBook Pro Microphone" earhorn record`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDevices(cmd.Context(), env)
		},
	}
}

func runDevices(ctx context.Context, env *Env) error {
	cfg := loadConfig(env)
	resolver := env.Tools.NewResolver(cfg.Tools)

	ffmpegPath, err := resolver.Resolve(tools.FFmpeg)
	if err != nil {
		return err
	}

	lister, err := env.DeviceLister.NewDeviceLister(ffmpegPath)
	if err != nil {
		return err
	}

	devices, err := lister.ListDevices(ctx)
	if err != nil {
		return err
	}

	for _, d := range devices {
		fmt.Fprintf(env.Stdout, "%s  %s\n", d.ID, d.Name)
	}
	fmt.Fprintln(env.Stderr, "\nSet AUDIODEV to a device name to record from it.")
	return nil
}
