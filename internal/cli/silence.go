package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// SilenceCmd creates the silence command.
func SilenceCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "silence",
		Short: "Pause media playing in the browser and music player",
		Long: `Ask the configured browser to pause video tabs and the configured
media player to pause playback. Applications that are not running are
left alone. Pause requests are dispatched in the background; the
command returns without waiting for them.`,
		Example: `  earhorn silence`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSilence(cmd.Context(), env)
		},
	}
}

func runSilence(ctx context.Context, env *Env) error {
	cfg := loadConfig(env)
	resolver := env.Tools.NewResolver(cfg.Tools)

	// Unlike record and play, missing tools are fatal here: pausing is the
	// entire point of the command.
	silencer, err := newSilencer(env, resolver, cfg.Silence)
	if err != nil {
		return err
	}

	silencer.Pause(ctx)
	fmt.Fprintln(env.Stderr, "Asked running players to pause.")
	return nil
}
