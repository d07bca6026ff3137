package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/earhorn/earhorn/internal/tools"
)

// PlayCmd creates the play command.
func PlayCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "play <file>",
		Short: "Play an audio file after pausing other media",
		Long: `Play an audio file with afplay, pausing browser video tabs and the
music player first so playback is not layered over them.`,
		Example: `  earhorn play recording_20260101_120000.mp3`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), env, args[0])
		},
	}
}

func runPlay(ctx context.Context, env *Env, path string) error {
	// 1. File exists
	if err := checkInputFile(path); err != nil {
		return err
	}

	// 2. Resolve afplay
	cfg := loadConfig(env)
	resolver := env.Tools.NewResolver(cfg.Tools)

	afplayPath, err := resolver.Resolve(tools.Afplay)
	if err != nil {
		return err
	}

	silencer := optionalSilencer(env, resolver, cfg.Silence)

	player, err := env.Players.NewPlayer(afplayPath, silencer)
	if err != nil {
		return err
	}

	// 3. Play to completion
	fmt.Fprintf(env.Stderr, "Playing %s... (press Ctrl+C to stop)\n", path)
	return player.Play(ctx, path)
}
