package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ConfigCmd creates the config command and its subcommands.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		Long: `Manage the earhorn configuration file.

The file lives at ~/.config/earhorn/config.yaml (XDG_CONFIG_HOME is
honored; EARHORN_CONFIG overrides the full path). A missing file simply
means defaults.`,
		Example: `  earhorn config init
  earhorn config show
  earhorn config path`,
	}

	cmd.AddCommand(configInitCmd(env))
	cmd.AddCommand(configShowCmd(env))
	cmd.AddCommand(configPathCmd(env))

	return cmd
}

func configInitCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(env)
		},
	}
}

func configShowCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(env)
		},
	}
}

func configPathCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigPath(env)
		},
	}
}

func runConfigInit(env *Env) error {
	path, err := env.Config.Init()
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Stderr, "Wrote %s\n", path)
	fmt.Fprintln(env.Stderr, "Edit it to change defaults; every value is optional.")
	return nil
}

// runConfigShow prints the effective configuration. Unlike every other
// command, a broken config file is a hard error here: this is the command
// users run to find out what is wrong with it.
func runConfigShow(env *Env) error {
	cfg, err := env.Config.Load()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot render config: %w", err)
	}

	_, err = env.Stdout.Write(data)
	return err
}

func runConfigPath(env *Env) error {
	path, err := env.Config.Path()
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, path)
	return nil
}
