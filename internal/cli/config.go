package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-speechcut/internal/config"
)

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/speechcut/config.toml
($XDG_CONFIG_HOME/speechcut/config.toml when set). Keys missing from the
file fall back to SPEECHCUT_* environment variables. Command-line flags
override both.

Supported settings:
  model-size       Whisper model: tiny, base          (env: SPEECHCUT_MODEL_SIZE)
  merge-threshold  Max gap joined, 0.0-1.0 seconds    (env: SPEECHCUT_MERGE_THRESHOLD)
  provider         Transcription: whisper, openai     (env: SPEECHCUT_PROVIDER)
  language         Spoken language, ISO 639-1         (env: SPEECHCUT_LANGUAGE)
  output           Archive path                       (env: SPEECHCUT_OUTPUT)
  work-dir         Parent of per-run segment dirs     (env: SPEECHCUT_WORK_DIR)
  log-level        debug, info, warn, error           (env: SPEECHCUT_LOG_LEVEL)
  log-format       console, json                      (env: SPEECHCUT_LOG_FORMAT)`,
		Example: `  speechcut config set merge-threshold 0.5
  speechcut config get provider
  speechcut config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

The value is validated before it is written. Paths starting with ~/ are
expanded.`,
		Example: `  speechcut config set model-size tiny
  speechcut config set output ~/clips/speech.zip`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  speechcut config get merge-threshold`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows both values from the config file and environment variable fallbacks.`,
		Example: `  speechcut config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if key == config.KeyOutput || key == config.KeyWorkDir {
		value = config.ExpandPath(strings.TrimSpace(value))
	}
	if err := config.Save(key, value); err != nil {
		return err
	}
	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	value, err := config.Get(key)
	if err != nil {
		return err
	}
	if value == "" {
		value = env.Getenv(config.EnvName(key))
	}
	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}
	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	for _, key := range config.Keys {
		if _, ok := data[key]; ok {
			continue
		}
		if envVal := env.Getenv(config.EnvName(key)); envVal != "" {
			data[key] = envVal + " (from env)"
		}
	}

	if len(data) == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range config.Keys {
			fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
		return nil
	}

	for _, key := range config.Keys {
		if v, ok := data[key]; ok {
			fmt.Fprintf(env.Stdout, "%s=%s\n", key, v)
		}
	}
	return nil
}
