// Package cmd wires the tasks into the trafo command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"trafo/pkg/config"
	"trafo/pkg/logging"
	"trafo/pkg/tasks"
)

// app is the state shared by the sub-commands once the root has run.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
	logFile    io.Closer
}

// RootCommand creates the root command. Logs go to logOut; console output
// goes to the command's standard output.
func RootCommand(logOut io.Writer) *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "trafo",
		Short:         "Transformer health data: plots, synthetic rows and fidelity checks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if err := setupFlags(rootCmd, a.v, &a.configFile); err != nil {
		panic(err)
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(a.v, a.configFile)
		if err != nil {
			return err
		}
		a.cfg = cfg

		w := logOut
		if cfg.LogFile != "" {
			f, err := logging.OpenFile(cfg.Path(cfg.LogFile))
			if err != nil {
				return err
			}
			a.logFile = f
			w = f
		}
		a.logger = logging.NewLogger(cfg.LogLevel, cfg.LogFormat, w)
		return nil
	}

	rootCmd.AddCommand(
		taskCommand(a, "visualize", "Plot the distribution of every column of the real datasets",
			func(ctx context.Context, env *tasks.Env) error {
				_, err := tasks.Visualize(ctx, env)
				return err
			}),
		taskCommand(a, "generate", "Train a synthesizer per dataset and write synthetic rows",
			func(ctx context.Context, env *tasks.Env) error {
				_, err := tasks.Generate(ctx, env)
				return err
			}),
		taskCommand(a, "classify", "Grade synthetic data by how well a classifier tells it from real data",
			func(ctx context.Context, env *tasks.Env) error {
				_, err := tasks.Classify(ctx, env)
				return err
			}),
		taskCommand(a, "validate", "Plot the distribution of every column of the synthetic datasets",
			func(ctx context.Context, env *tasks.Env) error {
				_, err := tasks.Validate(ctx, env)
				return err
			}),
	)
	return rootCmd
}

func taskCommand(a *app, use, short string, run func(context.Context, *tasks.Env) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.logFile != nil {
				defer a.logFile.Close()
			}
			logger := logging.WithRun(a.logger, cmd.Name())
			logger.Debug("starting", "dir", a.cfg.Dir, "seed", a.cfg.Seed)
			env := &tasks.Env{Config: a.cfg, Out: cmd.OutOrStdout(), Logger: logger}
			if err := run(cmd.Context(), env); err != nil {
				logger.Error("command failed", "error", err)
				return fmt.Errorf("%s: %w", use, err)
			}
			return nil
		},
	}
}

// setupFlags defines the global flags and binds them to v.
func setupFlags(rootCmd *cobra.Command, v *viper.Viper, configFile *string) error {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(configFile, "config", "", "Optional YAML config file")
	flags.String("dir", ".", "Base directory of the input and output files")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.String("log-file", "", "Write logs to this file, relative to --dir, instead of stderr")
	flags.Int64("seed", 42, "Seed of every random generator")

	for key, flag := range map[string]string{
		"dir":        "dir",
		"log_level":  "log-level",
		"log_format": "log-format",
		"log_file":   "log-file",
		"seed":       "seed",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}
	return nil
}
