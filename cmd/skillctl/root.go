package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"alfredoptarigan/skill-analyzer/internal/app"
	"alfredoptarigan/skill-analyzer/internal/config"
	"alfredoptarigan/skill-analyzer/internal/logger"
)

const appName = "skillctl"

// Actual version can be specified in build command.
var version = "unknown"

type cli struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "skillctl extracts resume skills and analyzes them against job positions",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolP("debug", "d", false, "verbose/debug output")
	flags.BoolP("json", "j", false, "json format for logging")
	flags.String("store", "", "store backend: postgres or memory (default from STORE_BACKEND)")
	flags.String("lexicon", "", "path to a lexicon YAML file (default is the embedded catalog)")

	for _, name := range []string{"debug", "json", "store", "lexicon"} {
		_ = c.v.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(
		c.newExtractCmd(),
		c.newIngestCmd(),
		c.newAnalyzeCmd(),
		c.newLexiconCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// config merges flags over the environment configuration.
func (c *cli) config() *config.Config {
	cfg := config.Load()
	if store := c.v.GetString("store"); store != "" {
		cfg.Database.Backend = store
	}
	if path := c.v.GetString("lexicon"); path != "" {
		cfg.Lexicon.Path = path
	}
	if c.v.IsSet("workers") {
		cfg.Ingest.Concurrency = c.v.GetInt("workers")
	}
	return cfg
}

func (c *cli) logger() (*zap.Logger, error) {
	l, err := logger.New(c.v.GetBool("json"), c.v.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}
	return l, nil
}

// components builds the pipeline; the returned func releases it.
func (c *cli) components(ctx context.Context) (*app.Components, *config.Config, *zap.Logger, func(), error) {
	log, err := c.logger()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	cfg := c.config()
	components, err := app.Build(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	done := func() {
		components.Close()
		_ = log.Sync()
	}
	return components, cfg, log, done, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s\n", appName, version)
		},
	}
}
