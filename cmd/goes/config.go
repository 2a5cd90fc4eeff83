package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"rpucella.net/goes-catalog/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or update the configuration file",
		Long: `Show the configuration, or update it when any of --base-dir, --protocol,
--concurrency or --log-level is given.

Example:
  goes config --base-dir ~/data/goes --protocol s3`,
		Args: cobra.NoArgs,
		RunE: runConfig,
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "default number of parallel downloads")
	return cmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	changed := false
	if flags.Changed("base-dir") {
		cfg.BaseDir, changed = baseDir, true
	}
	if flags.Changed("protocol") {
		cfg.Protocol, changed = protocol, true
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, changed = concurrency, true
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, changed = logLevel, true
	}
	if changed {
		if err := config.Write(path, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("yaml.Marshal: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}
