package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"eventsort/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:         "config",
		Short:       "Configuration utilities",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set paths.source_dir and paths.target_dir (or pass --source/--target) before running eventsort sort.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			p := newStatusPrinter(cmd.OutOrStdout())
			if ctx.configExists {
				p.line("Config", statusInfo, ctx.configPath)
			} else {
				p.line("Config", statusWarn, "no file found; defaults were used")
			}
			p.line("Source", pathStatus(cfg.Paths.SourceDir), displayPath(cfg.Paths.SourceDir))
			p.line("Target", statusInfo, displayPath(cfg.Paths.TargetDir))
			p.line("Timezone", statusInfo, cfg.Location().String())
			p.line("Manifest", statusInfo, yesNo(cfg.Manifest.Enabled))
			fmt.Fprintln(p.out, "Configuration valid")
			return nil
		},
	}
}

func pathStatus(path string) statusKind {
	if path == "" {
		return statusWarn
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return statusWarn
	}
	return statusOK
}

func displayPath(path string) string {
	if path == "" {
		return "not set"
	}
	return path
}
