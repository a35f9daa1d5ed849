// Command agentlens scans a repository for AI-agent-facing documentation
// and prints the canonical artifact, skill, and linked-doc catalogs. It is
// a thin driver around the library packages; the catalogs themselves are
// produced entirely by pkg/locator, pkg/skills, and pkg/linkdocs.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentlens/agentlens/pkg/logger"
	"github.com/agentlens/agentlens/pkg/presenter"
)

var rootCmd = &cobra.Command{
	Use:   "agentlens",
	Short: "Catalog AI-agent documentation in a repository",
	Long: `agentlens discovers AGENTS.md, CLAUDE.md, Copilot instructions, rule
files, and SKILL.md manifests under a repository root, deduplicates them,
and resolves the documents they link to.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if level := viper.GetString("log_level"); level != "" {
			if err := logger.SetLogLevel(level); err != nil {
				return err
			}
		}
		if format := viper.GetString("log_format"); format != "" {
			logger.SetLogFormat(format)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func init() {
	viper.SetEnvPrefix("AGENTLENS")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.agentlens")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()

	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		presenter.New().Error(err, "")
		os.Exit(1)
	}
}
