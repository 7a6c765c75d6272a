package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile     string
	logLevel    string
	logFormat   string
	metricsAddr string
	retries     int
)

var rootCmd = &cobra.Command{
	Use:   "chatbridge",
	Short: "Chatbridge - streaming chat across local and hosted LLMs",
	Long: `Chatbridge sends prompts to Ollama, LM Studio, the Claude API or the
OpenAI API and streams the answer back line by line.

Provider addresses, API keys and sampling parameters come from a YAML
settings file, optionally overridden by CHATBRIDGE_* environment variables
and a .env file next to the settings file. Logs go to stderr so stdout
carries only generated text.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "chatbridge.yaml", "settings file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error); defaults to CHATBRIDGE_LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (compact, json); defaults to CHATBRIDGE_LOG_FORMAT")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9464)")
	rootCmd.PersistentFlags().IntVar(&retries, "retries", 0, "retry a stream that fails to open (connection error, 429 or 5xx) up to this many times; off by default")
}
