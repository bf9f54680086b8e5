package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "jarvis",
	Short: "Jarvis - always-on voice command assistant",
	Long: `Jarvis listens for spoken commands, answers by voice and opens
sites and apps on request.

Configuration:
  --config points at a YAML file; built-in defaults apply otherwise.

Environment Variables:
  OPENAI_API_KEY         - API key for the openai capture and speech backends
  JARVIS_ASSISTANT_NAME  - Name the assistant answers to
  JARVIS_STORE_PATH      - File holding the remembered user name`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")

	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(interpretCmd)
	rootCmd.AddCommand(sayCmd)
	rootCmd.AddCommand(voicesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
