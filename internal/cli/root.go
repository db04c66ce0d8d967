package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	standalone bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "oraclehubd",
	Short: "oraclehubd - Price Oracle Hub Daemon",
	Long: `oraclehubd maintains a registry of whitelisted price proxies per asset
symbol and resolves price queries by walking each symbol's priority-ordered
source list until a fresh quote is found. Administration and queries are
exposed over a JSON-RPC API.`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadDotEnv)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&standalone, "standalone", false, "run with the in-memory store and scripted proxies")
}

// loadDotEnv loads a .env file when present; system environment wins
func loadDotEnv() {
	_ = godotenv.Load()
}
