package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"copydesk/internal/config"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "copydesk",
		Short: "Copydesk generates, manages, and publishes Korean marketing content.",
		Long: `Copydesk is the content operations CLI for the marketing blog:
it stocks article topics per category, drafts full articles with thumbnails,
publishes them to the record store, and serves the admin API.`,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.copydesk.yaml)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewTopicsCmd())
	rootCmd.AddCommand(NewArticleCmd())
	rootCmd.AddCommand(NewCacheCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}
