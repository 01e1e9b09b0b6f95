package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/windoze95/saltybytes-chef/internal/config"
	"github.com/windoze95/saltybytes-chef/internal/logger"
)

var version = "dev"

func main() {
	var verbose bool

	root := &cobra.Command{
		Use:     "chef",
		Short:   "Generate recipe suggestions from the command line",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logger.Init(true)
			}
			return config.LoadDotEnv()
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline stages to stderr")

	root.AddCommand(
		newSuggestCmd(),
		newCheckCmd(),
	)

	err := root.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the suggestion settings and prompts. Server-only
// variables are not required.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	prompts, err := config.LoadPrompts(cfg.EnvVars.PromptsPath)
	if err != nil {
		return nil, err
	}
	cfg.Prompts = prompts
	return cfg, nil
}
