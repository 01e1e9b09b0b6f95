package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/windoze95/saltybytes-chef/internal/app"
	"github.com/windoze95/saltybytes-chef/internal/service"
)

func newSuggestCmd() *cobra.Command {
	var (
		dietary   string
		skipCache bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "suggest <prompt>",
		Short: "Generate one recipe and print it with its timing profile",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			pipeline, err := app.NewPipeline(ctx, cfg)
			if err != nil {
				return err
			}
			defer pipeline.Close()

			result, err := pipeline.Suggestions.Suggest(ctx, service.SuggestionRequest{
				Prompt:    strings.Join(args, " "),
				Dietary:   dietary,
				SkipCache: skipCache,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Fprintln(out, result.DisplayText)
			fmt.Fprintln(out)
			if result.Metadata.CacheHit {
				fmt.Fprintln(out, "(served from cache)")
			}
			fmt.Fprintln(out, result.Metadata.Profile.Table())
			return nil
		},
	}

	cmd.Flags().StringVarP(&dietary, "dietary", "d", "", "dietary requirements, e.g. \"vegan, nut-free\"")
	cmd.Flags().BoolVar(&skipCache, "skip-cache", false, "bypass the search and result caches")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}
