package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report configured capabilities and missing credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			caps := cfg.Capabilities()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "PROVIDER\t%s\n", caps.Provider)
			fmt.Fprintf(w, "MODEL\t%s\n", caps.Model)
			fmt.Fprintf(w, "SEARCH\t%s\n", onOff(caps.SearchEnabled))
			fmt.Fprintf(w, "CACHE\t%s (%s)\n", onOff(caps.CacheEnabled), caps.CacheBackend)
			if err := w.Flush(); err != nil {
				return err
			}

			missing := cfg.Suggest.MissingCredentials()
			if len(missing) == 0 {
				fmt.Println("\nAll required credentials are set.")
				return nil
			}
			fmt.Println("\nMissing credentials:")
			for _, name := range missing {
				fmt.Printf("  %s\n", name)
			}
			return fmt.Errorf("%d credential(s) missing", len(missing))
		},
	}
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
