package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:           "tdnetviewer",
		Short:         "Browse and summarize TDnet timely disclosures",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (yaml, json or toml)")

	root.AddCommand(
		serveCMD(&cfgPath),
		listingsCMD(&cfgPath),
		summarizeCMD(&cfgPath),
		digestCMD(&cfgPath),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
