package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shanehull/tdnetviewer/internal/config"
)

func summarizeCMD(cfgPath *string) *cobra.Command {
	var pdfURL, title string
	var asJSON bool

	summarize := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize one disclosure PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pdfURL == "" {
				return fmt.Errorf("--url is required")
			}

			a, err := loadApp(cmd, *cfgPath)
			if err != nil {
				return err
			}

			result, err := a.newSummaryService(cmd.Context()).Summarize(cmd.Context(), pdfURL, title)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Fprintln(out, result.Summary)
			return nil
		},
	}

	fs := summarize.Flags()
	fs.StringVarP(&pdfURL, "url", "u", "", "PDF URL of the disclosure")
	fs.StringVarP(&title, "title", "t", "", "disclosure title")
	fs.BoolVar(&asJSON, "json", false, "print the full result as JSON")
	fs.String("model", "", "Gemini model name")
	config.BindFlag(fs, "model", "gemini.model")

	return summarize
}
