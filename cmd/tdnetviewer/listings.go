package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/shanehull/tdnetviewer/internal/config"
	"github.com/shanehull/tdnetviewer/internal/locale"
	"github.com/shanehull/tdnetviewer/internal/tdnet"
	"github.com/shanehull/tdnetviewer/internal/types"
)

var csvHeader = []string{"time", "code", "company_name", "title", "pdf_url", "stock_exchange"}

func listingsCMD(cfgPath *string) *cobra.Command {
	var date, csvPath string
	var asJSON bool

	listings := &cobra.Command{
		Use:   "listings",
		Short: "Print every disclosure published on a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = time.Now().In(locale.Tokyo).Format("20060102")
			}
			if !tdnet.ValidDate(date) {
				return fmt.Errorf("--date must be in YYYYMMDD format: %q", date)
			}

			a, err := loadApp(cmd, *cfgPath)
			if err != nil {
				return err
			}

			listing, err := a.newFetcher(nil).FetchAll(cmd.Context(), date)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(listing.Records); err != nil {
					return err
				}
			default:
				writeTable(out, listing.Records)
				fmt.Fprintf(out, "\n%s件 (%s)", locale.Count(len(listing.Records)), date)
				if listing.Truncated {
					fmt.Fprint(out, " ※ 一部のページを取得できませんでした")
				}
				fmt.Fprintln(out)
			}

			if csvPath != "" {
				return writeCSVFile(csvPath, listing.Records)
			}
			return nil
		},
	}

	fs := listings.Flags()
	fs.StringVarP(&date, "date", "d", "", "disclosure date as YYYYMMDD (default today in Tokyo)")
	fs.StringVar(&csvPath, "csv", "", "also write the records to this CSV file")
	fs.BoolVar(&asJSON, "json", false, "print records as JSON instead of a table")
	fs.Int("max-pages", tdnet.DefaultMaxPages, "maximum listing pages to request")
	config.BindFlag(fs, "max-pages", "tdnet.max_pages")
	fs.String("page-error-policy", string(tdnet.PolicyTruncate), "on a failing page: truncate or fail")
	config.BindFlag(fs, "page-error-policy", "tdnet.page_error_policy")

	return listings
}

const (
	timeWidth    = 5
	codeWidth    = 6
	companyWidth = 24
	titleWidth   = 60
)

// writeTable prints records as fixed-width columns, measuring East Asian wide runes as two
// cells.
func writeTable(w io.Writer, records []types.DisclosureRecord) {
	fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
		pad("時刻", timeWidth), pad("コード", codeWidth), pad("会社名", companyWidth), pad("表題", titleWidth), "上場取引所")
	fmt.Fprintln(w, strings.Repeat("-", timeWidth+codeWidth+companyWidth+titleWidth+8+10))

	for _, rec := range records {
		fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
			pad(rec.Time, timeWidth),
			pad(rec.Code, codeWidth),
			pad(runewidth.Truncate(rec.CompanyName, companyWidth, "…"), companyWidth),
			pad(runewidth.Truncate(rec.Title, titleWidth, "…"), titleWidth),
			rec.StockExchange,
		)
	}
}

func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func writeCSVFile(path string, records []types.DisclosureRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := writeCSV(f, records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func writeCSV(w io.Writer, records []types.DisclosureRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write([]string{rec.Time, rec.Code, rec.CompanyName, rec.Title, rec.PDF(), rec.StockExchange}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
