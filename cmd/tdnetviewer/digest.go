package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shanehull/tdnetviewer/internal/config"
	"github.com/shanehull/tdnetviewer/internal/digest"
	"github.com/shanehull/tdnetviewer/internal/history"
	"github.com/shanehull/tdnetviewer/internal/locale"
	"github.com/shanehull/tdnetviewer/internal/notify"
	"github.com/shanehull/tdnetviewer/internal/tdnet"
	"github.com/shanehull/tdnetviewer/internal/types"
)

func digestCMD(cfgPath *string) *cobra.Command {
	var date, historyDir string

	dg := &cobra.Command{
		Use:   "digest",
		Short: "Summarize today's disclosures whose titles match keywords, and email them",
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
			keywords := a.cfg.Digest.Keywords
			if len(keywords) == 0 {
				return fmt.Errorf("keywords are required (--keywords or DIGEST_KEYWORDS)")
			}

			historyManager, err := history.NewManager(historyDir, locale.Tokyo, a.logger)
			if err != nil {
				return err
			}

			a.logger.Info("starting digest", "date", date, "keywords", strings.Join(keywords, ", "))

			d := &digest.Digest{
				Listings:  a.newFetcher(nil),
				Summaries: a.newSummaryService(cmd.Context()),
				History:   historyManager,
				Workers:   a.cfg.Digest.Workers,
				Logger:    a.logger,
			}
			matches, err := d.Run(cmd.Context(), date, keywords)
			if err != nil {
				return err
			}

			notify.ReportMatches(cmd.OutOrStdout(), matches, historyManager.HistoryFilePath())

			var emailErr error
			if len(matches) > 0 && a.cfg.SMTP.Enabled() {
				sender := notify.NewEmailSender(notify.EmailConfig{
					SMTPServer: a.cfg.SMTP.Server,
					SMTPPort:   a.cfg.SMTP.Port,
					SMTPUser:   a.cfg.SMTP.User,
					SMTPPass:   a.cfg.SMTP.Pass,
					FromEmail:  a.cfg.SMTP.FromEmail,
					ToEmail:    a.cfg.SMTP.ToEmail,
					Enabled:    true,
				}, a.logger)
				emailErr = notify.EmailMatches(matches, sender, notify.NewHTMLEmailRenderer(), a.logger)
			}

			reported := make([]types.Match, 0, len(matches))
			for _, sm := range matches {
				reported = append(reported, sm.Match)
			}
			if err := historyManager.RecordMatches(reported); err != nil {
				return err
			}
			return emailErr
		},
	}

	fs := dg.Flags()
	fs.StringVarP(&date, "date", "d", "", "disclosure date as YYYYMMDD (default today in Tokyo)")
	fs.StringVar(&historyDir, "history-dir", "", "directory holding the reported-match history (default system temp)")
	fs.StringSliceP("keywords", "k", nil, "comma-separated title keywords or phrases")
	config.BindFlag(fs, "keywords", "digest.keywords")
	fs.Int("workers", 4, "concurrent summaries")
	config.BindFlag(fs, "workers", "digest.workers")
	fs.String("smtp-server", "smtp.gmail.com", "SMTP server address")
	config.BindFlag(fs, "smtp-server", "smtp.server")
	fs.Int("smtp-port", 587, "SMTP server port")
	config.BindFlag(fs, "smtp-port", "smtp.port")
	fs.String("smtp-user", "", "SMTP username (email address)")
	config.BindFlag(fs, "smtp-user", "smtp.user")
	fs.String("smtp-pass", "", "SMTP password or app password")
	config.BindFlag(fs, "smtp-pass", "smtp.pass")
	fs.String("to-email", "", "recipient email address")
	config.BindFlag(fs, "to-email", "smtp.to_email")
	fs.String("from-email", "", "sender email address (default smtp-user)")
	config.BindFlag(fs, "from-email", "smtp.from_email")

	return dg
}
