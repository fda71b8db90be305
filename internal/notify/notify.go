/*
Package notify reports digest matches on the console and by email.
*/
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shanehull/tdnetviewer/internal/types"
)

// NotificationData is the view model for one reported disclosure.
type NotificationData struct {
	Match   types.SummarizedMatch
	Summary string
	Method  string
}

type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

func newNotificationData(sm types.SummarizedMatch) NotificationData {
	data := NotificationData{Match: sm}
	if sm.Result != nil {
		data.Summary = sm.Result.Summary
		data.Method = methodLabel(sm.Result.Method)
	}
	return data
}

func methodLabel(m types.Method) string {
	switch m {
	case types.MethodAI:
		return "AI要約"
	case types.MethodFallback:
		return "簡易要約"
	}
	return ""
}

// ReportMatches writes a console report of matches to w.
func ReportMatches(w io.Writer, matches []types.SummarizedMatch, historyFilePath string) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "\n-------------------------------------------")
		fmt.Fprintln(w, "No new matching disclosures found.")
		fmt.Fprintln(w, "-------------------------------------------")
		return
	}

	fmt.Fprintln(w, "\n===========================================")
	fmt.Fprintf(w, "✅ %d MATCHES FOUND\n", len(matches))
	fmt.Fprintln(w, "===========================================")

	for i, sm := range matches {
		data := newNotificationData(sm)

		fmt.Fprintf(w, "\n--- MATCH #%d ---\n", i+1)
		fmt.Fprintf(w, "Code:     %s\n", sm.Code)
		fmt.Fprintf(w, "Company:  %s\n", sm.CompanyName)
		fmt.Fprintf(w, "Title:    %s\n", sm.Title)
		fmt.Fprintf(w, "Time:     %s %s\n", sm.Date, sm.Time)
		fmt.Fprintf(w, "URL:      %s\n", sm.PDF())
		fmt.Fprintf(w, "Keywords: %s\n", strings.Join(sm.KeywordsFound, ", "))
		if data.Summary != "" {
			fmt.Fprintf(w, "Summary (%s):\n%s\n", data.Method, indent(data.Summary))
		}
	}

	fmt.Fprintln(w, "\n===========================================")
	fmt.Fprintf(w, "Search complete. History saved to %s.\n", historyFilePath)
	fmt.Fprintln(w, "===========================================")
}

// EmailMatches renders and sends one email per match. Send failures are logged and
// counted; the first error is returned.
func EmailMatches(matches []types.SummarizedMatch, sender *EmailSender, renderer *HTMLEmailRenderer, logger *slog.Logger) error {
	var firstErr error
	failed := 0

	for _, sm := range matches {
		msg, err := renderer.Render(newNotificationData(sm))
		if err == nil {
			err = sender.Send(msg)
		}
		if err != nil {
			failed++
			logger.Error("failed to email match", "code", sm.Code, "title", sm.Title, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr != nil {
		return fmt.Errorf("%d of %d emails failed: %w", failed, len(matches), firstErr)
	}
	return nil
}

func indent(s string) string {
	return "\t" + strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n\t")
}
