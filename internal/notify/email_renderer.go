package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// HTMLEmailRenderer renders notifications as HTML emails with a plain text fallback.
type HTMLEmailRenderer struct {
	tmpl     *template.Template
	markdown goldmark.Markdown
}

// NewHTMLEmailRenderer creates a renderer with the default email template.
func NewHTMLEmailRenderer() *HTMLEmailRenderer {
	t := template.Must(template.New("email").Parse(emailHTMLTemplate))
	md := goldmark.New(goldmark.WithRendererOptions(gmhtml.WithHardWraps()))
	return &HTMLEmailRenderer{tmpl: t, markdown: md}
}

type emailView struct {
	NotificationData
	SummaryHTML template.HTML
}

// Render produces an HTML email with plain text alternative.
func (r *HTMLEmailRenderer) Render(data NotificationData) (*RenderedMessage, error) {
	subject := fmt.Sprintf("TDnet: %s %s - %s", data.Match.Code, data.Match.CompanyName, data.Match.Title)

	summaryHTML, err := r.summaryHTML(data.Summary)
	if err != nil {
		return nil, err
	}

	var htmlBuf bytes.Buffer
	if err := r.tmpl.Execute(&htmlBuf, emailView{NotificationData: data, SummaryHTML: summaryHTML}); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	return &RenderedMessage{
		Subject: subject,
		Text:    renderPlainText(data),
		HTML:    htmlBuf.String(),
	}, nil
}

// summaryHTML converts the summary's markdown to HTML. Raw HTML in the summary is
// dropped by goldmark's default renderer.
func (r *HTMLEmailRenderer) summaryHTML(summary string) (template.HTML, error) {
	if summary == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(summary), &buf); err != nil {
		return "", fmt.Errorf("failed to render summary markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// renderPlainText produces a readable plain text version for email clients that don't support HTML.
func renderPlainText(data NotificationData) string {
	m := data.Match
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s %s - %s\n", m.Code, m.CompanyName, m.Title))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	sb.WriteString(fmt.Sprintf("Date: %s %s\n", m.Date, m.Time))
	sb.WriteString(fmt.Sprintf("Exchange: %s\n", m.StockExchange))
	sb.WriteString(fmt.Sprintf("URL: %s\n", m.PDF()))

	if len(m.KeywordsFound) > 0 {
		sb.WriteString(fmt.Sprintf("Keywords: %s\n", strings.Join(m.KeywordsFound, ", ")))
	}
	sb.WriteString("\n")

	if data.Summary != "" {
		sb.WriteString(data.Method + "\n")
		sb.WriteString(strings.Repeat("-", 20) + "\n")
		sb.WriteString(data.Summary + "\n")
	}

	return sb.String()
}
