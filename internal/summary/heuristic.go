package summary

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shanehull/tdnetviewer/internal/locale"
	"github.com/shanehull/tdnetviewer/internal/prompt"
)

const (
	// DefaultMaxImportant is the number of keyword lines listed under "主な内容".
	DefaultMaxImportant = 5

	minLineLength      = 10
	scanLines          = 50
	importantMinLength = 20
	importantMaxLength = 200
	overviewMinLength  = 30
	overviewMaxLength  = 300
	overviewLines      = 3
)

var (
	lineBreakRe = regexp.MustCompile(`\r\n?`)
	// Zs covers the ideographic space and NBSP that pdftotext emits for Japanese layouts.
	hSpaceRe = regexp.MustCompile(`[\p{Zs}\t\f\v]+`)
)

// Heuristic is the keyword-driven summarizer used when AI summaries are unavailable.
// Its output depends only on the input, its fields and the Now clock.
type Heuristic struct {
	Keywords     []string
	MaxImportant int
	Now          func() time.Time
}

// NewHeuristic returns a summarizer over keywords, substituting the default keyword list
// when none are given and DefaultMaxImportant when maxImportant is not positive.
func NewHeuristic(keywords []string, maxImportant int) Heuristic {
	if len(keywords) == 0 {
		keywords = prompt.DefaultKeywords
	}
	if maxImportant <= 0 {
		maxImportant = DefaultMaxImportant
	}
	return Heuristic{Keywords: keywords, MaxImportant: maxImportant, Now: time.Now}
}

func (h Heuristic) Summarize(text, title string) string {
	clean := normalize(text)
	lines := meaningfulLines(clean)

	var sb strings.Builder
	fmt.Fprintf(&sb, "【%s】\n\n", title)

	if important := h.importantLines(lines); len(important) > 0 {
		sb.WriteString("■ 主な内容:\n")
		writeNumbered(&sb, important)
	} else if overview := overviewOf(lines); len(overview) > 0 {
		sb.WriteString("■ 文書の概要:\n")
		writeNumbered(&sb, overview)
	} else {
		sb.WriteString("■ この文書の詳細な要約を生成できませんでした。\n")
		sb.WriteString("PDFの内容が複雑であるか、構造化されていない可能性があります。\n")
		sb.WriteString("直接PDFをご確認ください。\n")
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	sb.WriteString("\n■ 文書情報:\n")
	fmt.Fprintf(&sb, "- 文字数: %s文字\n", locale.Count(utf8.RuneCountInString(clean)))
	fmt.Fprintf(&sb, "- 抽出日時: %s\n", locale.Timestamp(now()))

	return sb.String()
}

func (h Heuristic) importantLines(lines []string) []string {
	keywords := h.Keywords
	if len(keywords) == 0 {
		keywords = prompt.DefaultKeywords
	}
	limit := h.MaxImportant
	if limit <= 0 {
		limit = DefaultMaxImportant
	}

	scan := lines
	if len(scan) > scanLines {
		scan = scan[:scanLines]
	}

	var important []string
	for _, line := range scan {
		n := utf8.RuneCountInString(line)
		if n <= importantMinLength || n >= importantMaxLength || !containsAny(line, keywords) {
			continue
		}
		important = append(important, line)
		if len(important) == limit {
			break
		}
	}
	return important
}

func overviewOf(lines []string) []string {
	var overview []string
	for _, line := range lines {
		n := utf8.RuneCountInString(line)
		if n > overviewMinLength && n < overviewMaxLength {
			overview = append(overview, line)
			if len(overview) == overviewLines {
				break
			}
		}
	}
	return overview
}

// normalize unifies line breaks, collapses horizontal whitespace and drops blank lines.
func normalize(text string) string {
	text = lineBreakRe.ReplaceAllString(text, "\n")
	text = hSpaceRe.ReplaceAllString(text, " ")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func meaningfulLines(clean string) []string {
	var lines []string
	for _, line := range strings.Split(clean, "\n") {
		if utf8.RuneCountInString(line) > minLineLength {
			lines = append(lines, line)
		}
	}
	return lines
}

func containsAny(line string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

func writeNumbered(sb *strings.Builder, lines []string) {
	for i, line := range lines {
		fmt.Fprintf(sb, "%d. %s\n", i+1, line)
	}
}
