package tdnet

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/shanehull/tdnetviewer/internal/types"

	"golang.org/x/net/html"
)

const (
	listTableSelector = "table#main-list-table"
	listColumnCount   = 7

	headerTime = "時刻"
	headerCode = "コード"

	maxTimeLength = 10
)

// Column positions within a listing row. Columns 4 and 5 (XBRL, place of listing
// history) are not extracted.
const (
	colTime = iota
	colCode
	colCompany
	colTitle
	_
	_
	colExchange
)

// BannerText is the caption TDnet renders above the listing for date, e.g.
// "2025年06月11日に開示された情報". Rows carrying it are not disclosures.
func BannerText(date string) string {
	if len(date) != 8 {
		return ""
	}
	return fmt.Sprintf("%s年%s月%s日に開示された情報", date[:4], date[4:6], date[6:])
}

// ParseRecords parses a listing page and returns its disclosure rows.
func ParseRecords(r io.Reader, date, baseURL string) ([]types.DisclosureRecord, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing HTML: %w", err)
	}
	return ExtractRecords(doc, date, baseURL), nil
}

// ExtractRecords walks the main listing table of doc. A missing table yields no records.
func ExtractRecords(doc *html.Node, date, baseURL string) []types.DisclosureRecord {
	table := goquery.NewDocumentFromNode(doc).Find(listTableSelector).First()
	if table.Length() == 0 {
		return nil
	}

	// html.Parse always synthesizes a tbody; trees built by other means may lack one.
	rows := table.Find("tbody").First().Find("tr")
	if table.Find("tbody").Length() == 0 {
		rows = table.Find("tr")
	}

	banner := BannerText(date)
	var records []types.DisclosureRecord

	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() != listColumnCount {
			return
		}

		rec := types.DisclosureRecord{
			Time:          strippedText(cells.Eq(colTime)),
			Code:          strippedText(cells.Eq(colCode)),
			CompanyName:   strippedText(cells.Eq(colCompany)),
			StockExchange: strippedText(cells.Eq(colExchange)),
		}
		rec.Title, rec.PDFURL = titleAndLink(cells.Eq(colTitle), baseURL)

		if !isDisclosureRow(rec, banner) {
			return
		}
		records = append(records, rec)
	})

	return records
}

func isDisclosureRow(rec types.DisclosureRecord, banner string) bool {
	return rec.Time != "" &&
		rec.Time != headerTime &&
		rec.Code != headerCode &&
		rec.Time != banner &&
		utf8.RuneCountInString(rec.Time) <= maxTimeLength
}

func titleAndLink(cell *goquery.Selection, baseURL string) (string, *string) {
	link := cell.Find("a").First()
	if link.Length() == 0 {
		return strippedText(cell), nil
	}

	title := strippedText(link)
	href, ok := link.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return title, nil
	}

	if !strings.HasPrefix(href, "http") {
		href = baseURL + "/inbs/" + href
	}
	return title, &href
}

// strippedText joins every text fragment under sel with its surrounding whitespace removed.
func strippedText(sel *goquery.Selection) string {
	var sb strings.Builder
	var walk func(*html.Node)

	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}
	return sb.String()
}
