package tdnet

import (
	"fmt"
	"strings"
)

const testDate = "20250611"

func listingRow(tm, code, company, title, href, exchange string) string {
	titleCell := title
	if href != "" {
		titleCell = fmt.Sprintf(`<a href="%s">%s</a>`, href, title)
	}
	return fmt.Sprintf(
		"<tr><td> %s </td><td>%s</td><td>%s</td><td>%s</td><td></td><td></td><td>%s</td></tr>",
		tm, code, company, titleCell, exchange)
}

func listingPage(rows ...string) string {
	return `<html><body>
<table id="main-list-table">
<tbody>
<tr><th>時刻</th><th>コード</th><th>会社名</th><th>表題</th><th>XBRL</th><th>上場取引所</th><th>更新履歴</th></tr>
` + strings.Join(rows, "\n") + `
</tbody>
</table>
</body></html>`
}
