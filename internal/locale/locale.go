// Package locale formats numbers and timestamps the way ja-JP readers expect them.
package locale

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Japanese)

// Tokyo is the portal's time zone. It falls back to a fixed +09:00 zone when the tz
// database is unavailable.
var Tokyo = loadTokyo()

func loadTokyo() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

// Count renders n with thousands separators, e.g. 12345 -> "12,345".
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// Timestamp renders t like "2025/6/11 14:03:05" in Tokyo time.
func Timestamp(t time.Time) string {
	return t.In(Tokyo).Format("2006/1/2 15:04:05")
}
