package types

// DisclosureRecord is one row of a TDnet daily disclosure listing.
type DisclosureRecord struct {
	Time          string  `json:"time"`
	Code          string  `json:"code"`
	CompanyName   string  `json:"company_name"`
	Title         string  `json:"title"`
	PDFURL        *string `json:"pdf_url"`
	StockExchange string  `json:"stock_exchange"`
}

// PDF returns the record's PDF URL, or "" when the row had no link.
func (r DisclosureRecord) PDF() string {
	if r.PDFURL == nil {
		return ""
	}
	return *r.PDFURL
}

// Method records which summarizer produced a SummaryResult.
type Method string

const (
	MethodAI       Method = "ai"
	MethodFallback Method = "fallback"
)

type SummaryRequest struct {
	PDFURL string `json:"pdfUrl"`
	Title  string `json:"title"`
}

type SummaryResult struct {
	Success    bool   `json:"success"`
	Summary    string `json:"summary"`
	TextLength *int   `json:"textLength,omitempty"`
	Method     Method `json:"method,omitempty"`
}

// Match is a disclosure whose title hit one or more digest keywords.
type Match struct {
	DisclosureRecord
	Date          string
	KeywordsFound []string
}

// SummarizedMatch pairs a digest match with its generated summary. Result is nil when
// summarization failed.
type SummarizedMatch struct {
	Match
	Result *SummaryResult
}
