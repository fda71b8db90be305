package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/shanehull/tdnetviewer/internal/types"
)

func strPtr(s string) *string { return &s }

func testMatch(result *types.SummaryResult) types.SummarizedMatch {
	return types.SummarizedMatch{
		Match: types.Match{
			DisclosureRecord: types.DisclosureRecord{
				Time:          "15:00",
				Code:          "72030",
				CompanyName:   "トヨタ自動車",
				Title:         "剰余金の配当に関するお知らせ",
				PDFURL:        strPtr("https://www.release.tdnet.info/inbs/140120250611500001.pdf"),
				StockExchange: "東",
			},
			Date:          "20250611",
			KeywordsFound: []string{"配当"},
		},
		Result: result,
	}
}

func TestRender(t *testing.T) {
	result := &types.SummaryResult{Success: true, Summary: "■ 概要\n期末配当を**50円**に増配。\n<script>x</script>", Method: types.MethodAI}

	msg, err := NewHTMLEmailRenderer().Render(newNotificationData(testMatch(result)))
	assert.Equal(t, nil, err)
	assert.Equal(t, "TDnet: 72030 トヨタ自動車 - 剰余金の配当に関するお知らせ", msg.Subject)

	assert.Equal(t, true, strings.Contains(msg.HTML, "<strong>50円</strong>"))
	assert.Equal(t, true, strings.Contains(msg.HTML, `href="https://www.release.tdnet.info/inbs/140120250611500001.pdf"`))
	assert.Equal(t, true, strings.Contains(msg.HTML, "AI要約"))
	assert.Equal(t, false, strings.Contains(msg.HTML, "<script>"))

	assert.Equal(t, true, strings.Contains(msg.Text, "Keywords: 配当\n"))
	assert.Equal(t, true, strings.Contains(msg.Text, "AI要約\n"))
}

func TestRender_NoLinkNoSummary(t *testing.T) {
	sm := testMatch(nil)
	sm.PDFURL = nil

	msg, err := NewHTMLEmailRenderer().Render(newNotificationData(sm))
	assert.Equal(t, nil, err)
	assert.Equal(t, false, strings.Contains(msg.HTML, "cta-button\""))
	assert.Equal(t, false, strings.Contains(msg.Text, "-----"))
}

func TestReportMatches(t *testing.T) {
	var buf bytes.Buffer
	result := &types.SummaryResult{Success: true, Summary: "1行目\n2行目", Method: types.MethodFallback}

	ReportMatches(&buf, []types.SummarizedMatch{testMatch(result)}, "/tmp/history.json")

	out := buf.String()
	assert.Equal(t, true, strings.Contains(out, "1 MATCHES FOUND"))
	assert.Equal(t, true, strings.Contains(out, "Code:     72030\n"))
	assert.Equal(t, true, strings.Contains(out, "Summary (簡易要約):\n\t1行目\n\t2行目\n"))
	assert.Equal(t, true, strings.Contains(out, "/tmp/history.json"))
}

func TestReportMatches_None(t *testing.T) {
	var buf bytes.Buffer
	ReportMatches(&buf, nil, "/tmp/history.json")
	assert.Equal(t, true, strings.Contains(buf.String(), "No new matching disclosures found."))
}

func TestNewMessage_FromDefaultsToUser(t *testing.T) {
	s := NewEmailSender(EmailConfig{SMTPUser: "bot@example.com", ToEmail: "me@example.com"}, nil)
	assert.Equal(t, "bot@example.com", s.cfg.FromEmail)

	m := newMessage(s.cfg, &RenderedMessage{Subject: "件名", Text: "本文"})
	assert.Equal(t, []string{"bot@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"me@example.com"}, m.GetHeader("To"))
}

func TestSend_DisabledIsNoop(t *testing.T) {
	s := NewEmailSender(EmailConfig{Enabled: false}, nil)
	assert.Equal(t, nil, s.Send(&RenderedMessage{Subject: "x"}))
}
