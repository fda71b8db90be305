package summary

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

// 2025/6/11 14:03:05 in Tokyo.
var fixedNow = func() time.Time { return time.Date(2025, 6, 11, 5, 3, 5, 0, time.UTC) }

const (
	salesLine  = "売上高は前年同期比で増加し、営業利益も過去最高を更新しました。"
	noticeLine = "当社は本日開催の取締役会において、次のとおり決議いたしましたのでお知らせいたします。"
)

func testHeuristic(maxImportant int) Heuristic {
	h := NewHeuristic(nil, maxImportant)
	h.Now = fixedNow
	return h
}

func TestHeuristic_ImportantLines(t *testing.T) {
	text := strings.Join([]string{"短い行", noticeLine, salesLine, "業績"}, "\n")

	out := testHeuristic(5).Summarize(text, "決算短信")

	assert.Equal(t, true, strings.HasPrefix(out, "【決算短信】\n\n■ 主な内容:\n1. "+salesLine+"\n"))
	assert.Equal(t, false, strings.Contains(out, "2. "))
	assert.Equal(t, true, strings.Contains(out, "- 抽出日時: 2025/6/11 14:03:05\n"))
}

func TestHeuristic_LimitsImportantLines(t *testing.T) {
	var lines []string
	for i := 1; i <= 8; i++ {
		lines = append(lines, fmt.Sprintf("第%d四半期の売上高は前年同期比で増加しました。", i))
	}

	out := testHeuristic(3).Summarize(strings.Join(lines, "\n"), "")
	assert.Equal(t, true, strings.Contains(out, "3. 第3四半期"))
	assert.Equal(t, false, strings.Contains(out, "4. "))

	out = testHeuristic(0).Summarize(strings.Join(lines, "\n"), "")
	assert.Equal(t, true, strings.Contains(out, "5. 第5四半期"))
	assert.Equal(t, false, strings.Contains(out, "6. "))
}

func TestHeuristic_OnlyFirstLinesAreScanned(t *testing.T) {
	var lines []string
	for i := 0; i < 60; i++ {
		lines = append(lines, noticeLine)
	}
	lines = append(lines, salesLine)

	out := testHeuristic(5).Summarize(strings.Join(lines, "\n"), "t")
	assert.Equal(t, true, strings.Contains(out, "■ 文書の概要:\n"))
	assert.Equal(t, false, strings.Contains(out, salesLine))
}

func TestHeuristic_Overview(t *testing.T) {
	text := strings.Repeat(noticeLine+"\n", 5)

	out := testHeuristic(5).Summarize(text, "取締役会決議")
	assert.Equal(t, true, strings.Contains(out, "■ 文書の概要:\n1. "+noticeLine+"\n2. "+noticeLine+"\n3. "+noticeLine+"\n\n■ 文書情報:"))
}

func TestHeuristic_NothingUsable(t *testing.T) {
	out := testHeuristic(5).Summarize("  短い  \r\n\r\n", "表題")

	expected := "【表題】\n\n" +
		"■ この文書の詳細な要約を生成できませんでした。\n" +
		"PDFの内容が複雑であるか、構造化されていない可能性があります。\n" +
		"直接PDFをご確認ください。\n" +
		"\n■ 文書情報:\n" +
		"- 文字数: 2文字\n" +
		"- 抽出日時: 2025/6/11 14:03:05\n"
	assert.Equal(t, expected, out)
}

func TestHeuristic_CustomKeywords(t *testing.T) {
	h := NewHeuristic([]string{"配当"}, 5)
	h.Now = fixedNow
	line := "期末配当を1株当たり50円とすることを決議いたしました。"

	out := h.Summarize(salesLine+"\n"+line, "")
	assert.Equal(t, true, strings.Contains(out, "1. "+line+"\n"))
	assert.Equal(t, false, strings.Contains(out, salesLine))
}

func TestHeuristic_Deterministic(t *testing.T) {
	text := noticeLine + "\n" + salesLine
	h := testHeuristic(5)
	assert.Equal(t, h.Summarize(text, "x"), h.Summarize(text, "x"))
}

func TestHeuristic_CountsWithSeparators(t *testing.T) {
	text := strings.Repeat("あ", 12345)
	out := testHeuristic(5).Summarize(text, "")
	assert.Equal(t, true, strings.Contains(out, "- 文字数: 12,345文字\n"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b\nc\nd", normalize(" a \t b\r\n\r\n c\rd  "))
	assert.Equal(t, "売上高 増加", normalize("売上高\u3000\u3000\u3000\u3000増加"))
	assert.Equal(t, "営業利益 前期比", normalize("\u3000営業利益\u00a0\u00a0前期比\u3000"))
	assert.Equal(t, "本文\n終わり", normalize("本文\n"+strings.Repeat("\u3000", 12)+"\n終わり"))
}

func TestHeuristic_IdeographicSpaceLinesAreBlank(t *testing.T) {
	text := "本文\n" + strings.Repeat("\u3000", 40) + "\n終わり"
	assert.Equal(t, 0, len(meaningfulLines(normalize(text))))

	out := testHeuristic(5).Summarize(text, "表題")
	assert.Equal(t, true, strings.Contains(out, "■ この文書の詳細な要約を生成できませんでした。"))
	assert.Equal(t, true, strings.Contains(out, "- 文字数: 6文字\n"))
}
