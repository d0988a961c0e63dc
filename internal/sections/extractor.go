// Package sections は生成テキストを見出しで4つのセクションに分割します。
package sections

import (
	"regexp"
	"sort"
	"strings"

	"ap-script-web/internal/domain"
)

// Mode はセクション終端の決め方です。
type Mode int

const (
	// NearestHeading は、後続する4種の見出しのうち最も近いものの直前でセクションを閉じます。
	// 見出しの順序が入れ替わっても、あるセクションが別の見出しを含むことはありません。
	NearestHeading Mode = iota
	// Canonical は、正規順で次に来るべき見出しの直前でセクションを閉じます。
	// 見つからなければ文書末尾までを取ります。
	Canonical
)

type heading struct {
	key     domain.SectionKey
	title   string
	pattern *regexp.Regexp
}

// headings は正規順 (SYNOPSIS → COMIC PANEL STORYBOARD → SHORT FILM SCRIPT → PRODUCTION NOTES) です。
var headings = []heading{
	newHeading(domain.SectionSynopsis, "SYNOPSIS"),
	newHeading(domain.SectionStoryboard, "COMIC PANEL STORYBOARD"),
	newHeading(domain.SectionScript, "SHORT FILM SCRIPT"),
	newHeading(domain.SectionNotes, "PRODUCTION NOTES"),
}

// newHeading は「行頭の ## + 見出し語」にマッチし、行末までを見出し行として消費するパターンを作ります。
// ### 以下の小見出しはマッチしません。
func newHeading(key domain.SectionKey, title string) heading {
	words := strings.Fields(title)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	expr := `(?im)^[ \t]*##[ \t]*` + strings.Join(words, `[ \t]+`) + `\b[^\n]*`
	return heading{key: key, title: title, pattern: regexp.MustCompile(expr)}
}

// span は見出しの最初の出現位置です。
type span struct {
	found     bool
	start     int // 見出し行の先頭
	bodyStart int // 見出し行の末尾 (本文の開始位置)
}

// Title はセクションキーに対応する見出し語を返します。
func Title(key domain.SectionKey) string {
	for _, h := range headings {
		if h.key == key {
			return h.title
		}
	}
	return ""
}

// Extract は既定の NearestHeading モードで文書を分割します。
func Extract(document string) domain.ParsedSections {
	return ExtractWithMode(document, NearestHeading)
}

// ExtractWithMode は文書を4セクションに分割します。
// 見出しが無いセクションは空文字になり、エラーは返しません。同じ見出しが複数ある場合は最初の出現を採用します。
func ExtractWithMode(document string, mode Mode) domain.ParsedSections {
	var out domain.ParsedSections
	if document == "" {
		return out
	}

	spans := locate(document)
	var starts []int
	if mode == NearestHeading {
		starts = markerStarts(document)
	}

	for i, s := range spans {
		if !s.found {
			continue
		}
		var end int
		switch mode {
		case Canonical:
			end = canonicalEnd(document, i, s.bodyStart)
		default:
			end = nearestEnd(starts, s.bodyStart, len(document))
		}
		out.Set(headings[i].key, strings.TrimSpace(document[s.bodyStart:end]))
	}
	return out
}

// locate は各見出しの最初の出現位置を正規順で返します。
func locate(document string) []span {
	spans := make([]span, len(headings))
	for i, h := range headings {
		if loc := h.pattern.FindStringIndex(document); loc != nil {
			spans[i] = span{found: true, start: loc[0], bodyStart: loc[1]}
		}
	}
	return spans
}

// markerStarts は4種の見出しすべての出現位置 (重複含む) を昇順で返します。
func markerStarts(document string) []int {
	var starts []int
	for _, h := range headings {
		for _, loc := range h.pattern.FindAllStringIndex(document, -1) {
			starts = append(starts, loc[0])
		}
	}
	sort.Ints(starts)
	return starts
}

func nearestEnd(starts []int, from, docLen int) int {
	i := sort.SearchInts(starts, from)
	if i < len(starts) {
		return starts[i]
	}
	return docLen
}

// canonicalEnd は正規順で後続の見出しのうち、本文以降に最初に現れるものの位置を返します。
func canonicalEnd(document string, idx, from int) int {
	for j := idx + 1; j < len(headings); j++ {
		if loc := headings[j].pattern.FindStringIndex(document[from:]); loc != nil {
			return from + loc[0]
		}
	}
	return len(document)
}
