package domain

// AdaptationRequest は生成コールに渡す入力一式です。
// 生成コール発行後は値として扱い、変更しません。
type AdaptationRequest struct {
	SourceURL        string `json:"source_url"`
	Genre            Genre  `json:"genre"`
	ExtractedSummary string `json:"extracted_summary,omitempty"`
}

// GeneratedDocument は生成コールが返したテキスト全体です。
type GeneratedDocument struct {
	RawText string `json:"raw_text"`
}

// SectionKey はビューアーのタブ識別子です。
type SectionKey string

const (
	SectionSynopsis   SectionKey = "synopsis"
	SectionStoryboard SectionKey = "storyboard"
	SectionScript     SectionKey = "script"
	SectionNotes      SectionKey = "notes"
	// SectionFull は解析前の全文を表示するタブです。ParsedSections には含まれません。
	SectionFull SectionKey = "full"
)

// SectionKeys は見出しの正規順に並んだ4セクションのキーです。
var SectionKeys = []SectionKey{SectionSynopsis, SectionStoryboard, SectionScript, SectionNotes}

// ParseSectionKey はタブ指定を解釈します。不明な値は synopsis として扱います。
func ParseSectionKey(s string) SectionKey {
	switch k := SectionKey(s); k {
	case SectionSynopsis, SectionStoryboard, SectionScript, SectionNotes, SectionFull:
		return k
	default:
		return SectionSynopsis
	}
}

// ParsedSections は GeneratedDocument から導出される4つのセクションです。
// 永続化せず、必要になるたびに RawText から再計算します。
type ParsedSections struct {
	Synopsis   string `json:"synopsis"`
	Storyboard string `json:"storyboard"`
	Script     string `json:"script"`
	Notes      string `json:"notes"`
}

// Get はキーに対応するセクション本文を返します。
func (p ParsedSections) Get(key SectionKey) string {
	switch key {
	case SectionSynopsis:
		return p.Synopsis
	case SectionStoryboard:
		return p.Storyboard
	case SectionScript:
		return p.Script
	case SectionNotes:
		return p.Notes
	}
	return ""
}

// Set はキーに対応するセクション本文を設定します。未知のキーは無視します。
func (p *ParsedSections) Set(key SectionKey, body string) {
	switch key {
	case SectionSynopsis:
		p.Synopsis = body
	case SectionStoryboard:
		p.Storyboard = body
	case SectionScript:
		p.Script = body
	case SectionNotes:
		p.Notes = body
	}
}
