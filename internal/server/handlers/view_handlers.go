package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"ap-script-web/internal/domain"
	"ap-script-web/internal/sections"
	"ap-script-web/internal/session"
)

const sectionNotFound = "Section not found."

type tabView struct {
	Key    domain.SectionKey
	Label  string
	Active bool
}

var tabLabels = []struct {
	key   domain.SectionKey
	label string
}{
	{domain.SectionSynopsis, "Synopsis"},
	{domain.SectionStoryboard, "Storyboard"},
	{domain.SectionScript, "Script"},
	{domain.SectionNotes, "Notes"},
	{domain.SectionFull, "Full"},
}

// indexViewData はテンプレート「index.html」に渡すためのデータ構造体
type indexViewData struct {
	Genres    []domain.Genre
	Genre     domain.Genre // 選択中のジャンル
	SourceURL string
	HasAPIKey bool
	Error     string

	Summary   string
	Extracted bool
	Busy      bool
	Phase     string

	HasDocument   bool
	Tabs          []tabView
	ActiveTab     domain.SectionKey
	Content       string
	Monospace     bool
	DocumentGenre domain.Genre
}

// formEcho は失敗したフォーム送信の入力値です。再表示のときに入力欄へ戻します。
type formEcho struct {
	SourceURL string
	Genre     string
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	st := h.loadSession(w, r)
	if st == nil {
		return
	}
	tab := domain.ParseSectionKey(r.URL.Query().Get("tab"))
	h.renderIndex(w, http.StatusOK, st.Snapshot(), tab, formEcho{}, "")
}

// Download は生成された全文を Markdown ファイルとして返します。
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	st := h.loadSession(w, r)
	if st == nil {
		return
	}
	snap := st.Snapshot()
	if snap.Document == nil {
		http.Error(w, "No script has been generated yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, downloadFileName(snap.Genre)))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write([]byte(snap.Document.RawText)); err != nil {
		slog.ErrorContext(r.Context(), "レスポンスの書き込みに失敗しました", "error", err)
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) renderIndex(w http.ResponseWriter, status int, snap session.Snapshot, tab domain.SectionKey, form formEcho, errMsg string) {
	data := buildIndexView(snap, tab, form, errMsg)
	h.render(w, status, "index.html", "Interactive Script Generator", data)
}

// buildIndexView は状態のスナップショットから画面表示用のデータを組み立てます。
// エラーメッセージは errMsg が優先され、無ければ直前のコールの失敗を表示します。
func buildIndexView(snap session.Snapshot, tab domain.SectionKey, form formEcho, errMsg string) indexViewData {
	data := indexViewData{
		Genres:    domain.Genres(),
		Genre:     snap.Genre,
		SourceURL: snap.SourceURL,
		HasAPIKey: snap.HasAPIKey,
		Error:     snap.Error,
		Summary:   snap.Summary,
		Extracted: snap.Extracted,
		Busy:      snap.Phase.InFlight(),
		Phase:     snap.Phase.String(),
		ActiveTab: tab,
	}
	if errMsg != "" {
		data.Error = errMsg
	}
	if form.SourceURL != "" {
		data.SourceURL = form.SourceURL
	}
	if g, ok := domain.ParseGenre(form.Genre); ok {
		data.Genre = g
	}

	if snap.Document == nil {
		return data
	}

	data.HasDocument = true
	data.DocumentGenre = snap.Genre
	data.Monospace = tab == domain.SectionScript
	for _, t := range tabLabels {
		data.Tabs = append(data.Tabs, tabView{Key: t.key, Label: t.label, Active: t.key == tab})
	}

	if tab == domain.SectionFull {
		data.Content = snap.Document.RawText
		return data
	}
	data.Content = sections.Extract(snap.Document.RawText).Get(tab)
	if data.Content == "" {
		data.Content = sectionNotFound
	}
	return data
}

func downloadFileName(genre domain.Genre) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, string(genre))
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "adaptation.md"
	}
	return "adaptation-" + slug + ".md"
}
