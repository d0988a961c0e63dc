package handlers

import (
	"log/slog"
	"net/http"

	"ap-script-web/internal/domain"
	"ap-script-web/internal/pipeline"
)

// Extract は URL の内容を要約する抽出フォームの送信を処理します。
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.WarnContext(r.Context(), "フォームの解析に失敗しました", "error", err)
		http.Error(w, "Failed to parse the form", http.StatusBadRequest)
		return
	}
	st := h.loadSession(w, r)
	if st == nil {
		return
	}

	in := pipeline.ExtractInput{
		APIKey:    r.PostFormValue("api_key"),
		SourceURL: r.PostFormValue("source_url"),
	}
	if err := h.orchestrator.Extract(r.Context(), st, in); err != nil {
		msg := domain.UserMessage(err, pipeline.ExtractFailedMessage)
		h.renderIndex(w, statusFor(err), st.Snapshot(), domain.SectionSynopsis, formEcho{SourceURL: in.SourceURL}, msg)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Generate は選択したジャンルで脚本一式を生成するフォームの送信を処理します。
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.WarnContext(r.Context(), "フォームの解析に失敗しました", "error", err)
		http.Error(w, "Failed to parse the form", http.StatusBadRequest)
		return
	}
	st := h.loadSession(w, r)
	if st == nil {
		return
	}

	in := pipeline.GenerateInput{Genre: r.PostFormValue("genre")}
	if err := h.orchestrator.Generate(r.Context(), st, in); err != nil {
		msg := domain.UserMessage(err, pipeline.GenerateFailedMessage)
		h.renderIndex(w, statusFor(err), st.Snapshot(), domain.SectionSynopsis, formEcho{Genre: in.Genre}, msg)
		return
	}

	http.Redirect(w, r, "/?tab="+string(domain.SectionSynopsis), http.StatusSeeOther)
}

// Reset は API キー以外の入力と結果をすべて破棄します。
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	st := h.loadSession(w, r)
	if st == nil {
		return
	}
	st.Reset()
	slog.InfoContext(r.Context(), "Session reset", "session_id", st.ID())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
