package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"ap-script-web/internal/domain"
	"ap-script-web/internal/session"
)

// render は HTML テンプレートをレンダリングし、レスポンスを書き込みます。
func (h *Handler) render(w http.ResponseWriter, status int, pageName string, title string, data any) {
	tmpl, ok := h.templateCache[pageName]
	if !ok {
		slog.Error("キャッシュ内にテンプレートが見つかりません", "page", pageName)
		http.Error(w, "Internal error: template is not defined", http.StatusInternalServerError)
		return
	}

	renderData := struct {
		Title string
		Data  any
	}{
		Title: title + titleSuffix,
		Data:  data,
	}

	var buf bytes.Buffer
	// レイアウトファイルをベースに実行します
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", renderData); err != nil {
		slog.Error("テンプレートのレンダリングに失敗しました", "page", pageName, "error", err)
		http.Error(w, "Internal error while rendering the page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("レスポンスの書き込みに失敗しました", "error", err)
	}
}

// loadSession はセッションを読み込みます。失敗した場合はエラーレスポンスを書き込み nil を返します。
func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) *session.State {
	st, err := h.sessions.Load(w, r)
	if err != nil {
		slog.ErrorContext(r.Context(), "セッションの読み込みに失敗しました", "error", err)
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return nil
	}
	return st
}

// statusFor はパイプラインのエラーを HTTP ステータスに対応付けます。
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotExtracted):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
