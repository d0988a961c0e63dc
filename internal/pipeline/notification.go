package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"ap-script-web/internal/domain"
	"ap-script-web/internal/sections"
)

const (
	modeExtract  = "extract"
	modeGenerate = "generate"

	adaptationCategory  = "adaptation"
	errorReportCategory = "error-report"

	headlineMaxRunes = 140
)

// notifySuccess は生成完了を通知します。通知の失敗はコールの成否に影響させません。
func (p *AdaptationPipeline) notifySuccess(ctx context.Context, req domain.AdaptationRequest, doc domain.GeneratedDocument) {
	nreq := domain.NotificationRequest{
		SourceURL:      req.SourceURL,
		Genre:          req.Genre,
		OutputCategory: adaptationCategory,
		Headline:       headline(doc.RawText),
		ExecutionMode:  modeGenerate,
	}

	publicURL := p.serviceURL
	if publicURL == "" {
		publicURL = domain.CategoryNotAvailable
	}
	if err := p.notifier.Notify(ctx, publicURL, nreq); err != nil {
		slog.ErrorContext(ctx, "Notification failed", "error", err)
	}
}

// notifyError は失敗したコールを通知します。
func (p *AdaptationPipeline) notifyError(ctx context.Context, mode, sourceURL string, genre domain.Genre, opErr error) {
	nreq := domain.NotificationRequest{
		SourceURL:      sourceURL,
		Genre:          genre,
		OutputCategory: errorReportCategory,
		ExecutionMode:  mode,
	}
	if err := p.notifier.NotifyError(ctx, opErr, nreq); err != nil {
		slog.ErrorContext(ctx, "Failed to send error notification", "error", err)
	}
}

// headline はあらすじの最初の行を通知用に切り詰めます。
func headline(raw string) string {
	synopsis := sections.Extract(raw).Synopsis
	line, _, _ := strings.Cut(synopsis, "\n")
	line = strings.TrimSpace(line)

	runes := []rune(line)
	if len(runes) > headlineMaxRunes {
		return string(runes[:headlineMaxRunes]) + "…"
	}
	return line
}
