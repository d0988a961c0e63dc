package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ap-script-web/internal/domain"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-notifier/pkg/factory"
	"github.com/shouni/go-notifier/pkg/slack"
)

// --- インターフェース定義 ---

type SlackNotifier interface {
	Notify(ctx context.Context, publicURL string, req domain.NotificationRequest) error
	NotifyError(ctx context.Context, errDetail error, req domain.NotificationRequest) error
}

// --- 具象アダプター ---

type SlackAdapter struct {
	httpClient  httpkit.ClientInterface
	webhookURL  string
	slackClient *slack.Client
}

// NewSlackAdapter は Webhook URL が空の場合、送信をすべてスキップするアダプターを返します。
func NewSlackAdapter(httpClient httpkit.ClientInterface, webhookURL string) (*SlackAdapter, error) {
	if webhookURL == "" {
		return &SlackAdapter{webhookURL: webhookURL}, nil
	}
	client, err := factory.GetSlackClient(httpClient)
	if err != nil {
		return nil, fmt.Errorf("Slackクライアントの初期化に失敗しました: %w", err)
	}

	return &SlackAdapter{
		httpClient:  httpClient,
		webhookURL:  webhookURL,
		slackClient: client,
	}, nil
}

// Notify は脚色の完了を通知します。
func (a *SlackAdapter) Notify(ctx context.Context, publicURL string, req domain.NotificationRequest) error {
	if a.slackClient == nil {
		slog.Info("Slackクライアントが初期化されていないため、通知をスキップします。", "source_url", req.SourceURL)
		return nil
	}

	title := fmt.Sprintf("🎬 %s の脚色が完了しました", req.Genre)
	content := a.buildSlackContent(publicURL, req)

	if err := a.slackClient.SendTextWithHeader(ctx, title, content); err != nil {
		return fmt.Errorf("Slackへの投稿に失敗しました: %w", err)
	}

	slog.Info("Slack に完了通知を送信しました。", "source_url", req.SourceURL, "genre", req.Genre)
	return nil
}

// NotifyError はエラー詳細と実行メタデータを含むエラー通知を送信します。
func (a *SlackAdapter) NotifyError(ctx context.Context, errDetail error, req domain.NotificationRequest) error {
	if a.slackClient == nil {
		slog.Info("Slackクライアントが初期化されていないため、エラー通知をスキップします。", "error", errDetail)
		return nil
	}

	title := "❌ 処理中にエラーが発生しました"

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*実行アクション:* `%s`\n", req.ExecutionMode))
	if req.Genre != "" {
		sb.WriteString(fmt.Sprintf("*ジャンル:* `%s`\n", req.Genre))
	}
	sb.WriteString(fmt.Sprintf("*ソース:* %s\n\n", req.SourceURL))

	sb.WriteString("*エラー内容:*\n")
	sb.WriteString(fmt.Sprintf("```\n%v\n```\n", errDetail))

	if req.OutputCategory != "" && req.OutputCategory != domain.CategoryNotAvailable {
		sb.WriteString(fmt.Sprintf("\n📍 *カテゴリ:* `%s`", req.OutputCategory))
	}

	if err := a.slackClient.SendTextWithHeader(ctx, title, sb.String()); err != nil {
		return fmt.Errorf("Slackへのエラー通知に失敗しました: %w", err)
	}

	slog.Info("Slack にエラー通知を送信しました。", "error", errDetail)
	return nil
}

// buildSlackContent は完了通知の本文を組み立てます。
func (a *SlackAdapter) buildSlackContent(publicURL string, req domain.NotificationRequest) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**ジャンル:** `%s`\n", req.Genre))
	sb.WriteString(fmt.Sprintf("**実行アクション:** `%s`\n", req.ExecutionMode))
	sb.WriteString(fmt.Sprintf("**ソース:** %s\n\n", req.SourceURL))

	if req.Headline != "" {
		sb.WriteString(fmt.Sprintf("> %s\n\n", req.Headline))
	}

	if publicURL != "" && publicURL != domain.CategoryNotAvailable {
		sb.WriteString(fmt.Sprintf("🌐 **サービス:** <%s|ブラウザで開く>\n", publicURL))
	}

	return sb.String()
}
