package builder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ap-script-web/internal/adapters"
	"ap-script-web/internal/app"
	"ap-script-web/internal/config"
	"ap-script-web/internal/prompts"

	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// BuildContainer は外部サービスとの接続を確立し、依存関係を組み立てます。
func BuildContainer(ctx context.Context, cfg *config.Config) (*app.Container, error) {
	// 1. 基盤クライアントの初期化
	httpClient := httpkit.New(remoteTimeout(cfg))

	// 2. プロンプト定義の読み込み
	promptBuilder, err := prompts.NewBuilder()
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt catalog: %w", err)
	}

	// 3. アダプターの初期化
	slack, err := adapters.NewSlackAdapter(httpClient, cfg.SlackWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Slack adapter: %w", err)
	}

	// 4. パイプラインの構築
	p, err := buildPipeline(cfg, promptBuilder, slack)
	if err != nil {
		return nil, err
	}

	// 5. セッションストア
	sessions := buildSessionStore(cfg, httpClient)

	slog.InfoContext(ctx, "Application container built",
		"model", cfg.GeminiModel,
		"source_prefetch", cfg.SourcePrefetch,
		"slack_enabled", cfg.SlackWebhookURL != "",
	)

	return &app.Container{
		Config:   cfg,
		Sessions: sessions,
		Pipeline: p,
	}, nil
}

// remoteTimeout は外部呼び出しに使うタイムアウトを返します。未設定の Config では既定値を使います。
func remoteTimeout(cfg *config.Config) time.Duration {
	if cfg.HTTPTimeout <= 0 {
		return config.DefaultHTTPTimeout
	}
	return cfg.HTTPTimeout
}
