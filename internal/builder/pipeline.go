package builder

import (
	"fmt"
	"net/http"

	"ap-script-web/internal/adapters"
	"ap-script-web/internal/config"
	"ap-script-web/internal/pipeline"
	"ap-script-web/internal/prompts"
)

// buildPipeline は Gemini アダプターと任意の先読みリーダーを組み合わせてパイプラインを初期化します。
func buildPipeline(cfg *config.Config, pb *prompts.Builder, slack adapters.SlackNotifier) (*pipeline.AdaptationPipeline, error) {
	gemini, err := adapters.NewGeminiAdapter(adapters.GeminiConfig{
		Model:      cfg.GeminiModel,
		BaseURL:    cfg.GeminiBaseURL,
		HTTPClient: &http.Client{Timeout: remoteTimeout(cfg)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini adapter: %w", err)
	}

	deps := pipeline.Dependencies{
		Generator:  gemini,
		Prompts:    pb,
		Notifier:   slack,
		ServiceURL: cfg.ServiceURL,
	}
	if cfg.SourcePrefetch {
		deps.Source = adapters.NewSourceReader(config.DefaultSourceTimeout)
	}

	p, err := pipeline.NewAdaptationPipeline(deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create adaptation pipeline: %w", err)
	}
	return p, nil
}
