package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"ap-script-web/internal/domain"
	"ap-script-web/internal/prompts"

	"google.golang.org/genai"
)

// genericRemoteMessage はリモートのエラー本文から理由を取り出せなかったときの表示文言です。
const genericRemoteMessage = "API request failed"

// GeminiConfig は GeminiAdapter の初期化設定です。
type GeminiConfig struct {
	Model      string
	BaseURL    string // 空の場合は SDK の既定エンドポイント
	HTTPClient *http.Client
}

// GeminiAdapter は利用者ごとの API キーで Gemini の generateContent を呼び出します。
// キーはリクエストごとに異なるため、クライアントは呼び出しのたびに生成します。
type GeminiAdapter struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiAdapter は GeminiAdapter を生成します。
func NewGeminiAdapter(cfg GeminiConfig) (*GeminiAdapter, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini model is not set")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GeminiAdapter{
		model:      cfg.Model,
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
	}, nil
}

// Generate はプロンプトを送信し、応答のテキストパートを改行で連結して返します。
// 失敗は domain.CallError として返し、Kind で通信・リモート・応答形式のいずれかを区別します。
func (a *GeminiAdapter) Generate(ctx context.Context, apiKey string, p prompts.Prompt) (string, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: a.httpClient,
	}
	if a.baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: a.baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return "", &domain.CallError{Kind: domain.ErrTransport, Message: "Failed to initialize the API client", Err: err}
	}

	resp, err := client.Models.GenerateContent(ctx, a.model, genai.Text(p.User), a.buildConfig(p))
	if err != nil {
		return "", classifyError(err)
	}

	text, err := collectText(resp)
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Gemini call completed", "model", a.model, "chars", len(text))
	return text, nil
}

func (a *GeminiAdapter) buildConfig(p prompts.Prompt) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: p.MaxTokens,
	}
	if p.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}
	if p.WebRetrieval {
		cfg.Tools = []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
			{URLContext: &genai.URLContext{}},
		}
	}
	return cfg
}

// classifyError は SDK のエラーをリモート由来か通信由来かに振り分けます。
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		msg := strings.TrimSpace(apiErr.Message)
		if msg == "" {
			msg = genericRemoteMessage
		}
		return &domain.CallError{Kind: domain.ErrRemote, Message: msg, Err: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &domain.CallError{Kind: domain.ErrTransport, Message: "The request was cancelled or timed out", Err: err}
	}
	return &domain.CallError{Kind: domain.ErrTransport, Message: "Could not reach the API: " + err.Error(), Err: err}
}

// collectText は先頭候補のテキストパートを取り出します。思考パートは除外します。
func collectText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		msg := "The API returned no candidates"
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			msg = fmt.Sprintf("The request was blocked by the API (%s)", resp.PromptFeedback.BlockReason)
		}
		return "", &domain.CallError{Kind: domain.ErrMalformedResponse, Message: msg}
	}

	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return "", &domain.CallError{Kind: domain.ErrMalformedResponse, Message: "The API response contained no content"}
	}

	var parts []string
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		parts = append(parts, part.Text)
	}
	if len(parts) == 0 {
		return "", &domain.CallError{Kind: domain.ErrMalformedResponse, Message: "The API response contained no text"}
	}
	return strings.Join(parts, "\n"), nil
}
