package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ap-script-web/internal/adapters"
	"ap-script-web/internal/domain"
	"ap-script-web/internal/prompts"
	"ap-script-web/internal/session"

	"github.com/go-playground/validator/v10"
)

const (
	// ExtractFailedMessage はリモートから理由が得られなかった抽出失敗の表示文言です。
	ExtractFailedMessage = "Failed to extract content"
	// GenerateFailedMessage はリモートから理由が得られなかった生成失敗の表示文言です。
	GenerateFailedMessage = "Failed to generate script"
)

// TextGenerator はプロンプトを1回だけ送信し、応答テキストを返します。
type TextGenerator interface {
	Generate(ctx context.Context, apiKey string, p prompts.Prompt) (string, error)
}

// SourceFetcher は抽出前に元ページの本文を取得します。
type SourceFetcher interface {
	Read(ctx context.Context, rawURL string) (adapters.SourceSnapshot, error)
}

// Dependencies は AdaptationPipeline の構築に必要な依存関係です。
type Dependencies struct {
	Generator TextGenerator
	Prompts   *prompts.Builder
	Notifier  adapters.SlackNotifier
	Source    SourceFetcher // nil の場合は本文の先読みを行わない
	// ServiceURL は通知に載せる画面の URL です。
	ServiceURL string
}

// ExtractInput は抽出アクションのフォーム入力です。
type ExtractInput struct {
	APIKey    string `validate:"required"`
	SourceURL string `validate:"required"`
}

// GenerateInput は生成アクションのフォーム入力です。
type GenerateInput struct {
	Genre string `validate:"required,genre"`
}

// AdaptationPipeline は抽出と生成の2段階コールを、セッション状態の遷移と合わせて実行します。
type AdaptationPipeline struct {
	generator  TextGenerator
	prompts    *prompts.Builder
	notifier   adapters.SlackNotifier
	source     SourceFetcher
	serviceURL string
	validate   *validator.Validate
}

// NewAdaptationPipeline は AdaptationPipeline を生成します。
func NewAdaptationPipeline(deps Dependencies) (*AdaptationPipeline, error) {
	if deps.Generator == nil {
		return nil, fmt.Errorf("text generator is required")
	}
	if deps.Prompts == nil {
		return nil, fmt.Errorf("prompt builder is required")
	}
	if deps.Notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}

	v, err := newValidator()
	if err != nil {
		return nil, err
	}

	return &AdaptationPipeline{
		generator:  deps.Generator,
		prompts:    deps.Prompts,
		notifier:   deps.Notifier,
		source:     deps.Source,
		serviceURL: deps.ServiceURL,
		validate:   v,
	}, nil
}

// Extract は元ページの要約を取得してセッションに保存します（コール1）。
// API キーが空の場合はセッションに保存済みのキーを使います。
func (p *AdaptationPipeline) Extract(ctx context.Context, st *session.State, in ExtractInput) (err error) {
	in.APIKey = strings.TrimSpace(in.APIKey)
	in.SourceURL = strings.TrimSpace(in.SourceURL)
	if in.APIKey == "" {
		in.APIKey = st.APIKey()
	}
	if err := p.validateInput(in); err != nil {
		return err
	}

	ticket, err := st.BeginExtraction()
	if err != nil {
		return err
	}
	st.SetAPIKey(in.APIKey)

	defer func() {
		if err != nil {
			p.fail(ctx, st, ticket, err, ExtractFailedMessage)
			p.notifyError(ctx, modeExtract, in.SourceURL, "", err)
		}
	}()

	start := time.Now()
	slog.InfoContext(ctx, "Extraction started", "session_id", st.ID(), "source_url", in.SourceURL)

	prompt, err := p.prompts.Extraction(prompts.ExtractionInput{
		SourceURL:  in.SourceURL,
		SourceText: p.prefetch(ctx, in.SourceURL),
	})
	if err != nil {
		return fmt.Errorf("failed to build extraction prompt: %w", err)
	}

	summary, err := p.generator.Generate(ctx, in.APIKey, prompt)
	if err != nil {
		return fmt.Errorf("extraction call failed: %w", err)
	}

	if !st.CompleteExtraction(ticket, in.SourceURL, strings.TrimSpace(summary)) {
		slog.InfoContext(ctx, "Extraction result discarded after reset", "session_id", st.ID())
		return nil
	}
	slog.InfoContext(ctx, "Extraction completed",
		"session_id", st.ID(),
		"summary_chars", len(summary),
		"elapsed", time.Since(start).String(),
	)
	return nil
}

// Generate はジャンルに合わせた脚本一式を生成してセッションに保存します（コール2）。
// 抽出が完了していないセッションでは呼び出しを行いません。
func (p *AdaptationPipeline) Generate(ctx context.Context, st *session.State, in GenerateInput) (err error) {
	in.Genre = strings.TrimSpace(in.Genre)
	if err := p.validateInput(in); err != nil {
		return err
	}
	genre, _ := domain.ParseGenre(in.Genre)

	apiKey := st.APIKey()
	if apiKey == "" {
		return domain.NewValidationError(msgMissingAPIKey)
	}

	ticket, req, err := st.BeginGeneration(genre)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			p.fail(ctx, st, ticket, err, GenerateFailedMessage)
			p.notifyError(ctx, modeGenerate, req.SourceURL, req.Genre, err)
		}
	}()

	start := time.Now()
	slog.InfoContext(ctx, "Generation started", "session_id", st.ID(), "genre", genre, "source_url", req.SourceURL)

	prompt, err := p.prompts.Generation(req)
	if err != nil {
		return fmt.Errorf("failed to build generation prompt: %w", err)
	}

	raw, err := p.generator.Generate(ctx, apiKey, prompt)
	if err != nil {
		return fmt.Errorf("generation call failed: %w", err)
	}

	doc := domain.GeneratedDocument{RawText: raw}
	if !st.CompleteGeneration(ticket, doc) {
		slog.InfoContext(ctx, "Generation result discarded after reset", "session_id", st.ID())
		return nil
	}
	slog.InfoContext(ctx, "Generation completed",
		"session_id", st.ID(),
		"genre", genre,
		"document_chars", len(raw),
		"elapsed", time.Since(start).String(),
	)

	p.notifySuccess(ctx, req, doc)
	return nil
}

// prefetch は元ページの本文を取得します。取得に失敗しても抽出は続行します。
func (p *AdaptationPipeline) prefetch(ctx context.Context, sourceURL string) string {
	if p.source == nil {
		return ""
	}
	snap, err := p.source.Read(ctx, sourceURL)
	if err != nil {
		slog.WarnContext(ctx, "Source prefetch failed, continuing without page text", "source_url", sourceURL, "error", err)
		return ""
	}
	return snap.Text
}

func (p *AdaptationPipeline) fail(ctx context.Context, st *session.State, ticket session.Ticket, err error, fallback string) {
	msg := domain.UserMessage(err, fallback)
	slog.ErrorContext(ctx, "Call failed", "session_id", st.ID(), "error", err)
	if !st.Fail(ticket, msg) {
		slog.InfoContext(ctx, "Failure discarded after reset", "session_id", st.ID())
	}
}
