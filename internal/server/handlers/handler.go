package handlers

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"ap-script-web/internal/config"
	"ap-script-web/internal/pipeline"
	"ap-script-web/internal/session"
)

const titleSuffix = " - AP Script Web"

// Orchestrator は抽出・生成の2段階コールを実行します。
type Orchestrator interface {
	Extract(ctx context.Context, st *session.State, in pipeline.ExtractInput) error
	Generate(ctx context.Context, st *session.State, in pipeline.GenerateInput) error
}

type Handler struct {
	cfg           *config.Config
	templateCache map[string]*template.Template
	sessions      *session.Store
	orchestrator  Orchestrator
}

// NewHandler は指定された構成に基づいて新しいハンドラーを初期化します。
// テンプレートをコンパイルし、レイアウトファイルが存在することを確認します。
func NewHandler(
	cfg *config.Config,
	sessions *session.Store,
	orchestrator Orchestrator,
) (*Handler, error) {
	cache := make(map[string]*template.Template)
	layoutPath := filepath.Join(cfg.TemplateDir, "layout.html")
	if _, err := os.Stat(layoutPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("レイアウトテンプレートが見つかりません: %s", layoutPath)
	}

	pagePaths, err := filepath.Glob(filepath.Join(cfg.TemplateDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("ページテンプレートの検索に失敗しました: %w", err)
	}

	funcMap := template.FuncMap{
		"lower": strings.ToLower,
	}

	for _, pagePath := range pagePaths {
		pageName := filepath.Base(pagePath)
		if pageName == "layout.html" {
			continue
		}

		tmpl := template.New(pageName).Funcs(funcMap)
		tmpl, err = tmpl.ParseFiles(layoutPath, pagePath)
		if err != nil {
			return nil, fmt.Errorf("テンプレート %s の解析に失敗しました: %w", pageName, err)
		}
		cache[pageName] = tmpl
	}

	return &Handler{
		cfg:           cfg,
		templateCache: cache,
		sessions:      sessions,
		orchestrator:  orchestrator,
	}, nil
}
