// Package prompts は抽出・生成コールのリクエスト内容を組み立てます。
// 指示文は埋め込みの YAML から読み込んだ不変の設定として扱い、利用者の入力はテンプレートの引数としてのみ差し込みます。
package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"ap-script-web/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Prompt はリモート API へ送る1回分の指示です。
type Prompt struct {
	System       string
	User         string
	MaxTokens    int32
	WebRetrieval bool
}

// ExtractionInput は抽出プロンプトの引数です。
type ExtractionInput struct {
	SourceURL string
	// SourceText はサーバー側で事前取得したページ本文です。空なら省略されます。
	SourceText string
}

type callSpec struct {
	MaxTokens    int32  `yaml:"max_tokens"`
	WebRetrieval bool   `yaml:"web_retrieval"`
	System       string `yaml:"system"`
	User         string `yaml:"user"`
}

type catalog struct {
	Extraction callSpec `yaml:"extraction"`
	Generation callSpec `yaml:"generation"`
}

type compiled struct {
	spec callSpec
	user *template.Template
}

// Builder はテンプレートを保持し、呼び出しごとに Prompt を生成します。生成後は読み取り専用なので並行利用できます。
type Builder struct {
	extraction compiled
	generation compiled
}

// NewBuilder は埋め込みのカタログから Builder を生成します。
func NewBuilder() (*Builder, error) {
	return Parse(defaultCatalog)
}

// Parse は YAML のカタログを解析してテンプレートをコンパイルします。
func Parse(data []byte) (*Builder, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("プロンプトカタログの解析に失敗しました: %w", err)
	}

	extraction, err := compile("extraction", c.Extraction)
	if err != nil {
		return nil, err
	}
	generation, err := compile("generation", c.Generation)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(generation.spec.System) == "" {
		return nil, fmt.Errorf("generation.system が空です")
	}

	return &Builder{extraction: extraction, generation: generation}, nil
}

func compile(name string, spec callSpec) (compiled, error) {
	if strings.TrimSpace(spec.User) == "" {
		return compiled{}, fmt.Errorf("%s.user が空です", name)
	}
	if spec.MaxTokens <= 0 {
		return compiled{}, fmt.Errorf("%s.max_tokens は正の値が必要です (got %d)", name, spec.MaxTokens)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(spec.User)
	if err != nil {
		return compiled{}, fmt.Errorf("%s テンプレートのコンパイルに失敗しました: %w", name, err)
	}
	return compiled{spec: spec, user: tmpl}, nil
}

// Extraction は抽出コールのプロンプトを生成します。
func (b *Builder) Extraction(in ExtractionInput) (Prompt, error) {
	return b.extraction.render(in)
}

// Generation は生成コールのプロンプトを生成します。
func (b *Builder) Generation(req domain.AdaptationRequest) (Prompt, error) {
	return b.generation.render(req)
}

func (c compiled) render(data any) (Prompt, error) {
	var buf bytes.Buffer
	if err := c.user.Execute(&buf, data); err != nil {
		return Prompt{}, fmt.Errorf("プロンプトの生成に失敗しました (%s): %w", c.user.Name(), err)
	}
	return Prompt{
		System:       c.spec.System,
		User:         strings.TrimSpace(buf.String()),
		MaxTokens:    c.spec.MaxTokens,
		WebRetrieval: c.spec.WebRetrieval,
	}, nil
}
