package config

import (
	"os"
	"path"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultModel = "gemini-3-flash-preview"
	// DefaultHTTPTimeout 8000 トークンの生成とウェブ検索を考慮したタイムアウト
	DefaultHTTPTimeout = 120 * time.Second
	// DefaultSourceTimeout 元ページの先読みは補助的なので短めにする
	DefaultSourceTimeout   = 15 * time.Second
	DefaultSessionTTL      = 2 * time.Hour
	DefaultShutdownTimeout = 15 * time.Second
	SessionCookieName      = "ap_script_session"
)

// Config は環境変数から読み込まれたアプリケーションの全設定を保持します。
type Config struct {
	ServiceURL      string
	Port            string
	GeminiModel     string        // 抽出・生成の両方で使用するモデル
	GeminiBaseURL   string        // 空の場合は SDK の既定エンドポイント
	HTTPTimeout     time.Duration // Gemini 呼び出しのタイムアウト
	TemplateDir     string        // HTMLテンプレートの格納ディレクトリ
	SlackWebhookURL string
	SourcePrefetch  bool // true の場合、抽出前にサーバー側で元ページの本文を取得する
	ShutdownTimeout time.Duration

	// Session Settings
	// SessionSecret はセッションクッキーのHMAC署名用シークレットキーです。32 バイト以上が必要です。
	SessionSecret string
	// SessionEncryptKey はセッションクッキーのAES暗号化用キーです。任意ですが、設定する場合は 16, 24, 32 バイトのいずれかです。
	SessionEncryptKey string
	SessionTTL        time.Duration
}

// LoadConfig は .env と環境変数から設定を読み込み、Config 構造体を生成します。
func LoadConfig() *Config {
	// .env が無い環境（Cloud Run など）ではそのまま環境変数を使う
	_ = godotenv.Load()

	// 実行環境（Cloud Run, ko）に応じたパスの解決
	baseDir := "."
	if os.Getenv("KO_DATA_PATH") != "" || os.Getenv("K_SERVICE") != "" {
		baseDir = "/app"
	}

	return &Config{
		ServiceURL:      getEnv("SERVICE_URL", "http://localhost:8080"),
		Port:            getEnv("PORT", "8080"),
		GeminiModel:     getEnv("GEMINI_MODEL", DefaultModel),
		GeminiBaseURL:   getEnv("GEMINI_BASE_URL", ""),
		HTTPTimeout:     getEnvDuration("HTTP_TIMEOUT", DefaultHTTPTimeout),
		TemplateDir:     getEnv("TEMPLATE_DIR", path.Join(baseDir, "templates")),
		SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
		SourcePrefetch:  getEnvBool("SOURCE_PREFETCH", false),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),

		SessionSecret:     getEnv("SESSION_SECRET", ""),
		SessionEncryptKey: getEnv("SESSION_ENCRYPT_KEY", ""),
		SessionTTL:        getEnvDuration("SESSION_TTL", DefaultSessionTTL),
	}
}
