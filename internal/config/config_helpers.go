package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shouni/netarmor/securenet"
)

const minSessionSecretBytes = 32

// getEnv は環境変数を読み込み、未設定または空の場合は fallback を返します。
func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// getEnvDuration は "90s" や "2h" 形式の値を読み込みます。解釈できない値は警告して fallback を使います。
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("Invalid duration in environment, using default", "key", key, "value", raw, "default", fallback.String())
		return fallback
	}
	return d
}

func getEnvBool(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("Invalid boolean in environment, using default", "key", key, "value", raw)
		return fallback
	}
	return b
}

// IsSecureCookie はクッキーに Secure 属性を付けるべきか判定します。
func (c Config) IsSecureCookie() bool {
	return strings.HasPrefix(strings.ToLower(c.ServiceURL), "https://")
}

// --- バリデーション ---

// ValidateEssentialConfig はアプリケーション実行に不可欠な設定を検証します。
func ValidateEssentialConfig(cfg *Config) error {
	if !IsSecureURL(cfg.ServiceURL) {
		return fmt.Errorf("security error: SERVICE_URL ('%s') must be HTTPS in production", cfg.ServiceURL)
	}

	if cfg.GeminiModel == "" {
		return fmt.Errorf("configuration error: GEMINI_MODEL is not set")
	}

	if cfg.GeminiBaseURL != "" && !IsSecureURL(cfg.GeminiBaseURL) {
		return fmt.Errorf("security error: GEMINI_BASE_URL ('%s') must be HTTPS", cfg.GeminiBaseURL)
	}

	// SessionSecret の空チェック
	if cfg.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET が設定されていません")
	}
	if n := len([]byte(cfg.SessionSecret)); n < minSessionSecretBytes {
		return fmt.Errorf("SESSION_SECRET が短すぎます (%d バイト)。%d バイト以上にしてください", n, minSessionSecretBytes)
	}

	// SessionEncryptKey の長さチェック (AES要件: 16, 24, 32 bytes)
	if cfg.SessionEncryptKey != "" {
		keyLen := len([]byte(cfg.SessionEncryptKey))
		if keyLen != 16 && keyLen != 24 && keyLen != 32 {
			return fmt.Errorf("SESSION_ENCRYPT_KEY の長さが不正です (%d バイト)。16, 24, 32 バイトのいずれかにしてください", keyLen)
		}
	}

	return nil
}

// IsSecureURL は指定された URL が HTTPS または localhost であるか判定します。
func IsSecureURL(rawURL string) bool {
	return securenet.IsSecureServiceURL(rawURL)
}
