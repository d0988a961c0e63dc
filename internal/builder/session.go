package builder

import (
	"ap-script-web/internal/config"
	"ap-script-web/internal/session"

	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// buildSessionStore は、クッキーとメモリ上の状態を対応付けるセッションストアを初期化します。
func buildSessionStore(cfg *config.Config, httpClient httpkit.ClientInterface) *session.Store {
	// HttpClient の判定メソッドを使用して Secure 属性を決定
	isSecure := httpClient.IsSecureServiceURL(cfg.ServiceURL) && cfg.IsSecureCookie()

	return session.NewStore(session.StoreConfig{
		CookieName:     config.SessionCookieName,
		Secret:         []byte(cfg.SessionSecret),
		EncryptKey:     []byte(cfg.SessionEncryptKey),
		TTL:            cfg.SessionTTL,
		IsSecureCookie: isSecure,
	})
}
