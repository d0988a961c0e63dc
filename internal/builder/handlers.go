package builder

import (
	"fmt"

	"ap-script-web/internal/app"
	"ap-script-web/internal/server/handlers"
)

// AppHandlers は生成されたすべての HTTP ハンドラーを保持する構造体です。
// server パッケージはこの構造体を受け取ってルーティングを行います。
type AppHandlers struct {
	Web *handlers.Handler
}

// BuildHandlers は各ハンドラーの依存関係をすべて組み立て、AppHandlers 構造体を返します。
func BuildHandlers(container *app.Container) (*AppHandlers, error) {
	if container.Config.ServiceURL == "" {
		return nil, fmt.Errorf("通知リンクのために ServiceURL の設定が必要です")
	}

	webHandler, err := handlers.NewHandler(container.Config, container.Sessions, container.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("WebHandlerの初期化に失敗しました: %w", err)
	}

	return &AppHandlers{
		Web: webHandler,
	}, nil
}
