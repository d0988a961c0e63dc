package app

import (
	"ap-script-web/internal/config"
	"ap-script-web/internal/pipeline"
	"ap-script-web/internal/session"
)

// Container はアプリケーションの依存関係（DIコンテナ）を保持します。
type Container struct {
	Config *config.Config

	// Session State
	Sessions *session.Store

	// Business Logic
	Pipeline *pipeline.AdaptationPipeline
}
