package domain

const CategoryNotAvailable = "N/A"

// NotificationRequest は Slack 等の通知コンポーネントで共有されるデータ構造です。
// 生成された脚本のメタデータを通知先に伝えるために使用します。
type NotificationRequest struct {
	// SourceURL は、脚色の元になった記事のURLです。
	SourceURL string `json:"source_url"`

	// Genre は、脚色先のジャンルです。
	Genre Genre `json:"genre"`

	// OutputCategory は、通知の種別です。(例: "adaptation", "error-report")
	OutputCategory string `json:"output_category"`

	// Headline は、通知に載せる要約の冒頭です。
	Headline string `json:"headline"`

	// ExecutionMode は、実行されたアクションです。(例: "extract", "generate")
	ExecutionMode string `json:"execution_mode"`
}
