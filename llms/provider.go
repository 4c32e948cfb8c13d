// Package llms 定義 LLM 供應商的共用介面。
package llms

import (
	"context"

	"github.com/ngroegli/askai-cli-sub001/llms/openrouter"
)

// ChatFunc 定義了通用的 LLM 聊天函式簽名
// onStream 非 nil 時走串流模式，每收到一段內容就回呼一次；
// 無論是否串流，回傳值都是完整的 assistant 訊息。
type ChatFunc func(ctx context.Context, model string, messages []openrouter.Message, opts openrouter.Options, onStream func(string)) (openrouter.Message, error)
