package llms

import (
	"errors"
	"strings"

	"github.com/ngroegli/askai-cli-sub001/internal/config"
	"github.com/ngroegli/askai-cli-sub001/llms/ollama"
	"github.com/ngroegli/askai-cli-sub001/llms/openrouter"
)

// GetChatFunc 回傳指定名稱的 Provider 函式
// 目前支援: "openrouter" (預設), "ollama" (本地備援)
func GetChatFunc(cfg *config.Config, providerName string) (ChatFunc, error) {
	switch strings.ToLower(providerName) {
	case "openrouter", "": // 預設為 OpenRouter
		client := openrouter.New(cfg.BaseURL, cfg.APIKey)
		return client.ChatStream, nil
	case "ollama":
		return ollama.ChatStreamFunc(cfg.OllamaHost), nil
	default:
		return nil, errors.New("unsupported provider: " + providerName)
	}
}

// GetDefaultChatFunc 回傳 ASKAI_PROVIDER 設定的 ChatFunc
// 設定錯誤時回退 OpenRouter，讓指令至少能動
func GetDefaultChatFunc(cfg *config.Config) ChatFunc {
	fn, err := GetChatFunc(cfg, cfg.Provider)
	if err != nil {
		fn, _ = GetChatFunc(cfg, "openrouter")
	}
	return fn
}
