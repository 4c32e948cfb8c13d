// Package ollama 提供本地 Ollama 的備援 Provider。
// 沒有 OpenRouter 金鑰或想離線使用時，ASKAI_PROVIDER=ollama 即可切換。
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/ngroegli/askai-cli-sub001/llms/openrouter"
)

// ChatStreamFunc 回傳綁定指定 host 的聊天函式
// 簽名與 llms.ChatFunc 相容
func ChatStreamFunc(host string) func(ctx context.Context, model string, messages []openrouter.Message, opts openrouter.Options, onStream func(string)) (openrouter.Message, error) {
	return func(ctx context.Context, model string, messages []openrouter.Message, opts openrouter.Options, onStream func(string)) (openrouter.Message, error) {
		if host == "" {
			host = "http://localhost:11434"
		}
		base, err := url.Parse(strings.TrimSuffix(host, "/"))
		if err != nil {
			return openrouter.Message{}, fmt.Errorf("OLLAMA_HOST 格式錯誤: %v", err)
		}
		client := api.NewClient(base, http.DefaultClient)

		// 轉換為 Ollama /api/chat 的訊息格式
		apiMsgs := make([]api.Message, 0, len(messages))
		for _, m := range messages {
			apiMsgs = append(apiMsgs, api.Message{Role: m.Role, Content: m.Content})
		}

		stream := onStream != nil
		req := &api.ChatRequest{
			Model:    model,
			Messages: apiMsgs,
			Stream:   &stream,
			Options:  map[string]any{"temperature": opts.Temperature},
		}

		fullMsg := openrouter.Message{Role: "assistant"}
		err = client.Chat(ctx, req, func(resp api.ChatResponse) error {
			if resp.Message.Content != "" {
				fullMsg.Content += resp.Message.Content
				if onStream != nil {
					onStream(resp.Message.Content)
				}
			}
			return nil
		})
		if err != nil {
			return openrouter.Message{}, fmt.Errorf("連線至 Ollama 失敗 (%s): %v", host, err)
		}
		return fullMsg, nil
	}
}
