// Package openrouter 實作 OpenRouter chat-completions API 的客戶端。
// OpenRouter 走 OpenAI 相容格式，一把 API key 可以打到多家模型。
package openrouter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// OpenRouter 建議帶上來源識別，用於模型排行統計
	refererHeader = "https://github.com/ngroegli/askai-cli"
	titleHeader   = "askai"
)

// Message 代表對話中的一則訊息（OpenAI chat-completions 慣例）
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// Options 定義模型參數，用於調整 AI 的行為風格
type Options struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// Usage 記錄一次請求的 token 用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Client 是 OpenRouter API 客戶端
type Client struct {
	rc     *resty.Client
	apiKey string

	mu        sync.Mutex
	lastUsage Usage
}

// New 建立 OpenRouter 客戶端
// baseURL 為空時使用官方端點
func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(120 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("HTTP-Referer", refererHeader).
		SetHeader("X-Title", titleHeader)

	return &Client{rc: rc, apiKey: apiKey}
}

// LastUsage 回傳最近一次成功請求的 token 用量
func (c *Client) LastUsage() Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsage
}

func (c *Client) setUsage(u Usage) {
	if u.TotalTokens == 0 {
		return
	}
	c.mu.Lock()
	c.lastUsage = u
	c.mu.Unlock()
}

// ──────────────────────────────────────────────────────
// 請求 / 回應格式
// ──────────────────────────────────────────────────────

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream,omitempty"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// apiError 是 OpenRouter 的錯誤信封 {"error": {"message": ..., "code": ...}}
type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage     `json:"usage"`
	Error *apiError `json:"error,omitempty"`
}

// sseChunk 是串流回傳的每一小塊資料
type sseChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage    `json:"usage,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

// ──────────────────────────────────────────────────────
// Chat
// ──────────────────────────────────────────────────────

// ChatStream 發送對話請求
// onStream 為 nil 時走一次性請求；非 nil 時走 SSE 串流並逐段回呼。
// 實作 llms.ChatFunc 介面。
func (c *Client) ChatStream(ctx context.Context, model string, messages []Message, opts Options, onStream func(string)) (Message, error) {
	if c.apiKey == "" {
		return Message{}, fmt.Errorf("未設定 OPENROUTER_API_KEY，請在環境變數或 envfile 中設定")
	}

	if onStream == nil {
		return c.chatOnce(ctx, model, messages, opts)
	}
	return c.chatSSE(ctx, model, messages, opts, onStream)
}

// chatOnce 一次性請求，429 與連線錯誤以指數退避重試
func (c *Client) chatOnce(ctx context.Context, model string, messages []Message, opts Options) (Message, error) {
	reqBody := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	const maxRetries = 3
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			// 1s, 2s, 4s
			select {
			case <-time.After(time.Duration(1<<uint(i-1)) * time.Second):
			case <-ctx.Done():
				return Message{}, ctx.Err()
			}
		}

		var respBody chatResponse
		resp, err := c.rc.R().
			SetContext(ctx).
			SetHeader("Authorization", "Bearer "+c.apiKey).
			SetBody(reqBody).
			SetResult(&respBody). // Resty 自動解析 JSON
			Post("/chat/completions")

		if err != nil {
			lastErr = fmt.Errorf("連線至 OpenRouter 失敗: %v", err)
			continue
		}

		if resp.StatusCode() == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("OpenRouter 回應 429 (rate limit)")
			continue
		}

		if !resp.IsSuccess() {
			// 錯誤信封可能藏在 body 中，撈出來給使用者看
			if apiErr := parseErrorBody(resp.Body()); apiErr != "" {
				return Message{}, fmt.Errorf("OpenRouter API 錯誤 (HTTP %d): %s", resp.StatusCode(), apiErr)
			}
			return Message{}, fmt.Errorf("OpenRouter API 錯誤 (HTTP %d): %s", resp.StatusCode(), resp.String())
		}

		if respBody.Error != nil {
			return Message{}, fmt.Errorf("OpenRouter API 錯誤: %s", respBody.Error.Message)
		}
		if len(respBody.Choices) == 0 {
			return Message{}, fmt.Errorf("OpenRouter 未回傳任何結果")
		}

		c.setUsage(respBody.Usage)

		msg := respBody.Choices[0].Message
		if msg.Role == "" {
			msg.Role = "assistant"
		}
		return msg, nil
	}

	return Message{}, fmt.Errorf("OpenRouter 請求失敗 (已重試 %d 次): %v", maxRetries, lastErr)
}

// chatSSE 串流請求，逐段回呼並累積完整回應
func (c *Client) chatSSE(ctx context.Context, model string, messages []Message, opts Options, onStream func(string)) (Message, error) {
	reqBody := chatRequest{
		Model:       model,
		Messages:    messages,
		Stream:      true,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("Accept", "text/event-stream").
		SetBody(reqBody).
		SetDoNotParseResponse(true). // 自己處理 SSE 串流
		Post("/chat/completions")
	if err != nil {
		return Message{}, fmt.Errorf("連線至 OpenRouter 失敗: %v", err)
	}

	raw := resp.RawBody()
	defer raw.Close()

	if resp.StatusCode() != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(raw, 1<<20))
		if apiErr := parseErrorBody(body); apiErr != "" {
			return Message{}, fmt.Errorf("OpenRouter API 錯誤 (HTTP %d): %s", resp.StatusCode(), apiErr)
		}
		return Message{}, fmt.Errorf("OpenRouter API 錯誤 (HTTP %d): %s", resp.StatusCode(), strings.TrimSpace(string(body)))
	}

	fullMsg := Message{Role: "assistant"}

	scanner := bufio.NewScanner(raw)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		// SSE 格式: "data: {json}" 或 "data: [DONE]"
		// OpenRouter 另外會送 ": OPENROUTER PROCESSING" 的註解行，直接略過
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			break
		}

		var chunk sseChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if chunk.Error != nil {
			return Message{}, fmt.Errorf("OpenRouter API 錯誤: %s", chunk.Error.Message)
		}
		if chunk.Usage != nil {
			c.setUsage(*chunk.Usage)
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta.Content
		if delta != "" {
			fullMsg.Content += delta
			onStream(delta)
		}
	}
	if err := scanner.Err(); err != nil {
		return Message{}, fmt.Errorf("串流讀取錯誤: %v", err)
	}

	return fullMsg, nil
}

// parseErrorBody 嘗試從回應 body 解析錯誤信封
func parseErrorBody(body []byte) string {
	var envelope struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		return envelope.Error.Message
	}
	return ""
}
