package openrouter

import (
	"context"
	"fmt"
	"strings"
)

// Pricing 是模型的每 token 價格（美元字串，如 "0.000003"）
type Pricing struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// Model 是 OpenRouter 模型目錄中的一筆資料
type Model struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ContextLength int     `json:"context_length"`
	Pricing       Pricing `json:"pricing"`
}

// IsFree 判斷模型是否免費
func (m Model) IsFree() bool {
	return (m.Pricing.Prompt == "0" || m.Pricing.Prompt == "") &&
		(m.Pricing.Completion == "0" || m.Pricing.Completion == "")
}

type modelsResponse struct {
	Data  []Model   `json:"data"`
	Error *apiError `json:"error,omitempty"`
}

// ListModels 取得 OpenRouter 的模型目錄
// filter 非空時只回傳 id 包含該子字串的模型（不分大小寫）
func (c *Client) ListModels(ctx context.Context, filter string) ([]Model, error) {
	var respBody modelsResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetResult(&respBody).
		Get("/models")
	if err != nil {
		return nil, fmt.Errorf("連線至 OpenRouter 失敗: %v", err)
	}
	if !resp.IsSuccess() {
		if apiErr := parseErrorBody(resp.Body()); apiErr != "" {
			return nil, fmt.Errorf("OpenRouter API 錯誤 (HTTP %d): %s", resp.StatusCode(), apiErr)
		}
		return nil, fmt.Errorf("OpenRouter API 錯誤 (HTTP %d)", resp.StatusCode())
	}
	if respBody.Error != nil {
		return nil, fmt.Errorf("OpenRouter API 錯誤: %s", respBody.Error.Message)
	}

	if filter == "" {
		return respBody.Data, nil
	}

	needle := strings.ToLower(filter)
	var out []Model
	for _, m := range respBody.Data {
		if strings.Contains(strings.ToLower(m.ID), needle) {
			out = append(out, m)
		}
	}
	return out, nil
}
