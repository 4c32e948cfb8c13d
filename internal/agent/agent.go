// Package agent 封裝一次問答的完整流程：組裝訊息、呼叫 Provider、
// 維護 Session 與裁切 context 預算。
package agent

import (
	"context"
	"fmt"

	"github.com/ngroegli/askai-cli-sub001/internal/history"
	"github.com/ngroegli/askai-cli-sub001/internal/tokens"
	"github.com/ngroegli/askai-cli-sub001/llms"
	"github.com/ngroegli/askai-cli-sub001/llms/openrouter"
)

// Agent 封裝了對話邏輯與 Session 管理
type Agent struct {
	Session      *history.Session
	ModelName    string
	SystemPrompt string
	Options      openrouter.Options
	Provider     llms.ChatFunc

	// context 預算（token 數），0 表示不裁切
	ContextTokens int
	Counter       tokens.Counter

	Logger *SystemLogger

	// Callbacks for UI interaction
	OnGenerateStart    func()
	OnResponseComplete func(content string)
}

// NewAgent 建立一個新的 Agent 實例
func NewAgent(modelName, systemPrompt string, session *history.Session, provider llms.ChatFunc) *Agent {
	return &Agent{
		Session:      session,
		ModelName:    modelName,
		SystemPrompt: systemPrompt,
		Options:      openrouter.Options{Temperature: 0.7},
		Provider:     provider,
		Counter:      tokens.NewHeuristicCounter(),
	}
}

// Ask 處理一則使用者輸入，回傳完整的 AI 回應
// onStream 是即時輸出 AI 回應的回調函式
func (a *Agent) Ask(ctx context.Context, input string, onStream func(string)) (string, error) {
	if a.Provider == nil {
		return "", fmt.Errorf("Agent Provider 未設定")
	}

	// 將使用者輸入加入對話歷史
	a.Session.Messages = append(a.Session.Messages, openrouter.Message{Role: "user", Content: input})
	if a.Logger != nil {
		a.Logger.LogQuestion(input)
	}

	msgs := a.buildMessages()

	// 觸發生成開始回調 (供 UI 顯示 "Thinking..." 提示)
	if a.OnGenerateStart != nil {
		a.OnGenerateStart()
	}

	aiMsg, err := a.Provider(ctx, a.ModelName, msgs, a.Options, onStream)
	if err != nil {
		if a.Logger != nil {
			a.Logger.LogAPIError(a.ModelName, err)
		}
		return "", fmt.Errorf("AI 思考錯誤: %v", err)
	}

	if aiMsg.Role == "" {
		aiMsg.Role = "assistant"
	}
	a.Session.Messages = append(a.Session.Messages, aiMsg)

	if a.Logger != nil {
		a.Logger.LogResponse(a.ModelName, aiMsg.Content)
	}
	if a.OnResponseComplete != nil {
		a.OnResponseComplete(aiMsg.Content)
	}
	return aiMsg.Content, nil
}

// buildMessages 組出送給 Provider 的訊息串：
// System Prompt 固定在最前，其餘歷史從最舊開始裁切到預算內
func (a *Agent) buildMessages() []openrouter.Message {
	var out []openrouter.Message
	if a.SystemPrompt != "" {
		out = append(out, openrouter.Message{Role: "system", Content: a.SystemPrompt})
	}

	msgs := a.Session.Messages
	if a.ContextTokens > 0 && a.Counter != nil {
		msgs = trimToBudget(msgs, a.Counter, a.ContextTokens)
	}
	return append(out, msgs...)
}

// trimToBudget 從最新的訊息往回保留，直到超出 token 預算
// 最新一則使用者訊息永遠保留，否則問題本身會被切掉
func trimToBudget(msgs []openrouter.Message, counter tokens.Counter, budget int) []openrouter.Message {
	if len(msgs) == 0 {
		return msgs
	}

	total := 0
	keep := len(msgs)
	for i := len(msgs) - 1; i >= 0; i-- {
		total += counter.Count(msgs[i].Content)
		if total > budget && i < len(msgs)-1 {
			break
		}
		keep = i
	}
	return msgs[keep:]
}
