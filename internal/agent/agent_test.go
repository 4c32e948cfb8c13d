package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ngroegli/askai-cli-sub001/internal/history"
	"github.com/ngroegli/askai-cli-sub001/internal/tokens"
	"github.com/ngroegli/askai-cli-sub001/llms/openrouter"
)

func mockProvider(reply string) func(ctx context.Context, model string, messages []openrouter.Message, opts openrouter.Options, onStream func(string)) (openrouter.Message, error) {
	return func(ctx context.Context, model string, messages []openrouter.Message, opts openrouter.Options, onStream func(string)) (openrouter.Message, error) {
		if onStream != nil {
			onStream(reply)
		}
		return openrouter.Message{Role: "assistant", Content: reply}, nil
	}
}

func TestAskAppendsToSession(t *testing.T) {
	session := history.NewSession()
	agent := NewAgent("mock-model", "你是助手", session, mockProvider("巴黎。"))

	answer, err := agent.Ask(context.Background(), "法國的首都？", nil)
	if err != nil {
		t.Fatalf("Ask 失敗: %v", err)
	}
	if answer != "巴黎。" {
		t.Errorf("回應錯誤: %q", answer)
	}

	// Session 應有 user + assistant 兩則（system prompt 不進 Session）
	if len(session.Messages) != 2 {
		t.Fatalf("Session 應有 2 則訊息，得到 %d", len(session.Messages))
	}
	if session.Messages[0].Role != "user" || session.Messages[1].Role != "assistant" {
		t.Errorf("訊息角色錯誤: %+v", session.Messages)
	}
}

func TestAskSendsSystemPromptFirst(t *testing.T) {
	var got []openrouter.Message
	provider := func(ctx context.Context, model string, messages []openrouter.Message, opts openrouter.Options, onStream func(string)) (openrouter.Message, error) {
		got = messages
		return openrouter.Message{Role: "assistant", Content: "ok"}, nil
	}

	agent := NewAgent("mock-model", "系統指示", history.NewSession(), provider)
	if _, err := agent.Ask(context.Background(), "hi", nil); err != nil {
		t.Fatal(err)
	}

	if len(got) != 2 || got[0].Role != "system" || got[0].Content != "系統指示" {
		t.Errorf("第一則應為 system prompt: %+v", got)
	}
}

func TestAskProviderError(t *testing.T) {
	provider := func(ctx context.Context, model string, messages []openrouter.Message, opts openrouter.Options, onStream func(string)) (openrouter.Message, error) {
		return openrouter.Message{}, errors.New("boom")
	}

	session := history.NewSession()
	agent := NewAgent("mock-model", "", session, provider)
	if _, err := agent.Ask(context.Background(), "hi", nil); err == nil {
		t.Fatal("Provider 失敗應回傳錯誤")
	}

	// 失敗時不應留下 assistant 訊息
	for _, m := range session.Messages {
		if m.Role == "assistant" {
			t.Errorf("失敗後 Session 不應含 assistant 訊息: %+v", session.Messages)
		}
	}
}

func TestAskCallbacks(t *testing.T) {
	agent := NewAgent("mock-model", "", history.NewSession(), mockProvider("done"))

	started := false
	completed := ""
	agent.OnGenerateStart = func() { started = true }
	agent.OnResponseComplete = func(content string) { completed = content }

	if _, err := agent.Ask(context.Background(), "hi", nil); err != nil {
		t.Fatal(err)
	}
	if !started {
		t.Error("OnGenerateStart 未被觸發")
	}
	if completed != "done" {
		t.Errorf("OnResponseComplete 內容錯誤: %q", completed)
	}
}

func TestTrimToBudgetKeepsLatest(t *testing.T) {
	counter := tokens.NewHeuristicCounter()

	var msgs []openrouter.Message
	for i := 0; i < 10; i++ {
		msgs = append(msgs, openrouter.Message{Role: "user", Content: strings.Repeat("x", 400)})
	}

	// 每則約 101 token，預算 250 只留得下兩則左右
	out := trimToBudget(msgs, counter, 250)
	if len(out) >= len(msgs) {
		t.Fatalf("裁切後不應保留全部訊息: %d", len(out))
	}
	if out[len(out)-1].Content != msgs[len(msgs)-1].Content {
		t.Error("最新訊息必須保留")
	}

	// 預算再小，最新一則也要留著
	out = trimToBudget(msgs, counter, 1)
	if len(out) != 1 {
		t.Errorf("預算不足時應只留最新一則，得到 %d", len(out))
	}
}

func TestSystemLoggerJSONL(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewSystemLogger(dir)
	if err != nil {
		t.Fatalf("NewSystemLogger 失敗: %v", err)
	}

	logger.LogQuestion("問題一")
	logger.LogResponse("mock-model", "回應一")
	logger.LogAPIError("mock-model", errors.New("rate limited"))
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "system.log"))
	if err != nil {
		t.Fatalf("日誌檔不存在: %v", err)
	}
	defer f.Close()

	var events []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("日誌不是合法 JSONL: %v", err)
		}
		if entry.Timestamp == "" {
			t.Error("每筆日誌都應有時間戳")
		}
		events = append(events, string(entry.Event))
	}

	want := []string{"question", "response", "api_error"}
	if len(events) != len(want) {
		t.Fatalf("應有 %d 筆日誌，得到 %d", len(want), len(events))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("第 %d 筆事件應為 %s，得到 %s", i, want[i], events[i])
		}
	}
}
