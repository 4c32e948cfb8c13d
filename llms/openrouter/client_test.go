package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestChatOnce(t *testing.T) {
	var gotAuth, gotTitle string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTitle = r.Header.Get("X-Title")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("路徑錯誤: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "gen-1",
			"choices": [{"message": {"role": "assistant", "content": "巴黎"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
		}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	msg, err := c.ChatStream(context.Background(), "openrouter/auto",
		[]Message{{Role: "user", Content: "法國首都？"}}, Options{Temperature: 0.7}, nil)
	if err != nil {
		t.Fatalf("ChatStream 失敗: %v", err)
	}
	if msg.Content != "巴黎" {
		t.Errorf("回應內容錯誤: %q", msg.Content)
	}
	if msg.Role != "assistant" {
		t.Errorf("角色錯誤: %q", msg.Role)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization header 錯誤: %q", gotAuth)
	}
	if gotTitle != "askai" {
		t.Errorf("X-Title header 錯誤: %q", gotTitle)
	}
	if u := c.LastUsage(); u.TotalTokens != 12 {
		t.Errorf("用量應為 12 tokens，得到 %d", u.TotalTokens)
	}
}

func TestChatMissingAPIKey(t *testing.T) {
	c := New("http://unused", "")
	_, err := c.ChatStream(context.Background(), "m", nil, Options{}, nil)
	if err == nil || !strings.Contains(err.Error(), "OPENROUTER_API_KEY") {
		t.Errorf("缺 API key 應回傳明確錯誤，得到: %v", err)
	}
}

func TestChatAPIErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"error": {"message": "Insufficient credits", "code": 402}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	_, err := c.ChatStream(context.Background(), "m", []Message{{Role: "user", Content: "x"}}, Options{}, nil)
	if err == nil || !strings.Contains(err.Error(), "Insufficient credits") {
		t.Errorf("應透出 API 錯誤訊息，得到: %v", err)
	}
}

func TestChatRetriesOn429(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices": [{"message": {"role": "assistant", "content": "ok"}}]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	msg, err := c.ChatStream(context.Background(), "m", []Message{{Role: "user", Content: "x"}}, Options{}, nil)
	if err != nil {
		t.Fatalf("429 後重試應成功: %v", err)
	}
	if attempts != 2 {
		t.Errorf("應重試一次（共 2 次請求），實際 %d 次", attempts)
	}
	if msg.Content != "ok" {
		t.Errorf("回應內容錯誤: %q", msg.Content)
	}
}

func TestChatSSEStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": OPENROUTER PROCESSING\n\n")
		fmt.Fprint(w, `data: {"choices":[{"delta":{"content":"Hello"}}]}`+"\n\n")
		fmt.Fprint(w, `data: {"choices":[{"delta":{"content":" world"}}]}`+"\n\n")
		fmt.Fprint(w, `data: {"choices":[{"delta":{}}],"usage":{"prompt_tokens":5,"completion_tokens":2,"total_tokens":7}}`+"\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	var chunks []string
	msg, err := c.ChatStream(context.Background(), "m",
		[]Message{{Role: "user", Content: "hi"}}, Options{}, func(s string) {
			chunks = append(chunks, s)
		})
	if err != nil {
		t.Fatalf("串流失敗: %v", err)
	}
	if msg.Content != "Hello world" {
		t.Errorf("累積內容錯誤: %q", msg.Content)
	}
	if len(chunks) != 2 {
		t.Errorf("應回呼 2 次，實際 %d 次: %v", len(chunks), chunks)
	}
	if u := c.LastUsage(); u.TotalTokens != 7 {
		t.Errorf("串流用量應為 7 tokens，得到 %d", u.TotalTokens)
	}
}

func TestChatSSEErrorChunk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, `data: {"error":{"message":"model overloaded","code":502}}`+"\n\n")
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	_, err := c.ChatStream(context.Background(), "m",
		[]Message{{Role: "user", Content: "hi"}}, Options{}, func(string) {})
	if err == nil || !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("串流中的錯誤信封應透出，得到: %v", err)
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("路徑錯誤: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data": [
			{"id": "anthropic/claude-3.5-sonnet", "name": "Claude 3.5 Sonnet", "context_length": 200000,
			 "pricing": {"prompt": "0.000003", "completion": "0.000015"}},
			{"id": "meta-llama/llama-3-8b:free", "name": "Llama 3 8B", "context_length": 8192,
			 "pricing": {"prompt": "0", "completion": "0"}}
		]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "k")

	all, err := c.ListModels(context.Background(), "")
	if err != nil {
		t.Fatalf("ListModels 失敗: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("應回傳 2 個模型，得到 %d", len(all))
	}
	if all[0].ContextLength != 200000 {
		t.Errorf("context_length 解析錯誤: %d", all[0].ContextLength)
	}
	if all[0].IsFree() {
		t.Error("claude 不應判定為免費")
	}
	if !all[1].IsFree() {
		t.Error("pricing 全為 0 的模型應判定為免費")
	}

	filtered, err := c.ListModels(context.Background(), "LLAMA")
	if err != nil {
		t.Fatalf("ListModels(filter) 失敗: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != "meta-llama/llama-3-8b:free" {
		t.Errorf("過濾結果錯誤: %+v", filtered)
	}
}
