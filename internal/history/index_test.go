package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ngroegli/askai-cli-sub001/llms/openrouter"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := OpenIndex(filepath.Join(t.TempDir(), "askai.db"))
	if err != nil {
		t.Fatalf("OpenIndex 失敗: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestIndexAndSearch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	s := NewSession()
	s.Messages = []openrouter.Message{
		{Role: "system", Content: "系統提示"},
		{Role: "user", Content: "請解釋 goroutine 的排程模型"},
		{Role: "assistant", Content: "Go 的排程器使用 GMP 模型..."},
	}
	if err := idx.IndexSession(ctx, s); err != nil {
		t.Fatalf("IndexSession 失敗: %v", err)
	}

	hits, err := idx.Search(ctx, "goroutine", 10)
	if err != nil {
		t.Fatalf("Search 失敗: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("應命中 1 筆，得到 %d", len(hits))
	}
	if hits[0].SessionID != s.ID || hits[0].Role != "user" {
		t.Errorf("命中資料錯誤: %+v", hits[0])
	}
	if !strings.Contains(hits[0].Snippet, "goroutine") {
		t.Errorf("片段應包含關鍵字: %q", hits[0].Snippet)
	}

	// system 訊息不進索引
	hits, err = idx.Search(ctx, "系統提示", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("system 訊息不應被索引，命中 %d 筆", len(hits))
	}
}

func TestIndexSessionReplacesOldRows(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	s := NewSession()
	s.Messages = []openrouter.Message{{Role: "user", Content: "舊版訊息 alpha"}}
	if err := idx.IndexSession(ctx, s); err != nil {
		t.Fatal(err)
	}

	s.Messages = []openrouter.Message{{Role: "user", Content: "新版訊息 beta"}}
	if err := idx.IndexSession(ctx, s); err != nil {
		t.Fatal(err)
	}

	if hits, _ := idx.Search(ctx, "alpha", 10); len(hits) != 0 {
		t.Errorf("重建索引後舊列應消失，命中 %d 筆", len(hits))
	}
	if hits, _ := idx.Search(ctx, "beta", 10); len(hits) != 1 {
		t.Errorf("新列應可搜到，命中 %d 筆", len(hits))
	}
}

func TestSearchEscapesLikeWildcards(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	s := NewSession()
	s.Messages = []openrouter.Message{
		{Role: "user", Content: "成長率是 95% 左右"},
		{Role: "user", Content: "完全不相關的內容"},
	}
	if err := idx.IndexSession(ctx, s); err != nil {
		t.Fatal(err)
	}

	// "95%" 中的 % 不應被當作萬用字元
	hits, err := idx.Search(ctx, "95%", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("應精確命中 1 筆，得到 %d", len(hits))
	}
}

func TestSearchLimit(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	s := NewSession()
	for i := 0; i < 30; i++ {
		s.Messages = append(s.Messages, openrouter.Message{Role: "user", Content: "重複的關鍵字 needle"})
	}
	if err := idx.IndexSession(ctx, s); err != nil {
		t.Fatal(err)
	}

	hits, err := idx.Search(ctx, "needle", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 5 {
		t.Errorf("limit=5 應回傳 5 筆，得到 %d", len(hits))
	}
}

func TestClear(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	s := NewSession()
	s.Messages = []openrouter.Message{{Role: "user", Content: "要被清掉的內容"}}
	if err := idx.IndexSession(ctx, s); err != nil {
		t.Fatal(err)
	}

	if err := idx.Clear(ctx); err != nil {
		t.Fatalf("Clear 失敗: %v", err)
	}
	if hits, _ := idx.Search(ctx, "清掉", 10); len(hits) != 0 {
		t.Errorf("清空後不應有命中，得到 %d 筆", len(hits))
	}
}

func TestSnippetWindow(t *testing.T) {
	long := strings.Repeat("前", 100) + "KEYWORD" + strings.Repeat("後", 100)
	got := snippet(long, "KEYWORD", 40)

	if !strings.Contains(got, "KEYWORD") {
		t.Errorf("片段應包含關鍵字: %q", got)
	}
	if !strings.HasPrefix(got, "…") || !strings.HasSuffix(got, "…") {
		t.Errorf("截斷兩端應加刪節號: %q", got)
	}
	if n := len([]rune(got)); n > 44 {
		t.Errorf("片段過長: %d rune", n)
	}
}
