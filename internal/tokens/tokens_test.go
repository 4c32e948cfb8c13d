package tokens

import (
	"strings"
	"testing"
)

func TestHeuristicCounter(t *testing.T) {
	c := NewHeuristicCounter()

	if got := c.Count(""); got != 1 {
		t.Errorf("空字串應估 1 token，得到 %d", got)
	}
	if got := c.Count(strings.Repeat("x", 400)); got != 101 {
		t.Errorf("400 字元應估 101 token，得到 %d", got)
	}
}

func TestNewCounterNeverNil(t *testing.T) {
	// 離線環境下 tiktoken 可能取不到編碼表，但一定要有保底
	if NewCounter() == nil {
		t.Fatal("NewCounter 不應回傳 nil")
	}
}
