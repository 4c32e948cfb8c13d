// Package tokens 提供 token 估算，讓 chat 模式可以把對話歷史
// 裁切到模型的 context 預算內。
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Counter 估算一段文字的 token 數
type Counter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// heuristicCounter 以「平均 4 字元一個 token」粗估
// tiktoken 的編碼表需要下載，離線環境下用這個保底
type heuristicCounter struct{}

func (heuristicCounter) Count(text string) int {
	n := len(text)/4 + 1
	return n
}

var (
	defaultOnce    sync.Once
	defaultCounter Counter
)

// NewCounter 回傳 cl100k_base 編碼的計數器，取不到時退回啟發式估算
func NewCounter() Counter {
	defaultOnce.Do(func() {
		if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
			defaultCounter = &tiktokenCounter{enc: enc}
		} else {
			defaultCounter = heuristicCounter{}
		}
	})
	return defaultCounter
}

// NewHeuristicCounter 回傳純啟發式計數器（測試與離線用）
func NewHeuristicCounter() Counter {
	return heuristicCounter{}
}
