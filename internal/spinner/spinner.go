// Package spinner 在等待 API 回應時於終端機顯示轉圈動畫。
// 輸出走 stderr，避免污染被導向檔案的 stdout。
package spinner

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var frameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

// Spinner 以背景 goroutine 更新動畫
type Spinner struct {
	w       io.Writer
	message string

	mu      sync.Mutex
	running bool
	done    chan struct{}
	stopped chan struct{}
}

// New 建立一個 Spinner，預設輸出到 stderr
func New(message string) *Spinner {
	return &Spinner{w: os.Stderr, message: message}
}

// Start 啟動動畫，重複呼叫不會起第二個 goroutine
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})

	go s.run(s.done, s.stopped)
}

func (s *Spinner) run(done, stopped chan struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-done:
			// 清掉整行動畫
			fmt.Fprint(s.w, "\r\033[K")
			return
		case <-ticker.C:
			fmt.Fprintf(s.w, "\r%s %s", frameStyle.Render(frames[i%len(frames)]), s.message)
			i++
		}
	}
}

// Stop 停止動畫並等待畫面清乾淨
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.done)
	<-s.stopped
}
