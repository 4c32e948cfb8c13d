package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogEvent 定義日誌事件類型
type LogEvent string

const (
	EventQuestion LogEvent = "question"
	EventResponse LogEvent = "response"
	EventAPIError LogEvent = "api_error"
	EventExtract  LogEvent = "extract"
)

// LogEntry 定義單條日誌結構 (JSONL)
type LogEntry struct {
	Timestamp string   `json:"timestamp"`
	Event     LogEvent `json:"event"`
	Model     string   `json:"model,omitempty"`
	Content   string   `json:"content,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// SystemLogger 負責寫入系統日誌
type SystemLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewSystemLogger 初始化日誌器
// logDir: 日誌目錄，例如 "~/.askai"
func NewSystemLogger(logDir string) (*SystemLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(logDir, "system.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open system log file: %w", err)
	}
	return &SystemLogger{file: f}, nil
}

// Close 關閉檔案
func (l *SystemLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *SystemLogger) writeEntry(entry LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}

	entry.Timestamp = time.Now().Format(time.RFC3339)
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️ [Logger] Failed to marshal log entry: %v\n", err)
		return
	}

	if _, err := l.file.Write(append(data, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️ [Logger] Failed to write to log file: %v\n", err)
	}
}

// LogQuestion 記錄使用者提問
func (l *SystemLogger) LogQuestion(input string) {
	l.writeEntry(LogEntry{Event: EventQuestion, Content: input})
}

// LogResponse 記錄 AI 回應
func (l *SystemLogger) LogResponse(model, response string) {
	l.writeEntry(LogEntry{Event: EventResponse, Model: model, Content: response})
}

// LogAPIError 記錄 API 呼叫失敗
func (l *SystemLogger) LogAPIError(model string, err error) {
	l.writeEntry(LogEntry{Event: EventAPIError, Model: model, Error: err.Error()})
}

// LogExtract 記錄從回應中抽出的程式碼區塊
func (l *SystemLogger) LogExtract(lang, target string) {
	l.writeEntry(LogEntry{Event: EventExtract, Content: fmt.Sprintf("%s -> %s", lang, target)})
}
