// Package history 管理對話紀錄：扁平 JSON 的 Session 檔案，
// 以及供全文搜尋用的 sqlite 索引。
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ngroegli/askai-cli-sub001/llms/openrouter"
)

// Session 代表一次完整的對話會話
type Session struct {
	ID         string               `json:"id"`
	Title      string               `json:"title"`
	Model      string               `json:"model,omitempty"`
	Messages   []openrouter.Message `json:"messages"`
	LastUpdate time.Time            `json:"last_update"`
}

// Summary 是 Session 清單中的一筆簡述
type Summary struct {
	ID         string
	Title      string
	Messages   int
	LastUpdate time.Time
}

// NewSession 建立一個空的 Session
func NewSession() *Session {
	return &Session{
		ID:         uuid.NewString(),
		Messages:   []openrouter.Message{},
		LastUpdate: time.Now(),
	}
}

// EnsureTitle 在 Title 為空時，用第一則使用者訊息當標題
func (s *Session) EnsureTitle() {
	if s.Title != "" {
		return
	}
	for _, m := range s.Messages {
		if m.Role == "user" {
			s.Title = truncateRunes(strings.ReplaceAll(m.Content, "\n", " "), 40)
			return
		}
	}
}

// truncateRunes 以 rune 為單位截斷，避免切壞多位元組字元
func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}

// LoadSession 載入指定 ID 的對話紀錄
func LoadSession(dir, id string) (*Session, error) {
	path := filepath.Join(dir, fmt.Sprintf("%s.json", id))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("找不到 Session %s: %v", id, err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("Session %s 格式損毀: %v", id, err)
	}
	// 防止 JSON 內的 ID 與檔名不符
	if s.ID == "" {
		s.ID = id
	}
	return &s, nil
}

// LoadLatestSession 掃描目錄，找出最後更新的 Session；沒有就建新的
func LoadLatestSession(dir string) *Session {
	files, err := os.ReadDir(dir)
	if err != nil || len(files) == 0 {
		return NewSession()
	}

	var latestID string
	var latestTime time.Time
	for _, file := range files {
		if filepath.Ext(file.Name()) != ".json" {
			continue
		}
		info, err := file.Info()
		if err == nil && info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestID = strings.TrimSuffix(file.Name(), ".json")
		}
	}

	if latestID == "" {
		return NewSession()
	}
	s, err := LoadSession(dir, latestID)
	if err != nil {
		// 損毀的紀錄不擋路，直接開新的
		return NewSession()
	}
	return s
}

// SaveSession 將 Session 持久化
func SaveSession(dir string, s *Session) error {
	if s == nil {
		return nil
	}

	s.LastUpdate = time.Now()
	s.EnsureTitle()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("無法建立紀錄目錄: %v", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("JSON 編碼失敗: %v", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.json", s.ID))
	return os.WriteFile(path, data, 0644)
}

// ListSessions 回傳所有 Session 簡述，新的在前
func ListSessions(dir string) ([]Summary, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("無法讀取紀錄目錄: %v", err)
	}

	var out []Summary
	for _, file := range files {
		if filepath.Ext(file.Name()) != ".json" {
			continue
		}
		id := strings.TrimSuffix(file.Name(), ".json")
		s, err := LoadSession(dir, id)
		if err != nil {
			continue
		}
		out = append(out, Summary{
			ID:         s.ID,
			Title:      s.Title,
			Messages:   len(s.Messages),
			LastUpdate: s.LastUpdate,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].LastUpdate.After(out[j].LastUpdate) })
	return out, nil
}

// ClearHistory 刪除本地所有的對話紀錄
func ClearHistory(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// Transcript 將 Session 轉為純文字逐字稿（PDF 匯出與搜尋索引用）
func (s *Session) Transcript() string {
	var sb strings.Builder
	for _, m := range s.Messages {
		if m.Role == "system" {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n\n", m.Role, m.Content))
	}
	return sb.String()
}
