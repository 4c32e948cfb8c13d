package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // 無 CGO 版本驅動
)

// Index 是對話內容的 sqlite 全文索引
type Index struct {
	db *sql.DB
}

// Hit 是一筆搜尋結果
type Hit struct {
	SessionID string
	Role      string
	Snippet   string
}

// OpenIndex 開啟（必要時建立）搜尋索引
func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// 設定連線池，避免 SQLite 併發寫入衝突
	db.SetMaxOpenConns(1)

	idx := &Index{db: db}
	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

// Close 關閉資料庫連線
func (x *Index) Close() error {
	return x.db.Close()
}

// migrate 負責建立必要的表格
func (x *Index) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,          -- user / assistant
		content TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id);`

	if _, err := x.db.Exec(query); err != nil {
		return fmt.Errorf("failed to run migration: %w", err)
	}
	return nil
}

// IndexSession 重建指定 Session 的索引列
// 每次存檔後整個 Session 重進一次，省去增量比對的麻煩
func (x *Index) IndexSession(ctx context.Context, s *Session) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, s.ID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO messages (session_id, role, content) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range s.Messages {
		if m.Role == "system" {
			continue // System Prompt 不值得搜
		}
		if _, err := stmt.ExecContext(ctx, s.ID, m.Role, m.Content); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Search 以 LIKE 做子字串搜尋，新的在前
func (x *Index) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + escapeLike(query) + "%"

	rows, err := x.db.QueryContext(ctx,
		`SELECT session_id, role, content FROM messages
		 WHERE content LIKE ? ESCAPE '\'
		 ORDER BY id DESC LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var content string
		if err := rows.Scan(&h.SessionID, &h.Role, &content); err != nil {
			return nil, err
		}
		h.Snippet = snippet(content, query, 80)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Clear 清空索引
func (x *Index) Clear(ctx context.Context) error {
	_, err := x.db.ExecContext(ctx, `DELETE FROM messages`)
	return err
}

// escapeLike 跳脫 LIKE 的萬用字元
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// snippet 擷取命中位置前後的文字片段
func snippet(content, query string, width int) string {
	lower := strings.ToLower(content)
	pos := strings.Index(lower, strings.ToLower(query))
	if pos < 0 {
		return truncateRunes(content, width)
	}

	runes := []rune(content)
	// 把 byte 位置換算成 rune 位置
	runePos := len([]rune(content[:pos]))

	start := runePos - width/2
	if start < 0 {
		start = 0
	}
	end := start + width
	if end > len(runes) {
		end = len(runes)
	}

	out := string(runes[start:end])
	if start > 0 {
		out = "…" + out
	}
	if end < len(runes) {
		out += "…"
	}
	return strings.ReplaceAll(out, "\n", " ")
}
