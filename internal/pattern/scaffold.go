package pattern

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// builtins 是第一次執行時自動安裝的內建 pattern
// 寫成檔案而非藏在程式裡，使用者可以直接編輯 patterns/ 目錄客製化
var builtins = []Pattern{
	{
		Name:        "general",
		Description: "一般問答，無輸出限制",
		System: `你是一個精確的 CLI 助手。直接回答問題本身，使用 Markdown 格式，
程式碼放在標明語言的 fenced code block 中。`,
	},
	{
		Name:        "summarize",
		Description: "將輸入內容濃縮為重點摘要",
		System: `你是一個摘要專家。將使用者提供的內容濃縮為 3-7 個重點，
以 Markdown 列表輸出。保留具體數字與名稱，去除客套話與重複內容。`,
	},
	{
		Name:        "explain_code",
		Description: "解釋一段程式碼的行為與陷阱",
		System: `你是一個資深工程師。解釋使用者提供的程式碼：先一句話講整體用途，
再逐段說明關鍵邏輯，最後列出潛在的錯誤或陷阱。不要重抄整段程式碼。`,
	},
	{
		Name:        "create_website",
		Description: "產生單頁網站（HTML/CSS/JS 各一檔）",
		System: `你是一個前端工程師。依使用者需求產生一個單頁網站。
輸出三個 fenced code block：依序為 html、css、javascript，
HTML 中以 <link rel="stylesheet" href="style.css"> 與
<script src="script.js"></script> 引用另外兩個檔案。
不要把 CSS 或 JS 內嵌在 HTML 裡。`,
		Outputs: []Output{
			{File: "index.html", Format: "html"},
			{File: "style.css", Format: "css"},
			{File: "script.js", Format: "js"},
		},
	},
	{
		Name:        "json_output",
		Description: "以合法 JSON 回答，適合餵給其他程式",
		System: `你是一個資料轉換器。只回傳一個合法的 JSON 物件或陣列，
放在 json fenced code block 中。不要在 JSON 前後加任何說明文字。`,
		Format:  "json",
		Outputs: []Output{{File: "data.json", Format: "json"}},
	},
}

// EnsureDefaults 將內建 pattern 安裝到目錄中（已存在的不覆寫）
// 回傳實際新安裝的數量
func EnsureDefaults(dir string) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("無法建立 pattern 目錄: %v", err)
	}

	installed := 0
	for _, p := range builtins {
		path := filepath.Join(dir, p.Name+".yml")
		if _, err := os.Stat(path); err == nil {
			continue // 使用者可能改過，不動它
		}

		data, err := yaml.Marshal(&p)
		if err != nil {
			return installed, fmt.Errorf("序列化 pattern %q 失敗: %v", p.Name, err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return installed, fmt.Errorf("寫入 %s 失敗: %v", path, err)
		}
		installed++
	}
	return installed, nil
}
