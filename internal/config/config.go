package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 儲存全域配置參數
type Config struct {
	Provider      string  // openrouter (預設) 或 ollama
	Model         string  // 預設使用的模型
	BaseURL       string  // OpenRouter API 端點
	APIKey        string  // OPENROUTER_API_KEY
	OllamaHost    string  // 本地 Ollama 位址
	SystemPrompt  string  // 未指定 pattern 時的預設 System Prompt
	DataDir       string  // history/、patterns/、askai.db、system.log 的根目錄
	ContextTokens int     // chat 模式的歷史 token 預算
	Temperature   float64 // 預設取樣溫度
}

const coreSystemPrompt = `你是一個精確的 CLI 助手。
回答準則：
1. 直接回答問題本身，不要加入「好的」「當然」之類的開場白。
2. 回答使用 Markdown 格式。程式碼一律放在標明語言的 fenced code block 中（如 ` + "```html" + `）。
3. 當使用者要求產出檔案內容（網頁、設定檔、JSON 資料）時，每個檔案放在獨立的 code block，不要把多個檔案混在同一個區塊。
4. 要求 JSON 輸出時，回傳合法的 JSON，不要附加說明文字在 JSON 內部。`

// LoadConfig 負責初始化配置，支援 .env 檔案與環境變數
func LoadConfig() *Config {
	// 嘗試從多個位置載入 envfile
	// 優先順序：當前目錄 > 資料目錄
	_ = godotenv.Load("envfile")

	dataDir := getEnv("ASKAI_DATA_DIR", "")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataDir = filepath.Join(home, ".askai")
	}
	_ = godotenv.Load(filepath.Join(dataDir, "envfile"))

	return &Config{
		// 從環境變數讀取，若無則使用後方的預設值
		Provider:      getEnv("ASKAI_PROVIDER", "openrouter"),
		Model:         getEnv("ASKAI_MODEL", "openrouter/auto"),
		BaseURL:       getEnv("ASKAI_BASE_URL", "https://openrouter.ai/api/v1"),
		APIKey:        getEnv("OPENROUTER_API_KEY", ""),
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
		SystemPrompt:  getEnv("ASKAI_SYSTEM_PROMPT", coreSystemPrompt),
		DataDir:       dataDir,
		ContextTokens: getEnvInt("ASKAI_CONTEXT_TOKENS", 8000),
		Temperature:   getEnvFloat("ASKAI_TEMPERATURE", 0.7),
	}
}

// HistoryDir 回傳對話紀錄目錄（不存在時自動建立）
func (c *Config) HistoryDir() string {
	dir := filepath.Join(c.DataDir, "history")
	_ = os.MkdirAll(dir, 0755)
	return dir
}

// PatternDir 回傳 pattern 目錄（不存在時自動建立）
func (c *Config) PatternDir() string {
	dir := filepath.Join(c.DataDir, "patterns")
	_ = os.MkdirAll(dir, 0755)
	return dir
}

// IndexPath 回傳 sqlite 搜尋索引的檔案路徑
func (c *Config) IndexPath() string {
	_ = os.MkdirAll(c.DataDir, 0755)
	return filepath.Join(c.DataDir, "askai.db")
}

// getEnv 是輔助函式，用來處理環境變數與預設值的邏輯
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
