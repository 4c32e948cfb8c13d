// Package extract 負責從 LLM 的自由文字回應中擷取結構化內容。
// LLM 的輸出格式並不穩定：有時乖乖用 fenced code block，有時直接把
// 整份 HTML 或 JSON 貼在回答中。這裡用 regex 與啟發式掃描把
// HTML/CSS/JS/JSON 區塊抓出來，供檔案輸出層使用。
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Block 代表一個從回應中擷取出的內容區塊
type Block struct {
	Lang    string // 正規化後的語言標籤 (html, css, js, json, text...)
	Content string // 區塊內容（已去除前後空白行）
}

// Result 是一次擷取的完整結果
type Result struct {
	Blocks     []Block
	Commentary string // 區塊以外的說明文字
}

var (
	// fenced code block：```lang\n ... ```，lang 可為空
	fencedRe = regexp.MustCompile("(?s)```([a-zA-Z0-9_+\\-.]*)[ \t]*\r?\n(.*?)```")

	// 未加 fence 的完整 HTML 文件
	htmlDocRe = regexp.MustCompile(`(?is)(<!DOCTYPE\s+html.*?</html\s*>|<html[\s>].*?</html\s*>)`)
)

// Parse 從回應文字擷取所有 code block
// hint 為 pattern 指定的預期格式（如 "json"），空字串代表無提示
func Parse(text string, hint string) *Result {
	res := &Result{}

	matches := fencedRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) > 0 {
		var commentary strings.Builder
		last := 0
		for _, m := range matches {
			// m: [全段起訖, lang 起訖, body 起訖]
			commentary.WriteString(text[last:m[0]])
			last = m[1]

			lang := normalizeLang(text[m[2]:m[3]])
			body := strings.Trim(text[m[4]:m[5]], "\r\n")
			if body == "" {
				continue
			}
			res.Blocks = append(res.Blocks, Block{Lang: lang, Content: body})
		}
		commentary.WriteString(text[last:])
		res.Commentary = strings.TrimSpace(commentary.String())
		return res
	}

	// 沒有任何 fenced block：退而求其次做未加 fence 的啟發式擷取
	if loc := htmlDocRe.FindStringIndex(text); loc != nil {
		res.Blocks = append(res.Blocks, Block{
			Lang:    "html",
			Content: strings.TrimSpace(text[loc[0]:loc[1]]),
		})
		res.Commentary = strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
		return res
	}

	if hint == "json" {
		if raw, rest, ok := scanJSON(text); ok {
			res.Blocks = append(res.Blocks, Block{Lang: "json", Content: raw})
			res.Commentary = strings.TrimSpace(rest)
			return res
		}
	}

	res.Commentary = strings.TrimSpace(text)
	return res
}

// First 回傳第一個符合語言的區塊，找不到時回傳 nil
func (r *Result) First(lang string) *Block {
	for i := range r.Blocks {
		if r.Blocks[i].Lang == lang {
			return &r.Blocks[i]
		}
	}
	return nil
}

// Extension 回傳區塊對應的副檔名（含點）
func (b Block) Extension() string {
	switch b.Lang {
	case "html":
		return ".html"
	case "css":
		return ".css"
	case "js":
		return ".js"
	case "json":
		return ".json"
	case "yaml":
		return ".yml"
	case "markdown":
		return ".md"
	case "python":
		return ".py"
	case "go":
		return ".go"
	case "bash", "sh", "shell":
		return ".sh"
	case "sql":
		return ".sql"
	default:
		return ".txt"
	}
}

// normalizeLang 將 code block 的語言標籤正規化
func normalizeLang(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "":
		return "text"
	case "javascript", "js":
		return "js"
	case "html", "htm":
		return "html"
	case "css":
		return "css"
	case "json", "jsonc":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "md", "markdown":
		return "markdown"
	case "py", "python":
		return "python"
	case "golang", "go":
		return "go"
	default:
		return strings.ToLower(strings.TrimSpace(lang))
	}
}

// PrettyJSON 驗證並重新格式化 JSON 字串
// 非法 JSON 會回傳錯誤，由呼叫端決定要保留原文或中止
func PrettyJSON(raw string) (string, error) {
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// scanJSON 從文字中掃出第一段括號平衡且合法的 JSON 物件或陣列
// 回傳 (JSON 原文, 其餘文字, 是否找到)
func scanJSON(text string) (string, string, bool) {
	for start := 0; start < len(text); start++ {
		c := text[start]
		if c != '{' && c != '[' {
			continue
		}

		depth := 0
		inStr := false
		escaped := false
		for i := start; i < len(text); i++ {
			ch := text[i]
			if inStr {
				switch {
				case escaped:
					escaped = false
				case ch == '\\':
					escaped = true
				case ch == '"':
					inStr = false
				}
				continue
			}
			switch ch {
			case '"':
				inStr = true
			case '{', '[':
				depth++
			case '}', ']':
				depth--
				if depth == 0 {
					candidate := text[start : i+1]
					if json.Valid([]byte(candidate)) {
						return candidate, text[:start] + text[i+1:], true
					}
					// 括號平衡但不是合法 JSON，從下一個起點重找
					i = len(text)
				}
			}
		}
	}
	return "", "", false
}
