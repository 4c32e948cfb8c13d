// Package output 負責把 AI 回應與擷取出的區塊寫入檔案系統。
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ngroegli/askai-cli-sub001/internal/extract"
	"github.com/ngroegli/askai-cli-sub001/internal/pattern"
)

// WriteResult 記錄一次輸出動作實際寫入的檔案
type WriteResult struct {
	Files []string
}

// Write 將回應寫到 target
// target 為目錄（已存在或以 / 結尾）時走目錄模式：每個擷取區塊各寫一檔；
// 否則走單檔模式：整份回應寫入該檔案。
// pat 可為 nil；有 pattern 時依其 outputs 宣告決定目錄模式的檔名。
func Write(target string, answer string, res *extract.Result, pat *pattern.Pattern) (*WriteResult, error) {
	if target == "" {
		return nil, fmt.Errorf("未指定輸出位置")
	}

	if isDirTarget(target) {
		return writeDir(target, answer, res, pat)
	}
	return writeFile(target, answer, res)
}

// isDirTarget 判斷 target 是否應視為目錄
func isDirTarget(target string) bool {
	if strings.HasSuffix(target, string(os.PathSeparator)) || strings.HasSuffix(target, "/") {
		return true
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return true
	}
	// 沒有副檔名的不存在路徑視為目錄（例如 -o site）
	return filepath.Ext(target) == ""
}

// writeFile 單檔模式：依副檔名決定寫入內容
func writeFile(path string, answer string, res *extract.Result) (*WriteResult, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("無法建立輸出目錄: %v", err)
		}
	}

	content := answer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		// .json 檔優先寫入擷取並重排版後的 JSON 區塊
		if b := res.First("json"); b != nil {
			if pretty, err := extract.PrettyJSON(b.Content); err == nil {
				content = pretty
			} else {
				content = b.Content
			}
		}
	case ".html":
		if b := res.First("html"); b != nil {
			content = b.Content
		}
	case ".css":
		if b := res.First("css"); b != nil {
			content = b.Content
		}
	case ".js":
		if b := res.First("js"); b != nil {
			content = b.Content
		}
	}

	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("寫入 %s 失敗: %v", path, err)
	}
	return &WriteResult{Files: []string{path}}, nil
}

// writeDir 目錄模式：每個區塊各寫一檔，說明文字寫入 answer.md
func writeDir(dir string, answer string, res *extract.Result, pat *pattern.Pattern) (*WriteResult, error) {
	dir = strings.TrimSuffix(dir, "/")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("無法建立輸出目錄: %v", err)
	}

	out := &WriteResult{}

	// pattern 有宣告 outputs 時，依宣告順序把同格式的區塊對應到指定檔名
	declared := map[string][]string{} // format -> 未使用的檔名佇列
	if pat != nil {
		for _, o := range pat.Outputs {
			declared[o.Format] = append(declared[o.Format], o.File)
		}
	}

	used := map[string]int{} // 同語言多區塊時的流水號
	for _, b := range res.Blocks {
		content := b.Content
		if b.Lang == "json" {
			if pretty, err := extract.PrettyJSON(content); err == nil {
				content = pretty
			}
		}

		name := ""
		if files := declared[b.Lang]; len(files) > 0 {
			name = files[0]
			declared[b.Lang] = files[1:]
		} else {
			used[b.Lang]++
			if used[b.Lang] == 1 {
				name = defaultName(b.Lang) + b.Extension()
			} else {
				name = fmt.Sprintf("%s_%d%s", defaultName(b.Lang), used[b.Lang], b.Extension())
			}
		}

		path := filepath.Join(dir, name)
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("寫入 %s 失敗: %v", path, err)
		}
		out.Files = append(out.Files, path)
	}

	// 沒有任何區塊時，整份回應就是成品
	commentary := res.Commentary
	if len(res.Blocks) == 0 {
		commentary = answer
	}
	if strings.TrimSpace(commentary) != "" {
		path := filepath.Join(dir, "answer.md")
		if err := os.WriteFile(path, []byte(strings.TrimSpace(commentary)+"\n"), 0644); err != nil {
			return nil, fmt.Errorf("寫入 %s 失敗: %v", path, err)
		}
		out.Files = append(out.Files, path)
	}

	return out, nil
}

// defaultName 回傳各語言的慣用檔名主幹
func defaultName(lang string) string {
	switch lang {
	case "html":
		return "index"
	case "css":
		return "style"
	case "js":
		return "script"
	case "json":
		return "data"
	default:
		return "output"
	}
}
