// Package pattern 管理提示詞樣板（pattern）。
// 每個 pattern 是 patterns/ 目錄下的一個 YAML 檔，描述 System Prompt
// 與預期的輸出檔案，讓同一類問題可以重複套用。
package pattern

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output 宣告 pattern 預期產出的一個檔案
type Output struct {
	File   string `yaml:"file"`   // 檔名，例如 index.html
	Format string `yaml:"format"` // 區塊語言，例如 html、css、js、json
}

// Pattern 是一個完整的提示詞樣板
type Pattern struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	System      string   `yaml:"system"`
	Format      string   `yaml:"format,omitempty"`  // 擷取提示（如 json），可省略
	Outputs     []Output `yaml:"outputs,omitempty"` // 預期輸出檔案，可省略
}

var nameRe = regexp.MustCompile(`^[a-z0-9_]+$`)

// Validate 檢查 pattern 定義是否完整
func (p *Pattern) Validate() error {
	if !nameRe.MatchString(p.Name) {
		return fmt.Errorf("pattern 名稱 %q 不合法（僅允許小寫英數與底線）", p.Name)
	}
	if strings.TrimSpace(p.System) == "" {
		return fmt.Errorf("pattern %q 缺少 system prompt", p.Name)
	}
	for _, o := range p.Outputs {
		if o.File == "" || o.Format == "" {
			return fmt.Errorf("pattern %q 的 outputs 項目缺少 file 或 format", p.Name)
		}
	}
	return nil
}

// Load 讀取目錄下所有 pattern，依名稱排序
// 壞掉的檔案會被略過並回報到 stderr，不會讓整個清單失效
func Load(dir string) ([]Pattern, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("無法讀取 pattern 目錄: %v", err)
	}

	var patterns []Pattern
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yml" && ext != ".yaml") {
			continue
		}
		p, err := loadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  [Pattern] 略過 %s: %v\n", e.Name(), err)
			continue
		}
		patterns = append(patterns, *p)
	}

	sort.Slice(patterns, func(i, j int) bool { return patterns[i].Name < patterns[j].Name })
	return patterns, nil
}

// Get 依名稱載入單一 pattern
func Get(dir, name string) (*Pattern, error) {
	for _, ext := range []string{".yml", ".yaml"} {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return loadFile(path)
		}
	}
	return nil, fmt.Errorf("找不到 pattern %q（執行 askai patterns 查看可用清單）", name)
}

func loadFile(path string) (*Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("讀取失敗: %v", err)
	}

	var p Pattern
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("YAML 解析失敗: %v", err)
	}
	// 檔名優先於 YAML 內的 name 欄位，避免兩者不一致
	if p.Name == "" {
		base := filepath.Base(path)
		p.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
