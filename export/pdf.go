// Package export 將對話紀錄匯出成 PDF 檔案。
package export

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/ngroegli/askai-cli-sub001/internal/history"
)

func getSystemFont() string {
	// 優先順序 1: 根據作業系統自動選擇系統字體
	switch runtime.GOOS {
	case "windows":
		return "C:\\Windows\\Fonts\\msjh.ttc" // 微軟正黑體
	case "darwin": // macOS
		return "/Library/Fonts/Arial Unicode.ttf"
	case "linux":
		return "/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf"
	default: // 優先順序 2: 專案目錄下的自定義字體
		localFont := "assets/fonts/TaipeiSansTCBeta-Regular.ttf"
		if _, err := os.Stat(localFont); err == nil {
			return localFont
		}
		return ""
	}
}

// BuildDocument 將 Session 組成匯出用的純文字文件：
// 標題與中繼資料在前，逐字稿在後
func BuildDocument(s *history.Session) string {
	var sb strings.Builder
	title := s.Title
	if title == "" {
		title = s.ID
	}
	sb.WriteString(title + "\n")
	if s.Model != "" {
		sb.WriteString(fmt.Sprintf("模型: %s\n", s.Model))
	}
	if !s.LastUpdate.IsZero() {
		sb.WriteString(fmt.Sprintf("最後更新: %s\n", s.LastUpdate.Format("2006-01-02 15:04")))
	}
	sb.WriteString(strings.Repeat("-", 40) + "\n\n")
	sb.WriteString(s.Transcript())
	return sb.String()
}

// SessionPDF 將整個 Session 匯出為 PDF
func SessionPDF(filename string, s *history.Session) error {
	return SaveAsPDF(filename, BuildDocument(s))
}

// SaveAsPDF 將純文字內容寫成 PDF
func SaveAsPDF(filename, content string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	fontPath := getSystemFont()

	// 中文內容必須要有 UTF-8 字型
	if _, err := os.Stat(fontPath); err != nil {
		return fmt.Errorf("找不到適合的中文字體，建議手動將字體放至 assets/fonts/msjh.ttf")
	}

	pdf.AddUTF8Font("MainFont", "", fontPath)
	pdf.SetFont("MainFont", "", 12)
	pdf.AddPage()
	// 0 代表延伸到頁面邊緣，6 代表行高
	pdf.MultiCell(0, 6, content, "", "L", false)
	return pdf.OutputFileAndClose(filename)
}
