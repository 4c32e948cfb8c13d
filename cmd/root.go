package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ngroegli/askai-cli-sub001/internal/config"
)

var cfg *config.Config

// rootCmd 代表基礎指令，當不帶任何子指令執行時觸發
var rootCmd = &cobra.Command{
	Use:   "askai",
	Short: "AskAI - 終端機裡的 AI 助手",
	Long: `從命令列直接向 LLM 提問的 CLI 工具。
支援 pattern 提示詞樣板、程式碼區塊擷取與檔案輸出、多輪對話與歷史搜尋。`,
}

// Execute 將所有子指令註冊到根指令並執行
func Execute() {
	cfg = config.LoadConfig()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
