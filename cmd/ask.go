package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ngroegli/askai-cli-sub001/internal/agent"
	"github.com/ngroegli/askai-cli-sub001/internal/extract"
	"github.com/ngroegli/askai-cli-sub001/internal/history"
	"github.com/ngroegli/askai-cli-sub001/internal/output"
	"github.com/ngroegli/askai-cli-sub001/internal/pattern"
	"github.com/ngroegli/askai-cli-sub001/internal/spinner"
	"github.com/ngroegli/askai-cli-sub001/llms"
)

var (
	askPattern string
	askModel   string
	askFile    string
	askOutput  string
	askRaw     bool
	askCopy    bool
	askTemp    float64

	fileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

var askCmd = &cobra.Command{
	Use:   "ask [問題...]",
	Short: "單次提問，可套用 pattern 並把結果寫入檔案",
	Long: `向 AI 提出單一問題。問題可以直接接在指令後面，也可以從 stdin 導入：
  askai ask "用一句話解釋 goroutine"
  cat main.go | askai ask -p explain_code
  askai ask -p create_website "做一個倒數計時頁面" -o site/`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askPattern, "pattern", "p", "", "套用的提示詞樣板")
	askCmd.Flags().StringVarP(&askModel, "model", "m", "", "指定使用的模型")
	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "附加檔案內容到問題中")
	askCmd.Flags().StringVarP(&askOutput, "output", "o", "", "輸出位置（檔案或目錄）")
	askCmd.Flags().BoolVar(&askRaw, "raw", false, "不渲染 Markdown，輸出原始文字")
	askCmd.Flags().BoolVar(&askCopy, "copy", false, "回應複製到剪貼簿")
	askCmd.Flags().Float64VarP(&askTemp, "temperature", "t", -1, "取樣溫度 (0~2)")
	rootCmd.AddCommand(askCmd)
}

// buildQuestion 組合問題本文：參數 + stdin 導入 + 附加檔案
func buildQuestion(args []string) (string, error) {
	var parts []string
	if q := strings.TrimSpace(strings.Join(args, " ")); q != "" {
		parts = append(parts, q)
	}

	// stdin 不是終端機時，代表有資料被導入
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("讀取 stdin 失敗: %v", err)
		}
		if piped := strings.TrimSpace(string(data)); piped != "" {
			parts = append(parts, piped)
		}
	}

	if askFile != "" {
		// 附加檔案有大小上限，避免把整個 log 檔塞進 prompt
		const maxFileSize = 256 * 1024
		info, err := os.Stat(askFile)
		if err != nil {
			return "", fmt.Errorf("讀取附加檔案失敗: %v", err)
		}
		if info.Size() > maxFileSize {
			return "", fmt.Errorf("附加檔案 %s 超過 %dKB 上限", askFile, maxFileSize/1024)
		}
		data, err := os.ReadFile(askFile)
		if err != nil {
			return "", fmt.Errorf("讀取附加檔案失敗: %v", err)
		}
		parts = append(parts, fmt.Sprintf("檔案 %s 的內容：\n```\n%s\n```", askFile, strings.TrimRight(string(data), "\n")))
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("沒有問題可問（請帶參數、導入 stdin 或用 -f 附加檔案）")
	}
	return strings.Join(parts, "\n\n"), nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	question, err := buildQuestion(args)
	if err != nil {
		return err
	}

	// pattern 決定 System Prompt 與擷取提示
	systemPrompt := cfg.SystemPrompt
	hint := ""
	var pat *pattern.Pattern
	if askPattern != "" {
		dir := cfg.PatternDir()
		// 第一次使用前先把內建樣板裝好
		_, _ = pattern.EnsureDefaults(dir)
		pat, err = pattern.Get(dir, askPattern)
		if err != nil {
			return err
		}
		systemPrompt = pat.System
		hint = pat.Format
	}

	model := cfg.Model
	if askModel != "" {
		model = askModel
	}

	provider, err := llms.GetChatFunc(cfg, cfg.Provider)
	if err != nil {
		return err
	}

	myAgent := agent.NewAgent(model, systemPrompt, history.NewSession(), provider)
	if askTemp >= 0 {
		myAgent.Options.Temperature = askTemp
	} else {
		myAgent.Options.Temperature = cfg.Temperature
	}
	if logger, err := agent.NewSystemLogger(cfg.DataDir); err == nil {
		myAgent.Logger = logger
		defer logger.Close()
	}

	// 串流模式僅在「輸出到終端機且不經 Glamour 渲染」時有意義
	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	streaming := askRaw && askOutput == ""

	var onStream func(string)
	sp := spinner.New("AI 正在思考中...")
	if streaming {
		onStream = func(chunk string) { fmt.Print(chunk) }
	} else if interactive {
		sp.Start()
	}

	answer, err := myAgent.Ask(context.Background(), question, onStream)
	sp.Stop()
	if err != nil {
		return err
	}
	if streaming {
		fmt.Println()
	}

	if askCopy {
		if err := clipboard.WriteAll(answer); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  無法寫入剪貼簿: %v\n", err)
		}
	}

	// 檔案輸出模式：擷取區塊並寫入
	if askOutput != "" {
		res := extract.Parse(answer, hint)
		wr, err := output.Write(askOutput, answer, res, pat)
		if err != nil {
			return err
		}
		if myAgent.Logger != nil {
			for _, b := range res.Blocks {
				myAgent.Logger.LogExtract(b.Lang, askOutput)
			}
		}
		for _, f := range wr.Files {
			fmt.Printf("✅ 已寫入 %s\n", fileStyle.Render(f))
		}
		return nil
	}

	if streaming {
		return nil
	}

	// 終端機輸出：TTY 上做 Markdown 渲染，導向管線時輸出原文
	if interactive && !askRaw {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(0),
		)
		if err == nil {
			if out, rerr := renderer.Render(answer); rerr == nil {
				fmt.Println(strings.TrimSpace(out))
				return nil
			}
		}
	}
	fmt.Println(answer)
	return nil
}
