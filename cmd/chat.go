package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ngroegli/askai-cli-sub001/internal/agent"
	"github.com/ngroegli/askai-cli-sub001/internal/history"
	"github.com/ngroegli/askai-cli-sub001/internal/spinner"
	"github.com/ngroegli/askai-cli-sub001/internal/tokens"
	"github.com/ngroegli/askai-cli-sub001/llms"
)

var (
	chatModel   string
	chatSession string
	chatNew     bool
	chatCopy    bool

	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	notifyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	promptStr   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(">>> ")
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "多輪對話模式，歷史自動存檔並可搜尋",
	Long: `進入互動式對話。預設接續最近一次的 Session。
對話內指令：
  /new          開新 Session
  /model <名稱>  切換模型
  /exit         離開（Ctrl+D 亦可）`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "指定使用的模型")
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "接續指定 ID 的 Session")
	chatCmd.Flags().BoolVarP(&chatNew, "new", "n", false, "強制開新 Session")
	chatCmd.Flags().BoolVar(&chatCopy, "copy", false, "每輪回應自動複製到剪貼簿")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(0), // 自動適配終端寬度，不強制切斷
	)

	historyDir := cfg.HistoryDir()

	// 決定要接續的 Session
	var sess *history.Session
	switch {
	case chatNew:
		sess = history.NewSession()
	case chatSession != "":
		s, err := history.LoadSession(historyDir, chatSession)
		if err != nil {
			return err
		}
		sess = s
	default:
		sess = history.LoadLatestSession(historyDir)
	}

	model := cfg.Model
	if chatModel != "" {
		model = chatModel
	} else if sess.Model != "" {
		model = sess.Model
	}

	provider, err := llms.GetChatFunc(cfg, cfg.Provider)
	if err != nil {
		return err
	}

	myAgent := agent.NewAgent(model, cfg.SystemPrompt, sess, provider)
	myAgent.Options.Temperature = cfg.Temperature
	myAgent.ContextTokens = cfg.ContextTokens
	myAgent.Counter = tokens.NewCounter()

	if logger, err := agent.NewSystemLogger(cfg.DataDir); err == nil {
		myAgent.Logger = logger
		defer logger.Close()
	} else {
		fmt.Printf("⚠️  [System] 日誌初始化失敗: %v\n", err)
	}

	// 搜尋索引開不起來不擋對話
	idx, err := history.OpenIndex(cfg.IndexPath())
	if err != nil {
		fmt.Printf("⚠️  [System] 搜尋索引初始化失敗: %v\n", err)
	} else {
		defer idx.Close()
	}

	sp := spinner.New("AI 正在思考中...")
	myAgent.OnGenerateStart = sp.Start

	fmt.Println(bannerStyle.Render("🚀 AskAI 對話模式（/exit 離開，/new 開新對話）"))
	if len(sess.Messages) > 0 {
		fmt.Println(notifyStyle.Render(fmt.Sprintf("接續 Session「%s」（%d 則訊息）", sess.Title, len(sess.Messages))))
	}

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStr)
		if !scanner.Scan() {
			break // Ctrl+D
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		// 對話內指令（exit/quit 不帶斜線也接受）
		if strings.HasPrefix(input, "/") || input == "exit" || input == "quit" {
			fields := strings.Fields(input)
			switch fields[0] {
			case "/exit", "/quit", "exit", "quit":
				fmt.Println("👋 再見")
				return nil
			case "/new":
				sess = history.NewSession()
				myAgent.Session = sess
				fmt.Println(notifyStyle.Render("已開新 Session"))
				continue
			case "/model":
				if len(fields) < 2 {
					fmt.Println(notifyStyle.Render(fmt.Sprintf("目前模型: %s", myAgent.ModelName)))
					continue
				}
				myAgent.ModelName = fields[1]
				fmt.Println(notifyStyle.Render(fmt.Sprintf("已切換模型: %s", fields[1])))
				continue
			default:
				fmt.Println(notifyStyle.Render(fmt.Sprintf("未知指令 %s", fields[0])))
				continue
			}
		}

		answer, err := myAgent.Ask(ctx, input, nil)
		sp.Stop()
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			continue
		}

		out, rerr := renderer.Render(answer)
		if rerr != nil {
			out = answer
		}
		fmt.Println(strings.TrimSpace(out))

		if chatCopy {
			clipboard.WriteAll(answer)
		}

		// 每輪落地：存檔 + 更新搜尋索引
		sess.Model = myAgent.ModelName
		if err := history.SaveSession(historyDir, sess); err != nil {
			fmt.Printf("⚠️  [System] Session 存檔失敗: %v\n", err)
		} else if idx != nil {
			if err := idx.IndexSession(ctx, sess); err != nil {
				fmt.Printf("⚠️  [System] 索引更新失敗: %v\n", err)
			}
		}
	}
	return scanner.Err()
}
