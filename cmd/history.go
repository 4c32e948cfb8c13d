package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ngroegli/askai-cli-sub001/export"
	"github.com/ngroegli/askai-cli-sub001/internal/history"
)

var (
	historyLimit int

	sessionIDStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	roleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	metaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "管理對話紀錄",
	RunE:  runHistoryList, // 不帶子指令時直接列清單
}

var historyShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "顯示單一 Session 的完整對話",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := history.LoadSession(cfg.HistoryDir(), args[0])
		if err != nil {
			return err
		}

		renderer, _ := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(0),
		)

		fmt.Println(sessionIDStyle.Render(s.Title))
		fmt.Println(metaStyle.Render(fmt.Sprintf("%s · %s · %d 則訊息", s.ID, s.LastUpdate.Format("2006-01-02 15:04"), len(s.Messages))))
		fmt.Println()

		for _, m := range s.Messages {
			if m.Role == "system" {
				continue
			}
			fmt.Println(roleStyle.Render(m.Role + ":"))
			if m.Role == "assistant" && renderer != nil {
				if out, err := renderer.Render(m.Content); err == nil {
					fmt.Println(strings.TrimSpace(out))
					continue
				}
			}
			fmt.Println(m.Content)
			fmt.Println()
		}
		return nil
	},
}

var historySearchCmd = &cobra.Command{
	Use:   "search <關鍵字>",
	Short: "全文搜尋過往對話",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := history.OpenIndex(cfg.IndexPath())
		if err != nil {
			return err
		}
		defer idx.Close()

		query := strings.Join(args, " ")
		hits, err := idx.Search(context.Background(), query, historyLimit)
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			fmt.Println("⚠️  沒有符合的紀錄")
			return nil
		}

		for _, h := range hits {
			fmt.Printf("%s %s\n", sessionIDStyle.Render(h.SessionID), metaStyle.Render("("+h.Role+")"))
			fmt.Printf("  %s\n", h.Snippet)
		}
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export <session-id> <輸出.pdf>",
	Short: "將 Session 匯出為 PDF",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := history.LoadSession(cfg.HistoryDir(), args[0])
		if err != nil {
			return err
		}
		if err := export.SessionPDF(args[1], s); err != nil {
			return err
		}
		fmt.Printf("✅ 已匯出 %s\n", args[1])
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "刪除所有對話紀錄與搜尋索引",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := history.ClearHistory(cfg.HistoryDir()); err != nil {
			return fmt.Errorf("清除紀錄失敗: %v", err)
		}

		if idx, err := history.OpenIndex(cfg.IndexPath()); err == nil {
			defer idx.Close()
			if err := idx.Clear(context.Background()); err != nil {
				fmt.Printf("⚠️  索引清除失敗: %v\n", err)
			}
		}

		fmt.Println("✅ 對話紀錄已清空")
		return nil
	},
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	list, err := history.ListSessions(cfg.HistoryDir())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("⚠️  還沒有任何對話紀錄")
		return nil
	}

	for _, s := range list {
		title := s.Title
		if title == "" {
			title = "(未命名)"
		}
		fmt.Printf("%s  %s\n", sessionIDStyle.Render(s.ID), title)
		fmt.Printf("  %s\n", metaStyle.Render(fmt.Sprintf("%d 則訊息 · %s", s.Messages, s.LastUpdate.Format("2006-01-02 15:04"))))
	}
	return nil
}

func init() {
	historySearchCmd.Flags().IntVar(&historyLimit, "limit", 20, "最多顯示幾筆結果")
	historyCmd.AddCommand(historyShowCmd, historySearchCmd, historyExportCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
