package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ngroegli/askai-cli-sub001/internal/spinner"
	"github.com/ngroegli/askai-cli-sub001/llms/openrouter"
)

var (
	modelsFilter string
	modelsFree   bool

	modelIDStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	freeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "列出 OpenRouter 上可用的模型",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := openrouter.New(cfg.BaseURL, cfg.APIKey)

		sp := spinner.New("查詢模型清單...")
		sp.Start()
		models, err := client.ListModels(context.Background(), modelsFilter)
		sp.Stop()
		if err != nil {
			return err
		}

		shown := 0
		for _, m := range models {
			if modelsFree && !m.IsFree() {
				continue
			}
			shown++

			tag := ""
			if m.IsFree() {
				tag = freeStyle.Render(" [free]")
			}
			fmt.Printf("%s%s\n", modelIDStyle.Render(m.ID), tag)
			if m.Name != "" || m.ContextLength > 0 {
				fmt.Printf("  %s\n", dimStyle.Render(fmt.Sprintf("%s (context: %d)", m.Name, m.ContextLength)))
			}
		}

		if shown == 0 {
			fmt.Println("⚠️  沒有符合條件的模型")
			return nil
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("共 %d 個模型", shown)))
		return nil
	},
}

func init() {
	modelsCmd.Flags().StringVar(&modelsFilter, "filter", "", "以子字串過濾模型 ID")
	modelsCmd.Flags().BoolVar(&modelsFree, "free", false, "只列出免費模型")
	rootCmd.AddCommand(modelsCmd)
}
