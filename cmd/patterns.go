package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ngroegli/askai-cli-sub001/internal/pattern"
)

var (
	patternNameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	patternDescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var patternsCmd = &cobra.Command{
	Use:   "patterns [名稱]",
	Short: "列出提示詞樣板；帶名稱時顯示完整內容",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.PatternDir()

		// 第一次使用時安裝內建樣板
		if n, err := pattern.EnsureDefaults(dir); err == nil && n > 0 {
			fmt.Println(patternDescStyle.Render(fmt.Sprintf("已安裝 %d 個內建 pattern 到 %s", n, dir)))
		}

		if len(args) == 1 {
			return showPattern(dir, args[0])
		}

		patterns, err := pattern.Load(dir)
		if err != nil {
			return err
		}
		if len(patterns) == 0 {
			fmt.Println("⚠️  沒有任何 pattern")
			return nil
		}
		for _, p := range patterns {
			fmt.Printf("%s  %s\n", patternNameStyle.Render(p.Name), patternDescStyle.Render(p.Description))
		}
		return nil
	},
}

func showPattern(dir, name string) error {
	p, err := pattern.Get(dir, name)
	if err != nil {
		return err
	}

	fmt.Println(patternNameStyle.Render(p.Name))
	if p.Description != "" {
		fmt.Println(patternDescStyle.Render(p.Description))
	}
	fmt.Println()
	fmt.Println(p.System)
	if p.Format != "" {
		fmt.Printf("\n格式提示: %s\n", p.Format)
	}
	for _, o := range p.Outputs {
		fmt.Printf("輸出: %s (%s)\n", o.File, o.Format)
	}
	return nil
}

var patternsShowCmd = &cobra.Command{
	Use:   "show <名稱>",
	Short: "顯示單一 pattern 的完整定義",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showPattern(cfg.PatternDir(), args[0])
	},
}

func init() {
	patternsCmd.AddCommand(patternsShowCmd)
	rootCmd.AddCommand(patternsCmd)
}
