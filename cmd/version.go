package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version 由建置時的 ldflags 覆寫
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "顯示版本資訊",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("askai %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
