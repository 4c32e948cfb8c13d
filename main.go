package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/ngroegli/askai-cli-sub001/cmd"
)

func main() {
	// 載入 envfile 檔案（不存在是正常情況，存在但讀不到才提示）
	if err := godotenv.Load("envfile"); err != nil {
		if !os.IsNotExist(err) {
			fmt.Printf("⚠️  [Main] envfile 檔案存在但無法載入: %v\n", err)
		}
	}
	cmd.Execute()
}
