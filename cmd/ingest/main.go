// Package main 是离线简历导入命令行工具的入口点。
package main

import (
	"os"
)

func main() {
	os.Exit(exitCode(rootCmd.Execute()))
}

// exitCode 命令出错 (包括有文件导入失败) 时返回 1。
func exitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}
