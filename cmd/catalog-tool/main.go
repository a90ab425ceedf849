// 运维工具：目录校验、导出与导入数据库
package main

import (
	"os"

	"github.com/joho/godotenv"

	"county-map/internal/logger"
)

func main() {
	_ = godotenv.Load(".env")
	logger.Setup()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
