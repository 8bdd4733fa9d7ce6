package main

import (
	"os"

	"github.com/LJTian/StockNewsHub/internal/app"
	"github.com/LJTian/StockNewsHub/internal/config"
)

// 海外个股新闻：Yahoo + Google 英文 RSS + NewsAPI，每 50 个 subject 一批写入
func main() {
	os.Exit(app.Main("global-news", config.PhaseGlobal))
}
