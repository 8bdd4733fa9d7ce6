package main

import (
	"os"

	"github.com/LJTian/StockNewsHub/internal/app"
	"github.com/LJTian/StockNewsHub/internal/config"
)

// 国内个股新闻：Naver + Google 韩文 RSS，逐个 subject 写入
func main() {
	os.Exit(app.Main("kr-news", config.PhaseKR))
}
