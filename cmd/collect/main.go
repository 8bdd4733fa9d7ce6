package main

import (
	"os"

	"github.com/LJTian/StockNewsHub/internal/app"
	"github.com/LJTian/StockNewsHub/internal/config"
)

// 依次执行国内、海外、CNBC 三个批次，批次之间间隔 PHASE_DELAY；任一批次失败时退出码为 1
func main() {
	os.Exit(app.Main("collect", config.PhaseKR, config.PhaseGlobal, config.PhaseCNBC))
}
