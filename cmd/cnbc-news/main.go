package main

import (
	"os"

	"github.com/LJTian/StockNewsHub/internal/app"
	"github.com/LJTian/StockNewsHub/internal/config"
)

func main() {
	os.Exit(app.Main("cnbc-news", config.PhaseCNBC))
}
