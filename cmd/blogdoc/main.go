// Основной пакет сервиса постов BlogDoc. Отвечает за чтение конфигурации, открытие хранилища компактных документов и запуск HTTP сервера.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aisa-it/blogdoc/internal/blogdoc"
	blobstorage "github.com/aisa-it/blogdoc/internal/blogdoc/blob-storage"
	"github.com/aisa-it/blogdoc/internal/blogdoc/business"
	"github.com/aisa-it/blogdoc/internal/blogdoc/config"
	"github.com/aisa-it/blogdoc/internal/blogdoc/export"
	"github.com/aisa-it/blogdoc/internal/blogdoc/gormlogger"
)

var version string = "DEV"

// Пример запуска: go run main.go --trace
func main() {
	paramQueries := flag.Bool("paramQueries", true, "Mask queries params in log")
	trace := flag.Bool("trace", false, "Verbose logs and sql trace")
	flag.Parse()

	PrintBanner()

	if *trace {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Set prod log format
	if version != "DEV" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
	}

	cfg := config.ReadConfig()

	slog.Info("BlogDoc start.", "storage", cfg.StorageBackend)

	storage, err := blobstorage.Open(cfg, gormlogger.NewGormLogger(slog.Default(), time.Second*2, *paramQueries))
	if err != nil {
		slog.Error("Fail init blob storage", "backend", cfg.StorageBackend, "err", err)
		os.Exit(1)
	}
	defer storage.Close()

	posts := business.NewPosts(storage, cfg.MaxBlobSize, export.PDFOptions{
		BaseURL:      cfg.WebURL,
		FontPath:     cfg.PDFFontPath,
		BoldFontPath: cfg.PDFBoldFontPath,
		HTTPClient:   export.NewImageClient(),
	})

	blogdoc.Server(cfg, posts, version)
}

// PrintBanner выводит название сервиса и версию при запуске.
func PrintBanner() {
	banner := `
 ____  _             ____
| __ )| | ___   __ _|  _ \  ___   ___
|  _ \| |/ _ \ / _  | | | |/ _ \ / __|
| |_) | | (_) | (_| | |_| | (_) | (__
|____/|_|\___/ \__, |____/ \___/ \___| %s
               |___/
Compact storage for editor posts
----------------------------------------------------
`
	colorReset := "\033[0m"
	colorYellow := "\033[33m"

	formattedVersion := version
	if version == "DEV" {
		formattedVersion = colorYellow + version + colorReset
	}

	fmt.Printf(banner, formattedVersion)
}
