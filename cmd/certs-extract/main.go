// certs-extract runs normalization and field extraction over a single local
// file and prints the result, without touching the database. Useful for
// checking recognition quality on a new certificate layout.
package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/campuscerts/cert-tracker/internal/common"
	"github.com/campuscerts/cert-tracker/internal/normalize"
	"github.com/campuscerts/cert-tracker/internal/recognize/glm"
)

func main() {
	logger := common.NewLogger()

	_ = godotenv.Load()
	cfg := common.LoadConfig()

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "certs-extract <certificate-file>")
		os.Exit(2)
	}
	path := os.Args[1]

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	ctx, cancel := common.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	normalizer := normalize.New(normalize.Config{
		PDFToPPM: cfg.Upload.PDFToPPM,
		DPI:      cfg.Upload.RenderDPI,
	}, logger)

	start := time.Now()
	img, err := normalizer.Normalize(ctx, raw, filepath.Ext(path))
	if err != nil {
		logger.Error("normalize failed", "path", path, "error", err)
		os.Exit(1)
	}
	logger.Info("normalize OK",
		"width", img.Width, "height", img.Height,
		"png_bytes", len(img.PNG),
	)

	if cfg.Recognition.APIKey == "" {
		logger.Error("GLM_API_KEY required")
		os.Exit(1)
	}
	client := glm.NewClient(glm.Config{
		APIKey:     cfg.Recognition.APIKey,
		BaseURL:    cfg.Recognition.BaseURL,
		Model:      cfg.Recognition.Model,
		Timeout:    cfg.Recognition.Timeout,
		MaxRetries: cfg.Recognition.MaxRetries,
	}, logger)

	res, err := client.Extract(ctx, img)
	if err != nil {
		logger.Error("extraction failed", "error", err,
			"duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(res, "", "  ")
	logger.Info("extraction OK",
		"status", string(res.Status),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	os.Stdout.Write(append(out, '\n'))
}
