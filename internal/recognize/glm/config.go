package glm

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Config for the GLM-4V client.
type Config struct {
	APIKey     string        // if empty, falls back to env GLM_API_KEY
	BaseURL    string        // default https://open.bigmodel.cn/api/paas/v4
	Model      string        // e.g. "glm-4v-plus-0111"
	Timeout    time.Duration // per-attempt http timeout
	MaxRetries int           // retries after the first attempt, transient faults only
}

// Client calls the GLM vision chat/completions endpoint.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient builds a Client with defaults filled in.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GLM_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://open.bigmodel.cn/api/paas/v4"
	}
	if cfg.Model == "" {
		cfg.Model = "glm-4v-plus-0111"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}
