package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Chunking
	MaxTokens     int // Target max tokens per chunk.
	OverlapTokens int // Token overlap between consecutive token-based chunks.

	// Token estimation
	TiktokenEncoding string

	// Directory mode
	WorkerCount int

	// PDF
	PDFFallbackPdftotext bool
	PdftotextTimeout     time.Duration
}

func Load() Config {
	// A .env file is optional; real env vars win.
	_ = godotenv.Load()

	cfg := Config{
		MaxTokens:     envInt("MAX_TOKENS", 4000),
		OverlapTokens: envInt("OVERLAP_TOKENS", 200),

		TiktokenEncoding: envOr("TIKTOKEN_ENCODING", "cl100k_base"),

		WorkerCount: envInt("WORKER_COUNT", 4),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
		PdftotextTimeout:     envDuration("PDFTOTEXT_TIMEOUT", 120*time.Second),
	}

	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	if cfg.OverlapTokens < 0 {
		cfg.OverlapTokens = 200
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.PdftotextTimeout <= 0 {
		cfg.PdftotextTimeout = 120 * time.Second
	}

	return cfg
}

func (c Config) Validate() error {
	if c.OverlapTokens >= c.MaxTokens {
		return fmt.Errorf("overlap (%d) must be smaller than max tokens (%d)", c.OverlapTokens, c.MaxTokens)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("worker count must be positive, got %d", c.WorkerCount)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
