package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the process needs, read once at startup.
type Config struct {
	// MySQL DSN, e.g. user:pass@tcp(localhost:3306)/gritsee?parseTime=true
	DatabaseDSN string

	// Directory holding the ONNX model files.
	ModelDir string

	// Vision settings.
	UseCUDA       bool
	LocalizerConf float64 // minimum detection confidence
	CropMargin    int     // pixels added around the detected box

	// Scoring thresholds. PassThreshold decides the stored verdict;
	// RankingThreshold splits best/worst rankings.
	PassThreshold    int
	RankingThreshold int

	// Batch processing.
	FetchConnectTimeout time.Duration
	FetchReadTimeout    time.Duration
	BatchWorkers        int

	// Whether trend series include zero-valued buckets for empty periods.
	TrendIncludeEmpty bool

	// Optional Telegram batch notifications.
	TelegramToken  string
	TelegramChatID int64
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	// Load .env if present (ignore the error when the file is missing).
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseDSN:         os.Getenv("DATABASE_DSN"),
		ModelDir:            stringFromEnv("MODEL_DIR", "models"),
		UseCUDA:             boolFromEnv("VISION_CUDA", false),
		LocalizerConf:       floatFromEnv("LOCALIZER_CONFIDENCE", 0.5),
		CropMargin:          intFromEnv("CROP_MARGIN", 10),
		PassThreshold:       intFromEnv("PASS_THRESHOLD", 75),
		RankingThreshold:    intFromEnv("RANKING_THRESHOLD", 80),
		FetchConnectTimeout: durationFromEnv("FETCH_CONNECT_TIMEOUT", 5*time.Second),
		FetchReadTimeout:    durationFromEnv("FETCH_READ_TIMEOUT", 10*time.Second),
		BatchWorkers:        intFromEnv("BATCH_WORKERS", 2),
		TrendIncludeEmpty:   boolFromEnv("TREND_INCLUDE_EMPTY", true),
		TelegramToken:       os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID:      int64FromEnv("TELEGRAM_CHAT_ID", 0),
	}

	return cfg, nil
}

func stringFromEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func int64FromEnv(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func floatFromEnv(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func boolFromEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durationFromEnv(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
