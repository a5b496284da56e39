package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config アプリケーション設定
type Config struct {
	Server  ServerConfig
	Barikoi BarikoiConfig
	Review  ReviewConfig
	Markers MarkerConfig
	Export  ExportConfig
}

// ServerConfig HTTPサーバー設定
type ServerConfig struct {
	Port           string
	MaxUploadBytes int64
}

// BarikoiConfig 検出・逆ジオコーディングAPI設定
type BarikoiConfig struct {
	APIKey            string
	ExtractURL        string
	ReverseGeocodeURL string
	DetectTimeout     time.Duration
	GeocodeTimeout    time.Duration
	MaxImageDimension int
	JPEGQuality       int
}

// ReviewConfig POIレビュー設定
type ReviewConfig struct {
	RevealInterval time.Duration
}

// MarkerConfig CSVマーカー取り込み設定
type MarkerConfig struct {
	ChunkSize  int
	ChunkDelay time.Duration
}

// ExportConfig エクスポート先設定
type ExportConfig struct {
	Sink                string
	SupabaseURL         string
	SupabaseAnonKey     string
	SupabaseDBPassword  string
	DatabaseURL         string
	FirestoreProjectID  string
	FirestoreCredential string
}

// Load は .env を読み込み（なければ警告のみ）、環境変数から設定を作る
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			MaxUploadBytes: int64(getInt("MAX_UPLOAD_MB", 20)) << 20,
		},
		Barikoi: BarikoiConfig{
			APIKey:            os.Getenv("BARIKOI_API_KEY"),
			ExtractURL:        getEnv("BARIKOI_EXTRACT_URL", "https://usage.bmapsbd.com/extract"),
			ReverseGeocodeURL: getEnv("BARIKOI_REVERSE_URL", "https://barikoi.xyz/v2/api/search/reverse/geocode"),
			DetectTimeout:     time.Duration(getInt("DETECT_TIMEOUT_SEC", 120)) * time.Second,
			GeocodeTimeout:    time.Duration(getInt("GEOCODE_TIMEOUT_SEC", 10)) * time.Second,
			MaxImageDimension: getInt("MAX_IMAGE_DIMENSION", 1280),
			JPEGQuality:       getInt("JPEG_QUALITY", 80),
		},
		Review: ReviewConfig{
			RevealInterval: time.Duration(getInt("REVEAL_INTERVAL_MS", 300)) * time.Millisecond,
		},
		Markers: MarkerConfig{
			ChunkSize:  getInt("CSV_CHUNK_SIZE", 50),
			ChunkDelay: time.Duration(getInt("CSV_CHUNK_DELAY_MS", 100)) * time.Millisecond,
		},
		Export: ExportConfig{
			Sink:                strings.ToLower(getEnv("EXPORT_SINK", "none")),
			SupabaseURL:         os.Getenv("SUPABASE_URL"),
			SupabaseAnonKey:     os.Getenv("SUPABASE_ANON_KEY"),
			SupabaseDBPassword:  os.Getenv("SUPABASE_DB_PASSWORD"),
			DatabaseURL:         os.Getenv("DATABASE_URL"),
			FirestoreProjectID:  os.Getenv("FIRESTORE_PROJECT_ID"),
			FirestoreCredential: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// getInt は整数の環境変数を読む（不正な値や0以下は既定値）
func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("⚠️ %s の値が不正です (%q)、既定値 %d を使用します", key, raw, fallback)
		return fallback
	}
	return v
}
