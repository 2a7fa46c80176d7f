package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	JWTSecret string
	TokenTTL  time.Duration

	BlobDriver   string // fs|b2|pinata
	BlobBasePath string // for fs

	B2KeyID  string
	B2AppKey string
	B2Bucket string

	PinataJWT     string
	PinataGateway string

	GeminiAPIKey string
	GeminiModel  string

	CORSOrigins []string
	MaxUploadMB int64
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			log.Printf("config: load %s: %v", f, err)
		}
	}
	return FromEnv()
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":5000"
	}
	pub := strings.TrimSuffix(os.Getenv("PUBLIC_URL"), "/")
	if pub == "" {
		pub = "http://localhost" + addr
	}
	return Config{
		HTTPAddr:      addr,
		PublicURL:     pub,
		DBDriver:      envOr("DB_DRIVER", "sqlite"),
		DBDSN:         envOr("DB_DSN", ""),
		JWTSecret:     envOr("JWT_SECRET", "supersecret-dev-key"),
		TokenTTL:      envDuration("TOKEN_TTL", time.Hour),
		BlobDriver:    envOr("BLOB_DRIVER", "fs"),
		BlobBasePath:  envOr("BLOB_BASE_PATH", "./data"),
		B2KeyID:       os.Getenv("B2_KEY_ID"),
		B2AppKey:      os.Getenv("B2_APP_KEY"),
		B2Bucket:      os.Getenv("B2_BUCKET"),
		PinataJWT:     os.Getenv("PINATA_JWT"),
		PinataGateway: envOr("PINATA_GATEWAY", "https://gateway.pinata.cloud"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   envOr("GEMINI_MODEL", "gemini-1.5-flash-latest"),
		CORSOrigins:   csvOr("CORS_ORIGINS", "http://localhost:3000"),
		MaxUploadMB:   envInt("MAX_UPLOAD_MB", 10),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envInt(k string, def int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
