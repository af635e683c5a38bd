package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DefaultAuthURL      = "https://auth.roblox.com"
	DefaultUsersURL     = "https://users.roblox.com"
	DefaultOpenCloudURL = "https://apis.roblox.com"
	DefaultLinkTemplate = "https://create.roblox.com/store/asset/{id}"
	DefaultHTTPTimeout  = 60 * time.Second
)

type Config struct {
	APIKey       string
	Cookie       string
	OwnerID      string
	AuthURL      string
	UsersURL     string
	OpenCloudURL string
	LinkTemplate string
	HTTPTimeout  time.Duration
	S3           S3Config
}

// S3Config holds the bucket used as an image source and as the report sink.
type S3Config struct {
	ApiURL     string
	AccessKey  string
	SecretKey  string
	BucketName string
	Region     string
}

// Enabled reports whether a bucket has been configured.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, using environment variables only")
	}

	config := &Config{
		APIKey:       getEnv("DECAL_API_KEY", ""),
		Cookie:       getEnv("ROBLOSECURITY", ""),
		OwnerID:      getEnv("OWNER_ID", ""),
		AuthURL:      getEnv("AUTH_API_URL", DefaultAuthURL),
		UsersURL:     getEnv("USERS_API_URL", DefaultUsersURL),
		OpenCloudURL: getEnv("OPEN_CLOUD_URL", DefaultOpenCloudURL),
		LinkTemplate: getEnv("ASSET_LINK_TEMPLATE", DefaultLinkTemplate),
		HTTPTimeout:  getSeconds("HTTP_TIMEOUT", DefaultHTTPTimeout),
		S3: S3Config{
			ApiURL:     getEnv("S3_API_URL", ""),
			AccessKey:  getEnv("S3_ACCESS_KEY", ""),
			SecretKey:  getEnv("S3_SECRET_KEY", ""),
			BucketName: getEnv("S3_BUCKET", ""),
			Region:     getEnv("S3_REGION", ""),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getSeconds parses a whole number of seconds; invalid or non-positive values fall back to the default.
func getSeconds(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Msg("Ignoring invalid duration")
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
