package config

import (
	"os"
	"testing"
	"time"
)

var configKeys = []string{
	"DECAL_API_KEY",
	"ROBLOSECURITY",
	"OWNER_ID",
	"AUTH_API_URL",
	"USERS_API_URL",
	"OPEN_CLOUD_URL",
	"ASSET_LINK_TEMPLATE",
	"HTTP_TIMEOUT",
	"S3_API_URL",
	"S3_ACCESS_KEY",
	"S3_SECRET_KEY",
	"S3_BUCKET",
	"S3_REGION",
}

func restoreEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "test_value")
	defer os.Unsetenv("TEST_VAR")

	result := getEnv("TEST_VAR", "default_value")
	if result != "test_value" {
		t.Errorf("getEnv() = %s, want %s", result, "test_value")
	}

	result = getEnv("NON_EXISTENT_VAR", "default_value")
	if result != "default_value" {
		t.Errorf("getEnv() = %s, want %s", result, "default_value")
	}

	os.Setenv("EMPTY_VAR", "")
	defer os.Unsetenv("EMPTY_VAR")

	result = getEnv("EMPTY_VAR", "default_value")
	if result != "default_value" {
		t.Errorf("getEnv() = %s, want %s", result, "default_value")
	}
}

func TestGetSeconds(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{"Unset", "", time.Minute},
		{"Valid", "15", 15 * time.Second},
		{"Zero", "0", time.Minute},
		{"Negative", "-3", time.Minute},
		{"Garbage", "soon", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_SECONDS", tt.value)
			result := getSeconds("TEST_SECONDS", time.Minute)
			if result != tt.expected {
				t.Errorf("getSeconds(%q) = %s, want %s", tt.value, result, tt.expected)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	restoreEnv(t)

	testVars := map[string]string{
		"DECAL_API_KEY":  "test-api-key",
		"ROBLOSECURITY":  "test-cookie",
		"OWNER_ID":       "4242",
		"OPEN_CLOUD_URL": "https://apis.example.com",
		"HTTP_TIMEOUT":   "5",
		"S3_API_URL":     "https://test-api.example.com",
		"S3_ACCESS_KEY":  "test-access-key",
		"S3_SECRET_KEY":  "test-secret-key",
		"S3_BUCKET":      "test-bucket",
		"S3_REGION":      "test-region",
	}

	for key, value := range testVars {
		t.Setenv(key, value)
	}

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.APIKey != testVars["DECAL_API_KEY"] {
		t.Errorf("config.APIKey = %s, want %s", config.APIKey, testVars["DECAL_API_KEY"])
	}

	if config.Cookie != testVars["ROBLOSECURITY"] {
		t.Errorf("config.Cookie = %s, want %s", config.Cookie, testVars["ROBLOSECURITY"])
	}

	if config.OwnerID != testVars["OWNER_ID"] {
		t.Errorf("config.OwnerID = %s, want %s", config.OwnerID, testVars["OWNER_ID"])
	}

	if config.OpenCloudURL != testVars["OPEN_CLOUD_URL"] {
		t.Errorf("config.OpenCloudURL = %s, want %s", config.OpenCloudURL, testVars["OPEN_CLOUD_URL"])
	}

	if config.HTTPTimeout != 5*time.Second {
		t.Errorf("config.HTTPTimeout = %s, want %s", config.HTTPTimeout, 5*time.Second)
	}

	if config.S3.BucketName != testVars["S3_BUCKET"] {
		t.Errorf("config.S3.BucketName = %s, want %s", config.S3.BucketName, testVars["S3_BUCKET"])
	}

	if config.S3.Region != testVars["S3_REGION"] {
		t.Errorf("config.S3.Region = %s, want %s", config.S3.Region, testVars["S3_REGION"])
	}

	if !config.S3.Enabled() {
		t.Errorf("config.S3.Enabled() = false, want true")
	}
}

func TestLoadDefaults(t *testing.T) {
	restoreEnv(t)

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.APIKey != "" {
		t.Errorf("config.APIKey = %s, want %s", config.APIKey, "")
	}

	if config.AuthURL != DefaultAuthURL {
		t.Errorf("config.AuthURL = %s, want %s", config.AuthURL, DefaultAuthURL)
	}

	if config.UsersURL != DefaultUsersURL {
		t.Errorf("config.UsersURL = %s, want %s", config.UsersURL, DefaultUsersURL)
	}

	if config.OpenCloudURL != DefaultOpenCloudURL {
		t.Errorf("config.OpenCloudURL = %s, want %s", config.OpenCloudURL, DefaultOpenCloudURL)
	}

	if config.LinkTemplate != DefaultLinkTemplate {
		t.Errorf("config.LinkTemplate = %s, want %s", config.LinkTemplate, DefaultLinkTemplate)
	}

	if config.HTTPTimeout != DefaultHTTPTimeout {
		t.Errorf("config.HTTPTimeout = %s, want %s", config.HTTPTimeout, DefaultHTTPTimeout)
	}

	if config.S3.Enabled() {
		t.Errorf("config.S3.Enabled() = true, want false")
	}
}
