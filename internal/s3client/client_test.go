package s3client

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"decalup/config"
	"decalup/pkg/utils"
)

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), config.S3Config{}); err == nil {
		t.Error("New() error = nil, want error for missing bucket")
	}
}

func TestNormalizePrefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", ""},
		{"decals", "decals/"},
		{"/decals/", "decals/"},
		{"a/b", "a/b/"},
	}

	for _, tt := range tests {
		if got := normalizePrefix(tt.prefix); got != tt.want {
			t.Errorf("normalizePrefix(%q) = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestBuildRemotePath(t *testing.T) {
	tests := []struct {
		name            string
		destinationPath string
		filename        string
		want            string
	}{
		{"no destination", "", "report.csv", "report.csv"},
		{"leading slash key", "", "/reports/report.csv", "reports/report.csv"},
		{"destination without slash", "reports", "report.csv", "reports/report.csv"},
		{"destination with slashes", "/reports/", "report.csv", "reports/report.csv"},
		{"nested destination", "runs/2024/", "decal_upload_20240309_080706_run1.csv", "runs/2024/decal_upload_20240309_080706_run1.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildRemotePath(tt.destinationPath, tt.filename); got != tt.want {
				t.Errorf("buildRemotePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"roblox_upload_results.csv", "text/csv"},
		{"report.JSON", "application/json"},
		{"photo.jpg", "image/jpeg"},
		{"photo.png", "image/png"},
		{"unknown.bin", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := detectContentType(tt.filename); got != tt.want {
			t.Errorf("detectContentType(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

// Integration tests below need a real bucket and are skipped by default.
// Set S3_INTEGRATION_TEST=true and the TEST_* variables to run them.

func integrationClient(t *testing.T) *Client {
	t.Helper()
	if os.Getenv("S3_INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test; set S3_INTEGRATION_TEST=true to run")
	}

	client, err := New(context.Background(), config.S3Config{
		BucketName: os.Getenv("TEST_BUCKET_NAME"),
		Region:     os.Getenv("TEST_REGION"),
		ApiURL:     os.Getenv("TEST_API_URL"),
		AccessKey:  os.Getenv("TEST_ACCESS_KEY"),
		SecretKey:  os.Getenv("TEST_SECRET_KEY"),
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func TestReportRoundTrip(t *testing.T) {
	client := integrationClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	name := utils.ReportFileName("integration", time.Now())
	body := []byte("file,success,asset_id,error,operation_id,link\n")

	stored, err := client.UploadReport(ctx, "decalup-test/", name, body)
	if err != nil {
		t.Fatalf("UploadReport() error = %v", err)
	}

	data, err := client.Download(ctx, stored)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if string(data) != string(body) {
		t.Errorf("Download() = %q, want %q", data, body)
	}
}

func TestListImages(t *testing.T) {
	client := integrationClient(t)

	objects, err := client.ListImages(context.Background(), os.Getenv("TEST_IMAGE_PREFIX"))
	if err != nil {
		t.Fatalf("ListImages() error = %v", err)
	}
	for _, obj := range objects {
		if !utils.IsImageFile(obj.Key) || strings.HasSuffix(obj.Key, "/") {
			t.Errorf("ListImages() returned non-image key %q", obj.Key)
		}
	}
}
