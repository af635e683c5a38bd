package models

import "time"

const (
	ContentTypePNG  = "image/png"
	ContentTypeJPEG = "image/jpeg"
)

// AssetRequest is everything needed to create one Decal asset.
type AssetRequest struct {
	AccessKey   string
	Image       []byte
	FileName    string
	Name        string
	Description string
	OwnerID     string
	ContentType string
}

// UploadResult is the outcome of one batch item.
type UploadResult struct {
	File        string `json:"file"`
	Name        string `json:"name,omitempty"`
	Success     bool   `json:"success"`
	AssetID     string `json:"asset_id,omitempty"`
	OperationID string `json:"operation_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

type BatchReport struct {
	RunID          string         `json:"run_id"`
	Results        []UploadResult `json:"results"`
	Warnings       []string       `json:"warnings,omitempty"`
	SuccessCount   int            `json:"success_count"`
	Total          int            `json:"total"`
	TotalSizeBytes int64          `json:"total_size_bytes"`
	TotalSizeHuman string         `json:"total_size_human"`
	StartedAt      time.Time      `json:"started_at"`
	Duration       string         `json:"duration"`
	ReportPath     string         `json:"report_path,omitempty"`
	ReportS3Key    string         `json:"report_s3_key,omitempty"`
}

type ArchiveInfo struct {
	ArchivePath  string   `json:"archive_path"`
	Entries      []string `json:"entries"`
	Skipped      []string `json:"skipped,omitempty"`
	OriginalSize int64    `json:"original_size"`
}
