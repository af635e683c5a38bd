package models

import "time"

// ObjectInfo describes an image object found under an S3 prefix.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ImageListing is the result of listing a bucket prefix for upload candidates.
type ImageListing struct {
	BucketName     string       `json:"bucket_name"`
	Prefix         string       `json:"prefix"`
	Objects        []ObjectInfo `json:"objects"`
	TotalFiles     int          `json:"total_files"`
	TotalSizeBytes int64        `json:"total_size_bytes"`
	TotalSizeHuman string       `json:"total_size_human"`
	LastModified   time.Time    `json:"last_modified"`
}
