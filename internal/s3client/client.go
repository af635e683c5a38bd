// Package s3client reads source images from an S3-compatible bucket and stores exported reports.
package s3client

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	appConfig "decalup/config"
	"decalup/internal/models"
	"decalup/pkg/utils"
)

type Client struct {
	s3Client *s3.Client
	config   appConfig.S3Config
}

func New(ctx context.Context, cfg appConfig.S3Config) (*Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("S3_BUCKET is not configured")
	}

	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.AccessKey,
				SecretAccessKey: cfg.SecretKey,
			},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Client *s3.Client
	if cfg.ApiURL != "" {
		s3Client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.ApiURL)
			o.UsePathStyle = true
		})
	} else {
		s3Client = s3.NewFromConfig(awsConfig)
	}

	return &Client{
		s3Client: s3Client,
		config:   cfg,
	}, nil
}

// Bucket is the configured bucket name.
func (c *Client) Bucket() string {
	return c.config.BucketName
}

// ListImages returns the image objects under prefix in key order.
func (c *Client) ListImages(ctx context.Context, prefix string) ([]models.ObjectInfo, error) {
	paginator := s3.NewListObjectsV2Paginator(c.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.config.BucketName),
		Prefix: aws.String(normalizePrefix(prefix)),
	})

	var objects []models.ObjectInfo
	var skipped int
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") || !utils.IsImageFile(key) {
				skipped++
				continue
			}
			objects = append(objects, models.ObjectInfo{
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	log.Debug().
		Str("bucket", c.config.BucketName).
		Str("prefix", prefix).
		Int("images", len(objects)).
		Int("skipped", skipped).
		Msg("Listed bucket images")

	return objects, nil
}

// Download reads one object fully into memory.
func (c *Client) Download(ctx context.Context, key string) ([]byte, error) {
	downloader := manager.NewDownloader(c.s3Client)
	buf := manager.NewWriteAtBuffer(nil)

	_, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(c.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

// UploadReport stores body as filename under the destination prefix and returns the key.
func (c *Client) UploadReport(ctx context.Context, destination, filename string, body []byte) (string, error) {
	remotePath := buildRemotePath(destination, filename)
	contentType := detectContentType(remotePath)

	uploader := manager.NewUploader(c.s3Client)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.config.BucketName),
		Key:         aws.String(remotePath),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	log.Info().
		Str("bucket", c.config.BucketName).
		Str("key", remotePath).
		Str("size", utils.FormatBytes(int64(len(body)))).
		Msg("Report uploaded")

	return remotePath, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimPrefix(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

func buildRemotePath(destinationPath, filename string) string {
	filename = strings.TrimPrefix(filename, "/")
	if destinationPath == "" {
		return filename
	}
	return normalizePrefix(destinationPath) + filename
}

func detectContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	contentTypes := map[string]string{
		".csv":  "text/csv",
		".json": "application/json",
		".txt":  "text/plain",
		".jpg":  models.ContentTypeJPEG,
		".jpeg": models.ContentTypeJPEG,
		".png":  models.ContentTypePNG,
	}

	if contentType, exists := contentTypes[ext]; exists {
		return contentType
	}

	return "application/octet-stream"
}
