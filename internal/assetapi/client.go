// Package assetapi creates Decal assets through the Open Cloud assets endpoint.
//
// Each upload is a single multipart POST: a JSON "request" part describing the asset and a
// "fileContent" part holding the image. The endpoint answers with a long-running operation;
// when it has not finished yet, one status lookup is made and whatever it says is reported.
package assetapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path"
	"strings"
	"time"

	"decalup/internal/models"
	"decalup/pkg/utils"

	"github.com/rs/zerolog/log"
)

const (
	assetType    = "Decal"
	apiKeyHeader = "x-api-key"
	maxBodyLog   = 300
)

// Client uploads assets with an Open Cloud API key.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client rooted at the Open Cloud base URL.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

type creator struct {
	UserID string `json:"userId"`
}

type creationContext struct {
	Creator creator `json:"creator"`
}

type assetRequest struct {
	AssetType       string          `json:"assetType"`
	DisplayName     string          `json:"displayName"`
	Description     string          `json:"description"`
	CreationContext creationContext `json:"creationContext"`
}

// operation is the long-running operation returned by asset creation.
type operation struct {
	Path        string `json:"path"`
	OperationID string `json:"operationId"`
	Done        bool   `json:"done"`
	Response    *struct {
		AssetID string `json:"assetId"`
	} `json:"response,omitempty"`
}

func (o *operation) id() string {
	if o.OperationID != "" {
		return o.OperationID
	}
	if o.Path != "" {
		return path.Base(o.Path)
	}
	return ""
}

func (o *operation) assetID() string {
	if o.Response == nil {
		return ""
	}
	return o.Response.AssetID
}

// UploadAsset performs one upload attempt. It never returns an error: every failure is
// described in the result so the batch can carry on.
func (c *Client) UploadAsset(ctx context.Context, req models.AssetRequest) models.UploadResult {
	result := models.UploadResult{File: req.FileName, Name: req.Name}

	op, err := c.createAsset(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("file", req.FileName).Msg("Asset upload failed")
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.OperationID = op.id()
	result.AssetID = op.assetID()

	if result.AssetID == "" && !op.Done && result.OperationID != "" {
		status, err := c.getOperation(ctx, req.AccessKey, result.OperationID)
		if err != nil {
			log.Warn().Err(err).Str("operationId", result.OperationID).Msg("Operation status unavailable")
		} else {
			result.AssetID = status.assetID()
		}
	}

	log.Info().
		Str("file", req.FileName).
		Str("assetId", result.AssetID).
		Str("operationId", result.OperationID).
		Msg("Asset uploaded")
	return result
}

func (c *Client) createAsset(ctx context.Context, req models.AssetRequest) (*operation, error) {
	body, contentType, err := buildMultipart(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/assets/v1/assets", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set(apiKeyHeader, req.AccessKey)
	httpReq.Header.Set("Content-Type", contentType)

	return c.do(httpReq)
}

func (c *Client) getOperation(ctx context.Context, accessKey, operationID string) (*operation, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/assets/v1/operations/"+operationID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set(apiKeyHeader, accessKey)

	return c.do(httpReq)
}

func (c *Client) do(req *http.Request) (*operation, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("statusCode", resp.StatusCode).
		Dur("duration", duration).
		Msg("Open Cloud response")

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UploadError{StatusCode: resp.StatusCode, Body: utils.Truncate(strings.TrimSpace(string(body)), maxBodyLog)}
	}

	var op operation
	if err := json.Unmarshal(body, &op); err != nil {
		return nil, fmt.Errorf("parse response: status %d: %w (body: %s)", resp.StatusCode, err, utils.Truncate(string(body), maxBodyLog))
	}
	if op.id() == "" && op.assetID() == "" {
		return nil, fmt.Errorf("unexpected response: status %d: no operation or asset id (body: %s)", resp.StatusCode, utils.Truncate(string(body), maxBodyLog))
	}
	return &op, nil
}

func buildMultipart(req models.AssetRequest) (*bytes.Buffer, string, error) {
	meta, err := json.Marshal(assetRequest{
		AssetType:   assetType,
		DisplayName: req.Name,
		Description: req.Description,
		CreationContext: creationContext{
			Creator: creator{UserID: req.OwnerID},
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal asset request: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("request", string(meta)); err != nil {
		return nil, "", fmt.Errorf("failed to write multipart: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="fileContent"; filename=%q`, req.FileName))
	header.Set("Content-Type", req.ContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to write multipart: %w", err)
	}
	if _, err := part.Write(req.Image); err != nil {
		return nil, "", fmt.Errorf("failed to write multipart: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to write multipart: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

// ContentType maps an operator format choice to the MIME type declared for the file part.
func ContentType(format string) (string, error) {
	switch format {
	case "png", "image/png":
		return models.ContentTypePNG, nil
	case "jpeg", "jpg", "image/jpeg":
		return models.ContentTypeJPEG, nil
	default:
		return "", fmt.Errorf("unsupported content type %q (use png or jpeg)", format)
	}
}
