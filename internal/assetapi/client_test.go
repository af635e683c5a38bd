package assetapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"decalup/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() models.AssetRequest {
	return models.AssetRequest{
		AccessKey:   "key-123",
		Image:       []byte("\x89PNG fake"),
		FileName:    "photo.png",
		Name:        "photo",
		Description: "uploaded in bulk",
		OwnerID:     "4242",
		ContentType: models.ContentTypePNG,
	}
}

func TestUploadAssetSendsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/assets/v1/assets", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("x-api-key"))

		reader, err := r.MultipartReader()
		if !assert.NoError(t, err) {
			return
		}

		part, err := reader.NextPart()
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, "request", part.FormName())
		var meta assetRequest
		assert.NoError(t, json.NewDecoder(part).Decode(&meta))
		assert.Equal(t, "Decal", meta.AssetType)
		assert.Equal(t, "photo", meta.DisplayName)
		assert.Equal(t, "uploaded in bulk", meta.Description)
		assert.Equal(t, "4242", meta.CreationContext.Creator.UserID)

		part, err = reader.NextPart()
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, "fileContent", part.FormName())
		assert.Equal(t, "photo.png", part.FileName())
		assert.Equal(t, "image/png", part.Header.Get("Content-Type"))
		data, _ := io.ReadAll(part)
		assert.Equal(t, "\x89PNG fake", string(data))

		w.Write([]byte(`{"path":"operations/op-1","operationId":"op-1","done":true,"response":{"assetId":"987"}}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL)
	result := client.UploadAsset(context.Background(), testRequest())

	assert.True(t, result.Success)
	assert.Equal(t, "987", result.AssetID)
	assert.Equal(t, "op-1", result.OperationID)
	assert.Equal(t, "photo.png", result.File)
	assert.Equal(t, "photo", result.Name)
	assert.Empty(t, result.Error)
}

func TestUploadAssetLooksUpPendingOperationOnce(t *testing.T) {
	var statusCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/assets/v1/assets":
			w.Write([]byte(`{"path":"operations/op-7","done":false}`))
		case "/assets/v1/operations/op-7":
			statusCalls++
			assert.Equal(t, "key-123", r.Header.Get("x-api-key"))
			w.Write([]byte(`{"path":"operations/op-7","done":true,"response":{"assetId":"555"}}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	result := NewClient(server.Client(), server.URL+"/").UploadAsset(context.Background(), testRequest())

	assert.True(t, result.Success)
	assert.Equal(t, "op-7", result.OperationID)
	assert.Equal(t, "555", result.AssetID)
	assert.Equal(t, 1, statusCalls)
}

func TestUploadAssetPendingStatusStillProcessing(t *testing.T) {
	var statusCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/assets/v1/operations/") {
			statusCalls++
			w.Write([]byte(`{"path":"operations/op-8","done":false}`))
			return
		}
		w.Write([]byte(`{"operationId":"op-8","done":false}`))
	}))
	defer server.Close()

	result := NewClient(server.Client(), server.URL).UploadAsset(context.Background(), testRequest())

	assert.True(t, result.Success)
	assert.Equal(t, "op-8", result.OperationID)
	assert.Empty(t, result.AssetID)
	assert.Equal(t, 1, statusCalls)
}

func TestUploadAssetFailures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantError []string
	}{
		{"quota exceeded", http.StatusTooManyRequests, `{"message":"quota exceeded"}`, []string{"429", "quota exceeded"}},
		{"bad input", http.StatusBadRequest, `{"message":"invalid image"}`, []string{"400", "invalid image"}},
		{"malformed body", http.StatusOK, `<html>`, []string{"parse response", "status 200", "<html>"}},
		{"malformed accepted body", http.StatusAccepted, `not json`, []string{"parse response", "status 202", "not json"}},
		{"empty operation", http.StatusOK, `{}`, []string{"unexpected response", "status 200", "{}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			result := NewClient(server.Client(), server.URL).UploadAsset(context.Background(), testRequest())

			assert.False(t, result.Success)
			assert.Empty(t, result.AssetID)
			assert.Equal(t, "photo.png", result.File)
			for _, want := range tt.wantError {
				assert.Contains(t, result.Error, want)
			}
		})
	}
}

func TestUploadAssetTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	result := NewClient(http.DefaultClient, url).UploadAsset(context.Background(), testRequest())

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "request failed")
}

func TestUploadErrorMessage(t *testing.T) {
	assert.Equal(t, "upload failed: status 500", (&UploadError{StatusCode: 500}).Error())
	assert.Equal(t, "upload failed: status 403: denied", (&UploadError{StatusCode: 403, Body: "denied"}).Error())
}

func TestContentType(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"png", models.ContentTypePNG, false},
		{"image/png", models.ContentTypePNG, false},
		{"jpeg", models.ContentTypeJPEG, false},
		{"jpg", models.ContentTypeJPEG, false},
		{"gif", "", true},
	}

	for _, tt := range tests {
		got, err := ContentType(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
