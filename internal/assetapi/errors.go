package assetapi

import "fmt"

// UploadError is a non-success response from the assets endpoint. The body is kept so
// quota errors can be told apart from malformed input.
type UploadError struct {
	StatusCode int
	Body       string
}

func (e *UploadError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upload failed: status %d", e.StatusCode)
	}
	return fmt.Sprintf("upload failed: status %d: %s", e.StatusCode, e.Body)
}
