package batch

import "errors"

// Pre-flight failures. Nothing has been sent when Run returns one of these.
var (
	ErrNoAccessKey = errors.New("no access key: set DECAL_API_KEY, pass --api-key or use --derive-key")
	ErrNoItems     = errors.New("no images to upload")
	ErrNoOwnerID   = errors.New("no owner id: set OWNER_ID, pass --owner-id or configure ROBLOSECURITY")
)
