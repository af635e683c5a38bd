// Package source turns operator input into the ordered list of images a batch uploads.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// maxImageSize bounds a single image read from disk, a URL or a bucket.
const maxImageSize = 64 << 20

// Item is one image to upload. Load is called once, right before the upload.
type Item interface {
	// Name is the file name used for naming and reporting.
	Name() string
	// Source is the full origin: a path, a URL or an s3:// location.
	Source() string
	Load(ctx context.Context) ([]byte, error)
}

// BufferItem is an image already held in memory.
type BufferItem struct {
	FileName string
	Data     []byte
	Origin   string
}

func (b *BufferItem) Name() string { return b.FileName }

func (b *BufferItem) Source() string {
	if b.Origin != "" {
		return b.Origin
	}
	return b.FileName
}

func (b *BufferItem) Load(ctx context.Context) ([]byte, error) {
	return b.Data, nil
}

// FileItem is a local image file.
type FileItem struct {
	Path string
}

func (f *FileItem) Name() string   { return filepath.Base(f.Path) }
func (f *FileItem) Source() string { return f.Path }

func (f *FileItem) Load(ctx context.Context) ([]byte, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, &FetchError{Source: f.Path, Err: err}
	}
	defer file.Close()

	data, err := readLimited(file)
	if err != nil {
		return nil, &FetchError{Source: f.Path, Err: err}
	}
	return data, nil
}

// URLItem is an image fetched over HTTP when it is loaded.
type URLItem struct {
	URL        string
	HTTPClient *http.Client
}

// Name is the last path segment of the URL, or the host when the path is empty.
func (u *URLItem) Name() string {
	parsed, err := url.Parse(u.URL)
	if err != nil {
		return u.URL
	}
	base := path.Base(parsed.Path)
	if base == "" || base == "." || base == "/" {
		return parsed.Host
	}
	return base
}

func (u *URLItem) Source() string { return u.URL }

func (u *URLItem) Load(ctx context.Context) ([]byte, error) {
	client := u.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.URL, nil)
	if err != nil {
		return nil, &FetchError{Source: u.URL, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: u.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &FetchError{Source: u.URL, StatusCode: resp.StatusCode}
	}

	data, err := readLimited(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: u.URL, StatusCode: resp.StatusCode, Err: err}
	}
	return data, nil
}

// ObjectGetter downloads one object from a bucket.
type ObjectGetter interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

// ObjectItem is an image stored in an S3-compatible bucket.
type ObjectItem struct {
	Bucket string
	Key    string
	Getter ObjectGetter
}

func (o *ObjectItem) Name() string   { return path.Base(o.Key) }
func (o *ObjectItem) Source() string { return fmt.Sprintf("s3://%s/%s", o.Bucket, o.Key) }

func (o *ObjectItem) Load(ctx context.Context) ([]byte, error) {
	data, err := o.Getter.Download(ctx, o.Key)
	if err != nil {
		return nil, &FetchError{Source: o.Source(), Err: err}
	}
	return data, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("image larger than %d bytes", maxImageSize)
	}
	return data, nil
}

// ParseURLList splits one URL per line. Blank lines and lines starting with # are ignored.
func ParseURLList(text string) []string {
	var urls []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls
}
