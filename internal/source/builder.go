package source

import (
	"fmt"
	"net/http"

	"decalup/internal/models"
	"decalup/pkg/utils"

	"github.com/rs/zerolog/log"
)

// FromPaths expands directories and zip archives into items, keeping the order given.
// Archive entries are read eagerly; plain files are read when the batch reaches them.
func FromPaths(paths []string) ([]Item, error) {
	expanded, err := utils.ExpandPaths(paths)
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, p := range expanded {
		if !utils.IsArchive(p) {
			items = append(items, &FileItem{Path: p})
			continue
		}

		entries, info, err := utils.ReadArchive(p)
		if err != nil {
			return nil, err
		}
		if len(info.Skipped) > 0 {
			log.Info().Str("archive", p).Strs("skipped", info.Skipped).Msg("Skipped non-image archive entries")
		}
		log.Debug().
			Str("archive", p).
			Int("images", len(entries)).
			Str("size", utils.FormatBytes(info.OriginalSize)).
			Msg("Archive read")

		for i, entry := range entries {
			items = append(items, &BufferItem{
				FileName: entry.Name,
				Data:     entry.Data,
				Origin:   fmt.Sprintf("%s:%s", p, info.Entries[i]),
			})
		}
	}
	return items, nil
}

// FromURLs wraps each URL in an item fetched with the given client.
func FromURLs(httpClient *http.Client, urls []string) []Item {
	items := make([]Item, 0, len(urls))
	for _, u := range urls {
		items = append(items, &URLItem{URL: u, HTTPClient: httpClient})
	}
	return items
}

// FromObjects wraps listed bucket objects in items downloaded through getter.
func FromObjects(getter ObjectGetter, bucket string, objects []models.ObjectInfo) []Item {
	items := make([]Item, 0, len(objects))
	for _, obj := range objects {
		items = append(items, &ObjectItem{Bucket: bucket, Key: obj.Key, Getter: getter})
	}
	return items
}
