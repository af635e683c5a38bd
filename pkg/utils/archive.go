package utils

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"decalup/internal/models"
)

// maxArchiveEntrySize bounds a single decompressed image read from a zip.
const maxArchiveEntrySize = 64 << 20

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// ArchiveEntry is one image read out of a zip archive.
type ArchiveEntry struct {
	Name string
	Data []byte
}

// IsImageFile reports whether the name has an extension the uploader accepts.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsArchive reports whether the path looks like a zip archive.
func IsArchive(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zip")
}

// ReadArchive loads every image entry of a zip archive into memory, in archive order.
// Directories, non-image files and macOS resource forks are skipped.
func ReadArchive(archivePath string) ([]ArchiveEntry, *models.ArchiveInfo, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	info := &models.ArchiveInfo{ArchivePath: archivePath}
	var entries []ArchiveEntry

	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		if strings.HasPrefix(file.Name, "__MACOSX/") || !IsImageFile(file.Name) {
			info.Skipped = append(info.Skipped, file.Name)
			continue
		}
		if file.UncompressedSize64 > maxArchiveEntrySize {
			return nil, nil, fmt.Errorf("archive entry %s exceeds %s", file.Name, FormatBytes(maxArchiveEntrySize))
		}

		data, err := readArchiveFile(file)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s from archive: %w", file.Name, err)
		}

		entries = append(entries, ArchiveEntry{Name: filepath.Base(file.Name), Data: data})
		info.Entries = append(info.Entries, file.Name)
		info.OriginalSize += int64(len(data))
	}

	return entries, info, nil
}

func readArchiveFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxArchiveEntrySize))
}

// ExpandPaths replaces each directory with the image files beneath it, in lexical order.
// Files and paths that cannot be accessed are kept as given so they fail per item later.
func ExpandPaths(paths []string) ([]string, error) {
	var expanded []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			expanded = append(expanded, path)
			continue
		}

		err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fi.IsDir() && IsImageFile(p) {
				expanded = append(expanded, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", path, err)
		}
	}
	return expanded, nil
}

// ReportFileName names a report copied to an S3 folder.
func ReportFileName(runID string, now time.Time) string {
	return fmt.Sprintf("decal_upload_%s_%s.csv", now.Format("20060102_150405"), runID)
}
