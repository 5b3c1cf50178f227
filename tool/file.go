package tool

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/moyoez/claimdesk/types"
)

// LoadMediaFile reads a local file into a MediaFile. The MIME type is sniffed
// from the content and falls back to the extension when sniffing is
// inconclusive.
func LoadMediaFile(filePath string) (types.MediaFile, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return types.MediaFile{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return types.MediaFile{}, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return types.MediaFile{}, fmt.Errorf("failed to read file: %w", err)
	}
	DefaultLogger.Debugf("Loaded %s (%s)", filePath, FormatFileSize(info.Size()))
	return types.MediaFile{
		Name:    filepath.Base(filePath),
		Size:    int64(len(data)),
		Type:    DetectMediaType(filepath.Base(filePath), data),
		Content: data,
	}, nil
}

// LoadMediaFiles loads a comma separated list of paths, skipping blanks.
func LoadMediaFiles(list string) ([]types.MediaFile, error) {
	var files []types.MediaFile
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := LoadMediaFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// ReadMediaFile builds a MediaFile from an uploaded part. declaredType is the
// part's Content-Type; it is trusted when set, the way a browser trusts
// File.type, and sniffed otherwise.
func ReadMediaFile(name, declaredType string, r io.Reader) (types.MediaFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return types.MediaFile{}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	t := strings.ToLower(strings.TrimSpace(declaredType))
	if i := strings.Index(t, ";"); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if t == "" || t == "application/octet-stream" {
		t = DetectMediaType(name, data)
	}
	return types.MediaFile{
		Name:    filepath.Base(name),
		Size:    int64(len(data)),
		Type:    t,
		Content: data,
	}, nil
}

// DetectMediaType sniffs data and falls back to the file extension.
func DetectMediaType(name string, data []byte) string {
	mt := mimetype.Detect(data)
	t := mt.String()
	if i := strings.Index(t, ";"); i >= 0 {
		t = t[:i]
	}
	if t != "" && t != "application/octet-stream" && t != "text/plain" {
		return t
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		if i := strings.Index(byExt, ";"); i >= 0 {
			byExt = byExt[:i]
		}
		return byExt
	}
	return "application/octet-stream"
}

// FormatFileSize renders a byte count the way the preview captions show it.
func FormatFileSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d bytes", bytes)
	case bytes < 1048576:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/1048576)
	}
}
