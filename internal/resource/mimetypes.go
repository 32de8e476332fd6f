package resource

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

const fallbackMimeType = "application/octet-stream"

// builtinMimeTypes supplements Go's mime package for extensions it may not
// know on a given platform. Custom mappings from configuration take
// precedence over both.
var builtinMimeTypes = map[string]string{
	".avif":  "image/avif",
	".css":   "text/css; charset=utf-8",
	".csv":   "text/csv; charset=utf-8",
	".gif":   "image/gif",
	".gz":    "application/gzip",
	".htm":   "text/html; charset=utf-8",
	".html":  "text/html; charset=utf-8",
	".ico":   "image/vnd.microsoft.icon",
	".jpeg":  "image/jpeg",
	".jpg":   "image/jpeg",
	".js":    "text/javascript; charset=utf-8",
	".json":  "application/json; charset=utf-8",
	".md":    "text/markdown; charset=utf-8",
	".mp3":   "audio/mpeg",
	".mp4":   "video/mp4",
	".otf":   "font/otf",
	".pdf":   "application/pdf",
	".png":   "image/png",
	".svg":   "image/svg+xml",
	".tar":   "application/x-tar",
	".ttf":   "font/ttf",
	".txt":   "text/plain; charset=utf-8",
	".wasm":  "application/wasm",
	".webm":  "video/webm",
	".webp":  "image/webp",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".xml":   "application/xml; charset=utf-8",
	".zip":   "application/zip",
}

// MimeTypes resolves Content-Type values from file extensions.
type MimeTypes struct {
	custom map[string]string
}

// NewMimeTypes creates a resolver, optionally loading custom extension
// mappings from a JSON file ({".ext": "type/subtype", ...}). Extensions
// must carry a leading dot and map to a non-empty type.
func NewMimeTypes(customPath string) (*MimeTypes, error) {
	m := &MimeTypes{custom: make(map[string]string)}
	if customPath == "" {
		return m, nil
	}

	data, err := os.ReadFile(customPath)
	if err != nil {
		return nil, fmt.Errorf("reading MIME types file %q: %w", customPath, err)
	}
	var mappings map[string]string
	if err := json.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("parsing MIME types file %q: %w", customPath, err)
	}
	for ext, mimeType := range mappings {
		if !strings.HasPrefix(ext, ".") {
			return nil, fmt.Errorf("invalid extension %q in %q: must start with '.'", ext, customPath)
		}
		if mimeType == "" {
			return nil, fmt.Errorf("empty MIME type for extension %q in %q", ext, customPath)
		}
		m.custom[strings.ToLower(ext)] = mimeType
	}
	return m, nil
}

// ByPath determines the Content-Type for a file path from its extension:
// custom mappings first, then the built-in table, then Go's registry,
// falling back to application/octet-stream.
func (m *MimeTypes) ByPath(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext == "" {
		return fallbackMimeType
	}
	if mimeType, ok := m.custom[ext]; ok {
		return mimeType
	}
	if mimeType, ok := builtinMimeTypes[ext]; ok {
		return mimeType
	}
	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		return mimeType
	}
	return fallbackMimeType
}
