package site

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/sitewright/internal/storage"
)

// AssetsDir holds persisted images relative to the site root.
const AssetsDir = "assets"

const maxImageBytes = 10 << 20 // 10 MB

var mimeToExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AssetURL is the public URL for a persisted image ID.
func AssetURL(id string) string {
	return "/" + AssetsDir + "/" + id
}

// ImageStore persists generated images so the tree never carries raw base64.
type ImageStore struct {
	fs storage.Provider
}

// NewImageStore creates an image store writing under AssetsDir.
func NewImageStore(fs storage.Provider) *ImageStore {
	return &ImageStore{fs: fs}
}

// Store decodes a base64 payload (bare or data URI), checks that it is an
// image and writes it. The returned ID is the stored file name.
func (s *ImageStore) Store(_ context.Context, payload string) (string, error) {
	data, err := decodeImagePayload(payload)
	if err != nil {
		return "", err
	}
	if len(data) > maxImageBytes {
		return "", fmt.Errorf("site: image too large: %d bytes (max %d)", len(data), maxImageBytes)
	}
	detected := strings.Split(http.DetectContentType(data), ";")[0]
	ext, ok := mimeToExt[detected]
	if !ok {
		return "", fmt.Errorf("site: unsupported image content type %s", detected)
	}
	id := uuid.New().String() + ext
	if err := s.fs.Write(AssetsDir+"/"+id, data); err != nil {
		return "", fmt.Errorf("site: store image: %w", err)
	}
	return id, nil
}

// decodeImagePayload accepts "data:<mime>;base64,<data>" or bare base64.
func decodeImagePayload(payload string) ([]byte, error) {
	encoded := strings.TrimSpace(payload)
	if strings.HasPrefix(encoded, "data:") {
		comma := strings.Index(encoded, ",")
		if comma < 0 {
			return nil, fmt.Errorf("site: invalid data URI: missing comma separator")
		}
		if !strings.Contains(encoded[:comma], ";base64") {
			return nil, fmt.Errorf("site: only base64 data URIs are supported")
		}
		encoded = encoded[comma+1:]
	}
	if encoded == "" {
		return nil, fmt.Errorf("site: empty image payload")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("site: invalid base64 image: %w", err)
		}
	}
	return data, nil
}
