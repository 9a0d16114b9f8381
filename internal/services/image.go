package services

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/yungbote/crystal-grimoire-backend/internal/platform/apierr"
)

// headerCheckedTypes can be verified locally; HEIC and friends go to the model unchecked.
var headerCheckedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/gif":  true,
	"image/webp": true,
}

type imageInfo struct {
	Format string
	Width  int
	Height int
}

// inspectImage decodes only the image header. It returns nil info for types it cannot check.
func inspectImage(img []byte, mimeType string) (*imageInfo, error) {
	if !headerCheckedTypes[mimeType] {
		return nil, nil
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return nil, apierr.BadRequest("invalid_image", "unreadable %s image: %v", mimeType, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, apierr.BadRequest("invalid_image", "image has no pixels")
	}
	return &imageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
