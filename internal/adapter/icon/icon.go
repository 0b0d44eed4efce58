// Package icon turns uploaded artwork photos into small inline thumbnails.
package icon

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/heartmarshall/atelier-bot/internal/config"
)

// DataURIPrefix precedes every encoded icon.
const DataURIPrefix = "data:image/jpeg;base64,"

// Maker builds icons with fixed size and quality settings.
type Maker struct {
	size     int
	quality  int
	maxBytes int64
	log      *slog.Logger
}

// NewMaker creates a Maker from IconConfig.
func NewMaker(cfg config.IconConfig, log *slog.Logger) *Maker {
	return &Maker{
		size:     cfg.Size,
		quality:  cfg.Quality,
		maxBytes: cfg.MaxUploadBytes,
		log:      log.With("component", "icon"),
	}
}

// MakeIcon returns a data-URI JPEG thumbnail no larger than size×size, or nil
// when data is not a decodable image. It never panics.
func (m *Maker) MakeIcon(data []byte) (icon *string) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Warn("icon pipeline panicked", slog.Any("panic", r))
			icon = nil
		}
	}()

	encoded, err := m.encode(data)
	if err != nil {
		m.log.Warn("icon pipeline failed", slog.String("error", err.Error()), slog.Int("bytes", len(data)))
		return nil
	}
	return &encoded
}

func (m *Maker) encode(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty upload")
	}
	if m.maxBytes > 0 && int64(len(data)) > m.maxBytes {
		return "", fmt.Errorf("upload of %d bytes exceeds limit %d", len(data), m.maxBytes)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	thumb := imaging.Fit(img, m.size, m.size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(m.quality)); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}

	return DataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode extracts the JPEG bytes from an icon produced by MakeIcon.
func Decode(icon string) ([]byte, error) {
	if len(icon) < len(DataURIPrefix) || icon[:len(DataURIPrefix)] != DataURIPrefix {
		return nil, fmt.Errorf("icon: missing %q prefix", DataURIPrefix)
	}
	raw, err := base64.StdEncoding.DecodeString(icon[len(DataURIPrefix):])
	if err != nil {
		return nil, fmt.Errorf("icon: %w", err)
	}
	return raw, nil
}
