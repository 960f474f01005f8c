package analysis

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	// Decoders for the upload formats browsers commonly produce.
	_ "image/gif"
	_ "image/png"
)

// ErrInvalidImageFormat is returned for uploads that are not a base64 data
// URL holding a decodable JPEG, PNG or GIF.
var ErrInvalidImageFormat = errors.New("invalid image format")

const (
	dataURLMarker = ";base64,"
	jpegQuality   = 85
)

// DecodeDataURL extracts the payload of a "data:<type>;base64,<data>" string.
func DecodeDataURL(s string) ([]byte, error) {
	_, encoded, ok := strings.Cut(s, dataURLMarker)
	if !ok || strings.TrimSpace(encoded) == "" {
		return nil, fmt.Errorf("%w: missing %q marker", ErrInvalidImageFormat, dataURLMarker)
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImageFormat, err)
	}
	return data, nil
}

// ToJPEG re-encodes any supported image as JPEG.
func ToJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImageFormat, err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
