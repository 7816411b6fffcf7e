package domain

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyImage = errors.New("image data is empty")

// DecodeImageBase64 decodes a base64 image, accepting an optional data URL
// prefix ("data:image/jpeg;base64,...") and unpadded input.
func DecodeImageBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx == -1 {
			return nil, fmt.Errorf("invalid data URL: missing comma")
		}
		s = s[idx+1:]
	}
	if s == "" {
		return nil, ErrEmptyImage
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		var rawErr error
		if data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); rawErr != nil {
			return nil, fmt.Errorf("invalid base64 image: %w", err)
		}
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	return data, nil
}
