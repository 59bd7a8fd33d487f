package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// shareTokenBytes gives 128 bits of entropy; the URL-safe encoding makes the
// token droppable into a link without escaping.
const shareTokenBytes = 16

// GenerateToken creates a cryptographically random share token.
func GenerateToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
