package model

import (
	"encoding/base64"
	"strings"
)

// Upload is a file chosen by the user through the picker or a drop.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// IsImage reports whether the declared MIME type is an image type.
func (u Upload) IsImage() bool {
	return strings.HasPrefix(u.ContentType, "image/")
}

// DataURI encodes the raw bytes for a local preview.
func (u Upload) DataURI() string {
	return "data:" + u.ContentType + ";base64," + base64.StdEncoding.EncodeToString(u.Data)
}
