// Package datauri formats and parses base64 "data:" URIs used for image
// previews and generated results.
package datauri

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// FallbackExtension is used when a MIME type carries no usable subtype.
const FallbackExtension = "png"

var ErrMalformed = errors.New("datauri: malformed data uri")

// Format encodes data as data:{mime};base64,{payload}.
func Format(mimeType string, data []byte) string {
	return FormatBase64(mimeType, base64.StdEncoding.EncodeToString(data))
}

// FormatBase64 wraps an already encoded payload.
func FormatBase64(mimeType, payload string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, payload)
}

// Payload returns everything after the first comma, or the input unchanged
// when there is no comma.
func Payload(uri string) string {
	if idx := strings.IndexByte(uri, ','); idx >= 0 {
		return uri[idx+1:]
	}
	return uri
}

// MIMEType returns the media type declared in the header of uri, or "" when
// the header cannot be read.
func MIMEType(uri string) string {
	if !strings.HasPrefix(uri, "data:") {
		return ""
	}
	header := uri[len("data:"):]
	if idx := strings.IndexByte(header, ','); idx >= 0 {
		header = header[:idx]
	}
	if idx := strings.IndexByte(header, ';'); idx >= 0 {
		header = header[:idx]
	}
	return strings.TrimSpace(header)
}

// Parse splits a base64 data URI into its media type and decoded bytes.
func Parse(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, ErrMalformed
	}
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return "", nil, ErrMalformed
	}
	header := uri[len("data:"):comma]
	if !strings.HasSuffix(header, ";base64") {
		return "", nil, fmt.Errorf("%w: not base64 encoded", ErrMalformed)
	}
	data, err := base64.StdEncoding.DecodeString(uri[comma+1:])
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return strings.TrimSuffix(header, ";base64"), data, nil
}

// Extension derives a file extension from a MIME type ("image/webp" -> "webp").
// Malformed types and types without a subtype fall back to png.
func Extension(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	_, sub, ok := strings.Cut(mimeType, "/")
	if !ok || strings.TrimSpace(sub) == "" {
		return FallbackExtension
	}
	return strings.TrimSpace(sub)
}

// Filename returns the download name for an artifact of the given MIME type.
func Filename(base, mimeType string) string {
	return base + "." + Extension(mimeType)
}
