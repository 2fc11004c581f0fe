// Package qr builds image URLs for the third-party QR rendering
// service. The service is reached by URL template only; no bytes are
// stored locally.
package qr

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultEndpoint is the public render service used when none is configured.
const DefaultEndpoint = "https://api.qrserver.com/v1/create-qr-code/"

const (
	defaultSize  = 300
	maxSize      = 1000
	defaultColor = "000000"
)

// Builder constructs QR image URLs against a configured endpoint.
type Builder struct {
	endpoint string
}

// NewBuilder creates a builder; an empty endpoint falls back to the default.
func NewBuilder(endpoint string) *Builder {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Builder{endpoint: endpoint}
}

// ImageURL renders the URL for a QR image of target, applying the
// subset of the style payload the service understands (size, color).
func (b *Builder) ImageURL(target string, style map[string]any) string {
	size := defaultSize
	if v, ok := style["size"].(float64); ok && v > 0 {
		size = int(v)
		if size > maxSize {
			size = maxSize
		}
	}

	color := defaultColor
	if v, ok := style["foreground_color"].(string); ok && v != "" {
		color = strings.TrimPrefix(v, "#")
	}

	q := url.Values{}
	q.Set("size", fmt.Sprintf("%dx%d", size, size))
	q.Set("color", color)
	q.Set("data", target)

	return b.endpoint + "?" + q.Encode()
}
