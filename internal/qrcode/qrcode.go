package qrcode

import (
	"fmt"
	"net/url"

	qr "github.com/skip2/go-qrcode"
)

// Size is the edge length of generated images in pixels.
const Size = 256

// Generate creates a QR code PNG image for the given URL.
func Generate(link string) ([]byte, error) {
	png, err := qr.Encode(link, qr.Medium, Size)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	return png, nil
}

// JoinURL is the link a phone follows to take a seat at a table.
func JoinURL(host, tableID string) string {
	return fmt.Sprintf("http://%s/ws?table=%s&type=player", host, url.QueryEscape(tableID))
}

// JoinPNG renders the join link of a table.
func JoinPNG(host, tableID string) ([]byte, error) {
	return Generate(JoinURL(host, tableID))
}
