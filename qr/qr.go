package qr

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// EncodePNG renders text as a QR code PNG with medium error correction.
// Standard scan size is 300px; use 500px for print.
func EncodePNG(text string, size int) ([]byte, error) {
	code, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	pngBytes, err := code.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR to PNG: %w", err)
	}

	return pngBytes, nil
}

// EncodeDataURI renders text as a QR code and returns it as a data URI
// usable directly in an <img> tag.
func EncodeDataURI(text string, size int) (string, error) {
	pngBytes, err := EncodePNG(text, size)
	if err != nil {
		return "", err
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes), nil
}
