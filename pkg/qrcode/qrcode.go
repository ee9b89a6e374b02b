// Package qrcode renders QR codes as PNG data URLs suitable for <img src>.
package qrcode

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

const dataURLPrefix = "data:image/png;base64,"

// DataURL encodes content as a size×size QR code with medium error correction.
func DataURL(content string, size int) (string, error) {
	if content == "" {
		return "", fmt.Errorf("qrcode: empty content")
	}
	if size <= 0 {
		return "", fmt.Errorf("qrcode: size must be positive, got %d", size)
	}

	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("qrcode: failed to encode: %w", err)
	}

	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return "", fmt.Errorf("qrcode: failed to scale: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", fmt.Errorf("qrcode: failed to encode png: %w", err)
	}

	return dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
