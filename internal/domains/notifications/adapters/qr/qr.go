// Package qr renders notification deep links as scannable codes.
package qr

import (
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultSize = 256
	MinSize     = 64
	MaxSize     = 1024
)

// Encode returns a PNG QR code for link. Sizes outside [MinSize, MaxSize] are clamped.
func Encode(link string, size int) ([]byte, error) {
	if link == "" {
		return nil, errors.New("qr: empty link")
	}
	switch {
	case size <= 0:
		size = DefaultSize
	case size < MinSize:
		size = MinSize
	case size > MaxSize:
		size = MaxSize
	}
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr: encode link: %w", err)
	}
	return png, nil
}
