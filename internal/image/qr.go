package imagepkg

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	MinQRSize = 64
	MaxQRSize = 1024
)

// GenerateQRPNG returns PNG bytes of a QR code for text, size pixels
// square. Kiosks show it next to a finished composite so guests can fetch
// their copy.
func GenerateQRPNG(text string, size int) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("qr: empty content")
	}
	if size < MinQRSize || size > MaxQRSize {
		return nil, fmt.Errorf("qr: size %d outside [%d, %d]", size, MinQRSize, MaxQRSize)
	}
	return qrcode.Encode(text, qrcode.Medium, size)
}
