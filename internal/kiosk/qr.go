package kiosk

import (
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// renderQR draws token as a QR code, two module rows per text line. Dark
// modules are drawn with block glyphs, so the result scans only when the
// caller paints it dark-on-light.
func renderQR(token string) (string, error) {
	code, err := qrcode.New(token, qrcode.Medium)
	if err != nil {
		return "", err
	}
	bitmap := code.Bitmap()

	var b strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		if y > 0 {
			b.WriteByte('\n')
		}
		top := bitmap[y]
		var bottom []bool
		if y+1 < len(bitmap) {
			bottom = bitmap[y+1]
		}
		for x := range top {
			lower := bottom != nil && bottom[x]
			switch {
			case top[x] && lower:
				b.WriteRune('█')
			case top[x]:
				b.WriteRune('▀')
			case lower:
				b.WriteRune('▄')
			default:
				b.WriteByte(' ')
			}
		}
	}
	return b.String(), nil
}
