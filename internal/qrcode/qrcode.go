// Package qrcode renders table join links as scannable PNGs.
package qrcode

import qr "github.com/skip2/go-qrcode"

// Generate encodes the join URL as a 256px QR PNG.
func Generate(joinURL string) ([]byte, error) {
	return qr.Encode(joinURL, qr.Medium, 256)
}
