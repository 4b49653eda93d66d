package utils

import (
	qrcode "github.com/skip2/go-qrcode"
)

// QRCodeSize is the pixel size of generated RSVP QR codes.
const QRCodeSize = 200

// RSVPQRCode renders a PNG QR code pointing at the given RSVP URL.
func RSVPQRCode(url string) ([]byte, error) {
	return qrcode.Encode(url, qrcode.Medium, QRCodeSize)
}
