// services/qrcode_service.go
package services

import (
	"errors"
	"net/url"

	"github.com/skip2/go-qrcode"
)

// QRCodeEncoder matches qrcode.Encode so tests can inject a fake encoder.
type QRCodeEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// GenerateInviteQR creates a PNG QR code for the room's join URL.
func GenerateInviteQR(applicationURL, roomID string, size int, encode QRCodeEncoder) ([]byte, error) {
	if roomID == "" {
		return nil, errors.New("roomID is required")
	}
	inviteURL := applicationURL + "/?room=" + url.QueryEscape(roomID)

	png, err := encode(inviteURL, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}
