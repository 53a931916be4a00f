// file: services/qrcode_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
)

// Mock encoder function (successful); it echoes the content so the invite
// URL can be asserted.
func mockQRCodeEncoderSuccess(content string, level qrcode.RecoveryLevel, size int) ([]byte, error) {
	return []byte(content), nil
}

// Mock encoder function (failure)
func mockQRCodeEncoderFailure(content string, level qrcode.RecoveryLevel, size int) ([]byte, error) {
	return nil, errors.New("QR code generation failed")
}

// Test: Generate invite QR successfully
func TestGenerateInviteQR_Success(t *testing.T) {
	data, err := GenerateInviteQR("https://race.example.com", "room-1", 300, mockQRCodeEncoderSuccess)

	assert.NoError(t, err)
	assert.Equal(t, "https://race.example.com/?room=room-1", string(data))
}

// Test: Room ids get query-escaped into the invite URL
func TestGenerateInviteQR_EscapesRoomID(t *testing.T) {
	data, err := GenerateInviteQR("https://race.example.com", "friday night", 300, mockQRCodeEncoderSuccess)

	assert.NoError(t, err)
	assert.Equal(t, "https://race.example.com/?room=friday+night", string(data))
}

// Test: Missing room id is rejected
func TestGenerateInviteQR_MissingRoomID(t *testing.T) {
	data, err := GenerateInviteQR("https://race.example.com", "", 300, mockQRCodeEncoderSuccess)

	assert.Error(t, err)
	assert.Nil(t, data)
	assert.Equal(t, "roomID is required", err.Error())
}

// Test: Encoder failure is surfaced
func TestGenerateInviteQR_EncoderFails(t *testing.T) {
	data, err := GenerateInviteQR("https://race.example.com", "room-1", 300, mockQRCodeEncoderFailure)

	assert.Error(t, err)
	assert.Nil(t, data)
	assert.Equal(t, "QR code generation failed", err.Error())
}
