// Package controllers file: controllers/page_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"go-type-race/logger"
	"go-type-race/services"
)

var (
	ApplicationURL string
	WebsocketURL   string
)

// SetConfig sets global application and WebSocket URLs
func SetConfig(appURL, wsURL string) {
	ApplicationURL = appURL
	WebsocketURL = wsURL
	logger.Info.Printf("SetConfig: Global config updated: ApplicationURL=%s, WebsocketURL=%s", appURL, wsURL)
}

// Health is the load-balancer health check.
func Health(c *gin.Context) {
	logger.Info.Println("Health: Health check requested")
	c.String(http.StatusOK, "OK")
}

// GetName returns the display name stored in the cookie session, if any.
// The websocket handshake falls back to this name when the client supplies
// no username query parameter.
func GetName(c *gin.Context) {
	session := sessions.Default(c)
	username, _ := session.Get("username").(string)
	c.JSON(http.StatusOK, gin.H{"username": username})
}

// SetName stores the preferred display name in the cookie session.
func SetName(c *gin.Context) {
	var body struct {
		Username string `json:"username" form:"username"`
	}
	if err := c.ShouldBind(&body); err != nil || body.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	session := sessions.Default(c)
	session.Set("username", body.Username)
	if err := session.Save(); err != nil {
		logger.Error.Printf("SetName: Error saving session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save session"})
		return
	}
	logger.Info.Printf("SetName: Display name set to %q", body.Username)
	c.JSON(http.StatusOK, gin.H{"username": body.Username})
}

// GetRoomQR renders a QR code PNG for a room's join URL, so a racer can
// pull friends into their room by pointing a phone at the screen.
func GetRoomQR(c *gin.Context) {
	roomID := c.Query("roomId")
	if roomID == "" {
		c.String(http.StatusBadRequest, "roomId is required")
		return
	}
	logger.Info.Printf("GetRoomQR: Generating QR code for room %q", roomID)

	qrBytes, err := services.GenerateInviteQR(ApplicationURL, roomID, 300, services.QRCodeEncoder(qrcode.Encode))
	if err != nil {
		logger.Error.Printf("GetRoomQR: Error generating QR code: %v", err)
		c.String(http.StatusInternalServerError, "QR generation failed")
		return
	}

	c.Header("Content-Type", "image/png")
	c.Header("Content-Disposition", "inline; filename=\"qrcode.png\"")
	if _, err := c.Writer.Write(qrBytes); err != nil {
		logger.Error.Printf("GetRoomQR: Error writing QR code bytes: %v", err)
	}
}
