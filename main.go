// main.go
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"go-type-race/controllers"
	"go-type-race/game"
	"go-type-race/logger"
	"go-type-race/services"
	"go-type-race/websocket"
)

func main() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	logger.SetLogLevel(os.Getenv("APP_ENV"))

	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	// Read configuration from environment variables
	applicationURL := os.Getenv("APPLICATION_URL")
	if applicationURL == "" {
		applicationURL = "http://localhost:8080" // Default to localhost for local testing
	}
	websocketURL := os.Getenv("WEBSOCKET_URL")
	if websocketURL == "" {
		websocketURL = "ws://localhost:8080/race" // Default to localhost for local testing
	}
	controllers.SetConfig(applicationURL, websocketURL)

	// Initialize session store (remembers the preferred display name)
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		sessionSecret = "secret"
	}
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("typerace", store))

	// Wire the room registry and gateway; the registry is owned here and
	// passed down, never a package global.
	registry := game.NewRegistry()
	archive := services.NewChatArchive(os.Getenv("KAFKA_ENDPOINT"))
	gateway := websocket.NewGateway(registry, archive)

	router.GET("/health", controllers.Health)
	router.GET("/name", controllers.GetName)
	router.POST("/name", controllers.SetName)
	router.GET("/qrcode", controllers.GetRoomQR)
	router.GET("/race", func(c *gin.Context) {
		session := sessions.Default(c)
		sessionName, _ := session.Get("username").(string)
		gateway.ServeWs(c.Writer, c.Request, sessionName)
	})

	// The race client is a browser SPA on another origin
	var handler http.Handler = cors.Default().Handler(router)

	// Optional request tracing
	if os.Getenv("XRAY_ENABLED") == "true" {
		handler = xray.Handler(xray.NewFixedSegmentNamer("go-type-race"), handler)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info.Printf("Server listening on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
