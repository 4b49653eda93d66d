package main

import (
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/weddingwrangle/weddingwrangle/controllers"
	"github.com/weddingwrangle/weddingwrangle/database"
	"github.com/weddingwrangle/weddingwrangle/middleware"
	"github.com/weddingwrangle/weddingwrangle/services"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	// Initialize database
	database.Connect()
	if err := database.Migrate(database.DB); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}
	if err := database.Seed(database.DB); err != nil {
		log.Fatal().Err(err).Msg("database seeding failed")
	}
	log.Info().Msg("Database migration completed")

	// Wire the mail transport and site settings
	controllers.Setup(mailerFromEnv(), envOr("BASE_URL", "http://localhost:8080"),
		envOr("FROM_EMAIL", "wedding@example.com"))

	// Set up router
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Guest self-service routes; the RSVP link is the credential
	router.GET("/rsvp/:rsvp_link", controllers.GetRSVP)
	router.PUT("/rsvp/:rsvp_link", controllers.SubmitRSVP)
	router.GET("/qr/:rsvp_link", controllers.GetQRCode)

	// Authentication routes
	auth := router.Group("/api")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	// Protected staff routes
	api := router.Group("/api")
	api.Use(middleware.JWTAuth())
	{
		// Guest routes
		api.GET("/guests", controllers.GetGuests)
		api.POST("/guests", controllers.CreateGuest)
		api.GET("/guests/:id", controllers.GetGuest)
		api.PUT("/guests/:id", controllers.UpdateGuest)
		api.DELETE("/guests/:id", controllers.DeleteGuest)
		api.POST("/guests/import", controllers.UploadGuests)
		api.GET("/guests/export", controllers.ExportGuests)
		api.GET("/guests/export/qr", controllers.ExportQRCodes)
		api.GET("/stats", controllers.GetStats)

		// Campaign routes
		api.GET("/emails", controllers.GetEmails)
		api.POST("/emails", controllers.CreateEmail)
		api.GET("/emails/:id", controllers.GetEmail)
		api.POST("/emails/:id/send", controllers.SendEmail)

		// Reference data routes
		api.GET("/reference", controllers.GetReferenceData)
		api.GET("/audiences", controllers.GetAudiences)
	}

	// Start server
	port := envOr("PORT", "8080")

	log.Info().Str("port", port).Msg("Server running")
	if err := router.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}

func mailerFromEnv() services.Mailer {
	port, err := strconv.Atoi(envOr("SMTP_PORT", "587"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid SMTP_PORT")
	}
	return &services.SMTPMailer{
		Host:     envOr("SMTP_HOST", "localhost"),
		Port:     port,
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
	}
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
