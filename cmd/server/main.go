package main

import (
	"log"
	"os"
	"strings"

	"blogify/internal/db"
	"blogify/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	// Initialize Database
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=blogify port=5432 sslmode=disable"
	}
	database, err := db.Init(dsn)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Gin
	r := gin.Default()
	r.Use(cors.New(corsConfig()))

	router.RegisterRoutes(r, database)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	log.Printf("Blogify server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func corsConfig() cors.Config {
	config := cors.DefaultConfig()

	origins := os.Getenv("ALLOWED_ORIGINS")
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:5173"
	}
	config.AllowOrigins = strings.Split(origins, ",")
	config.AllowCredentials = true
	config.AddAllowHeaders("Authorization")

	return config
}
