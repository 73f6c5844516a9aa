package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	JWTSecret     string
	TokenTTLHours int
	MongoURI      string
	DBName        string
	Environment   string
	AppId         string
	FSPath        string // Physical directory for file uploads
	FSURL         string // URL path prefix for file access
	CORSOrigins   string
	AutoCloseDays int // Resolved tickets older than this are auto-closed
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		TokenTTLHours: getEnvInt("TOKEN_TTL_HOURS", 72),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:        getEnv("DB_NAME", "go-helpdesk"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AppId:         getEnv("APP_ID", "go-helpdesk"),
		FSPath:        getEnv("FS_PATH", "./uploads"),
		FSURL:         getEnv("FS_URL", "/fs/uploads"),
		CORSOrigins:   getEnv("CORS_ORIGINS", "http://localhost:3000, http://localhost:5173"),
		AutoCloseDays: getEnvInt("AUTO_CLOSE_DAYS", 7),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
