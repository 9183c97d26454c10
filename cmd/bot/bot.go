package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/mzivkov/bikedash/internal/api"
	"github.com/mzivkov/bikedash/internal/integration"
	"github.com/mzivkov/bikedash/internal/repository"
	"github.com/mzivkov/bikedash/internal/usecases"
)

func main() {
	// Configure logging
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Starting Bike Dash Bot...")

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize repository
	repo, err := repository.NewSQLiteReportRepository(os.Getenv("TRIPDATA_DB_PATH"))
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}
	defer repo.Close()

	// Initialize source and writer; the bot only reads stored aggregates but
	// shares the use case wiring with the ETL binaries
	source := integration.NewTripDataSource(os.Getenv("TRIPDATA_BASE_URL"), os.Getenv("TRIPDATA_SYSTEM_PREFIX"))
	writer := repository.NewFileReportWriter(os.Getenv("TRIPDATA_OUT_DIR"))

	// Initialize use case
	useCase := usecases.NewTripUseCase(source, repo, writer)

	// Get the bot token from environment variable
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	// Initialize Telegram bot
	telegramBot, err := api.NewTelegramBot(botToken, useCase, targetYear())
	if err != nil {
		log.Fatalf("Failed to initialize Telegram bot: %v", err)
	}

	// Start the bot
	telegramBot.Start()
}

// targetYear resolves TRIPDATA_YEAR, defaulting to the current year
func targetYear() int {
	if v := os.Getenv("TRIPDATA_YEAR"); v != "" {
		if year, err := strconv.Atoi(v); err == nil {
			return year
		}
		log.Printf("Ignoring invalid TRIPDATA_YEAR=%q", v)
	}
	return time.Now().Year()
}
