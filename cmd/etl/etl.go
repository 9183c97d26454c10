package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/mzivkov/bikedash/internal/integration"
	"github.com/mzivkov/bikedash/internal/repository"
	"github.com/mzivkov/bikedash/internal/usecases"
)

func main() {
	// Configure logging
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Starting Bike Dash ETL...")

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize repository
	repo, err := repository.NewSQLiteReportRepository(os.Getenv("TRIPDATA_DB_PATH"))
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}
	defer repo.Close()

	// Initialize source and writer
	source := integration.NewTripDataSource(os.Getenv("TRIPDATA_BASE_URL"), os.Getenv("TRIPDATA_SYSTEM_PREFIX"))
	writer := repository.NewFileReportWriter(os.Getenv("TRIPDATA_OUT_DIR"))

	// Initialize use case
	useCase := usecases.NewTripUseCase(source, repo, writer)

	// Run the pipeline immediately on startup
	if err := useCase.RunPipeline(targetYear()); err != nil {
		log.Printf("Initial pipeline run failed: %v", err)
	}

	// New monthly archives appear upstream at unpredictable times, so check
	// once a day
	c := cron.New()
	_, err = c.AddFunc("0 6 * * *", func() {
		if err := useCase.RunPipeline(targetYear()); err != nil {
			log.Printf("Scheduled pipeline run failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to set up cron job: %v", err)
	}

	log.Println("Pipeline has been scheduled to run daily")
	c.Start()

	// Keep the program running
	select {}
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
