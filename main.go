package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/mzivkov/bikedash/internal/integration"
	"github.com/mzivkov/bikedash/internal/repository"
	"github.com/mzivkov/bikedash/internal/usecases"
)

// One-shot pipeline run: ingest whatever months are published for the target
// year, write the two dashboard artifacts and exit. cmd/etl is the scheduled
// variant of this binary.
func main() {
	// Configure logging
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Starting Bike Dash pipeline run...")

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	repo, err := repository.NewSQLiteReportRepository(os.Getenv("TRIPDATA_DB_PATH"))
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}
	defer repo.Close()

	source := integration.NewTripDataSource(os.Getenv("TRIPDATA_BASE_URL"), os.Getenv("TRIPDATA_SYSTEM_PREFIX"))
	writer := repository.NewFileReportWriter(os.Getenv("TRIPDATA_OUT_DIR"))
	useCase := usecases.NewTripUseCase(source, repo, writer)

	if err := useCase.RunPipeline(targetYear()); err != nil {
		log.Fatalf("Pipeline run failed: %v", err)
	}
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
