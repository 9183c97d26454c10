// Package usecases contains the application's business logic
package usecases

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/mzivkov/bikedash/internal/entities"
	"github.com/mzivkov/bikedash/internal/integration"
	"github.com/mzivkov/bikedash/internal/repository"
)

// ErrNoDataFound is returned when not a single monthly archive could be
// ingested for the target year. It is the only fatal pipeline condition.
var ErrNoDataFound = errors.New("no monthly trip data found")

// ArchiveSource locates and retrieves monthly trip archives
type ArchiveSource interface {
	ArchiveName(year, month int) (string, error)
	ArchiveURL(year, month int) (string, error)
	FetchArchive(url string) ([]byte, bool, error)
	ListArchives() (map[string]bool, error)
}

// TripUseCase drives the monthly ingestion pipeline and exposes the stored
// aggregates to the read surface
type TripUseCase struct {
	source ArchiveSource
	repo   repository.ReportRepository
	writer repository.ReportWriter
}

// NewTripUseCase creates a new trip use case
func NewTripUseCase(source ArchiveSource, repo repository.ReportRepository, writer repository.ReportWriter) *TripUseCase {
	return &TripUseCase{
		source: source,
		repo:   repo,
		writer: writer,
	}
}

// RunPipeline ingests every published month of the target year and produces
// the two dashboard artifacts. Per-month failures of any kind are logged
// and skipped; the run fails only when no month yields data, in which case
// nothing is written.
func (uc *TripUseCase) RunPipeline(year int) error {
	log.Printf("Starting trip data pipeline for %d...", year)

	listed, err := uc.source.ListArchives()
	if err != nil {
		log.Printf("Warning: archive index unavailable, probing all months: %v", err)
		listed = nil
	} else if len(listed) == 0 {
		// An index that lists nothing is more likely truncated or serving
		// the wrong prefix than a bucket with no published archives; the
		// listing is advisory and must never veto fetching.
		log.Printf("Warning: archive index lists no archives, probing all months")
		listed = nil
	}

	monthSets := make(map[string]entities.TripSet)
	for month := 1; month <= 12; month++ {
		key := fmt.Sprintf("%04d-%02d", year, month)

		name, err := uc.source.ArchiveName(year, month)
		if err != nil {
			return fmt.Errorf("failed to derive archive name for %s: %v", key, err)
		}
		if listed != nil && !listed[name] {
			log.Printf("%s: not in archive index, skipping", key)
			continue
		}

		url, err := uc.source.ArchiveURL(year, month)
		if err != nil {
			return fmt.Errorf("failed to derive archive URL for %s: %v", key, err)
		}

		log.Printf("%s: checking %s", key, url)
		data, found, err := uc.source.FetchArchive(url)
		if err != nil {
			// Transport trouble for one month must not abort the others
			log.Printf("%s: fetch failed, treating as not published: %v", key, err)
			continue
		}
		if !found {
			log.Printf("%s: not found", key)
			continue
		}
		log.Printf("%s: found (%d bytes)", key, len(data))

		set, err := integration.NormalizeArchive(data, year)
		if err != nil {
			log.Printf("%s: error reading archive, skipping: %v", key, err)
			continue
		}
		set.YearMonth = key
		monthSets[key] = set
	}

	if len(monthSets) == 0 {
		return fmt.Errorf("no %d monthly archives ingested: %w", year, ErrNoDataFound)
	}

	totals := monthlyTotals(monthSets)
	latest := latestMonth(monthSets)
	report := BuildTopStationsReport(monthSets[latest])

	// The two artifacts are independent: a failed write of one must not
	// block the other.
	if err := uc.writer.WriteMonthlyTotals(year, totals); err != nil {
		log.Printf("Error writing monthly totals: %v", err)
	}
	if err := uc.writer.WriteTopStations(report); err != nil {
		log.Printf("Error writing top stations report: %v", err)
	}

	if err := uc.repo.SaveMonthlyTotals(year, totals); err != nil {
		log.Printf("Error saving monthly totals: %v", err)
	}
	if err := uc.repo.SaveTopStations(report); err != nil {
		log.Printf("Error saving top stations report: %v", err)
	}

	log.Printf("Pipeline finished: %d months ingested, latest %s", len(totals), latest)
	return nil
}

// monthlyTotals folds the ingested months into the totals artifact,
// ascending by month key regardless of ingestion order.
func monthlyTotals(monthSets map[string]entities.TripSet) []entities.MonthlyTotal {
	totals := make([]entities.MonthlyTotal, 0, len(monthSets))
	for key, set := range monthSets {
		totals = append(totals, entities.MonthlyTotal{Month: key, Rides: TotalRides(set)})
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Month < totals[j].Month
	})
	return totals
}

// latestMonth picks the greatest "YYYY-MM" key; within one year the string
// order is the chronological order.
func latestMonth(monthSets map[string]entities.TripSet) string {
	latest := ""
	for key := range monthSets {
		if key > latest {
			latest = key
		}
	}
	return latest
}

// GetMonthlyTotals retrieves the stored totals for a year
func (uc *TripUseCase) GetMonthlyTotals(year int) ([]entities.MonthlyTotal, error) {
	log.Printf("Retrieving monthly totals for %d", year)
	return uc.repo.GetMonthlyTotals(year)
}

// GetTopStations retrieves the stored leaderboard for the latest month
func (uc *TripUseCase) GetTopStations() (entities.TopStationsReport, error) {
	log.Println("Retrieving top stations report")
	return uc.repo.GetTopStations()
}

// GetLastUpdateTime returns when aggregates were last stored
func (uc *TripUseCase) GetLastUpdateTime() (time.Time, error) {
	return uc.repo.GetLastUpdateTime()
}

// FormatMonthlyTotals formats the totals list for chat display
func (uc *TripUseCase) FormatMonthlyTotals(totals []entities.MonthlyTotal) string {
	if len(totals) == 0 {
		return "No monthly totals available yet. The pipeline has not ingested any data."
	}

	var result strings.Builder
	result.WriteString("Monthly ride totals:\n\n")
	for _, t := range totals {
		result.WriteString(fmt.Sprintf("🚲 %s: %d rides\n", t.Month, t.Rides))
	}
	return result.String()
}

// FormatTopStations formats the leaderboard report for chat display
func (uc *TripUseCase) FormatTopStations(report entities.TopStationsReport) string {
	if report.LatestMonth == "" {
		return "No top stations report available yet. The pipeline has not ingested any data."
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Top stations for %s:\n\n", report.LatestMonth))
	writeBoard(&result, "🏁 Starts (casual)", report.Top5.Starts.Casual)
	writeBoard(&result, "🏁 Starts (member)", report.Top5.Starts.Member)
	writeBoard(&result, "🎯 Ends (casual)", report.Top5.Ends.Casual)
	writeBoard(&result, "🎯 Ends (member)", report.Top5.Ends.Member)
	return result.String()
}

func writeBoard(result *strings.Builder, title string, counts []entities.StationCount) {
	result.WriteString(title + "\n")
	if len(counts) == 0 {
		result.WriteString("  no trips\n")
	}
	for i, c := range counts {
		result.WriteString(fmt.Sprintf("  %d. %s: %d trips\n", i+1, c.StationName, c.Trips))
	}
	result.WriteString("\n")
}
