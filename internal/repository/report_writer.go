package repository

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mzivkov/bikedash/internal/entities"
)

// ReportWriter hands the finished aggregates to the dashboard
type ReportWriter interface {
	WriteMonthlyTotals(year int, totals []entities.MonthlyTotal) error
	WriteTopStations(report entities.TopStationsReport) error
}

// FileReportWriter writes the two dashboard artifacts as JSON files
type FileReportWriter struct {
	OutDir string
}

// NewFileReportWriter creates a writer for the given output directory,
// defaulting to the directory the static dashboard is served from
func NewFileReportWriter(outDir string) *FileReportWriter {
	if outDir == "" {
		outDir = filepath.Join("docs", "data")
	}
	return &FileReportWriter{OutDir: outDir}
}

// WriteMonthlyTotals writes the per-month ride totals artifact
func (w *FileReportWriter) WriteMonthlyTotals(year int, totals []entities.MonthlyTotal) error {
	path := filepath.Join(w.OutDir, fmt.Sprintf("monthly_totals_%d.json", year))
	return w.writeJSON(path, totals)
}

// WriteTopStations writes the latest-month leaderboard artifact
func (w *FileReportWriter) WriteTopStations(report entities.TopStationsReport) error {
	path := filepath.Join(w.OutDir, "top_stations_latest.json")
	return w.writeJSON(path, report)
}

func (w *FileReportWriter) writeJSON(path string, value interface{}) error {
	if err := os.MkdirAll(w.OutDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %v", path, err)
	}
	log.Printf("Wrote %s (%d bytes)", path, len(data))
	return nil
}
