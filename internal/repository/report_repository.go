// Package repository provides data access implementations
package repository

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mzivkov/bikedash/internal/entities"
	_ "github.com/mattn/go-sqlite3"
)

// ReportRepository defines the interface for aggregate persistence
type ReportRepository interface {
	SaveMonthlyTotals(year int, totals []entities.MonthlyTotal) error
	GetMonthlyTotals(year int) ([]entities.MonthlyTotal, error)
	SaveTopStations(report entities.TopStationsReport) error
	GetTopStations() (entities.TopStationsReport, error)
	GetLastUpdateTime() (time.Time, error)
	Close() error
}

// SQLiteReportRepository implements ReportRepository using SQLite
type SQLiteReportRepository struct {
	db     *sql.DB
	DBPath string
}

// NewSQLiteReportRepository creates and initializes a new SQLite repository
func NewSQLiteReportRepository(dbPath string) (*SQLiteReportRepository, error) {
	if dbPath == "" {
		// Set default path if not specified
		dbDir := "data"
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
		dbPath = filepath.Join(dbDir, "tripdata.db")
	}

	log.Printf("Opening database at %s", dbPath)
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS monthly_totals (
		month TEXT PRIMARY KEY,
		rides INTEGER NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS top_stations (
		month TEXT NOT NULL,
		side TEXT NOT NULL,
		category TEXT NOT NULL,
		rank INTEGER NOT NULL,
		station_id TEXT NOT NULL,
		station_name TEXT NOT NULL,
		trips INTEGER NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY(month, side, category, rank)
	);
	CREATE INDEX IF NOT EXISTS idx_totals_month ON monthly_totals(month);`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &SQLiteReportRepository{
		db:     db,
		DBPath: dbPath,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReportRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveMonthlyTotals upserts the totals of one pipeline run
func (r *SQLiteReportRepository) SaveMonthlyTotals(year int, totals []entities.MonthlyTotal) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO monthly_totals(month, rides, updated_at)
		VALUES(?, ?, ?)
		ON CONFLICT(month) DO UPDATE SET
		rides=excluded.rides,
		updated_at=excluded.updated_at
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %v", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, t := range totals {
		if _, err := stmt.Exec(t.Month, t.Rides, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert total for %s: %v", t.Month, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	log.Printf("Successfully saved %d monthly totals for %d", len(totals), year)
	return nil
}

// GetMonthlyTotals returns the stored totals of one year, ascending by month
func (r *SQLiteReportRepository) GetMonthlyTotals(year int) ([]entities.MonthlyTotal, error) {
	rows, err := r.db.Query(`
		SELECT month, rides FROM monthly_totals
		WHERE month LIKE ?
		ORDER BY month`, fmt.Sprintf("%04d-%%", year))
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly totals for %d: %v", year, err)
	}
	defer rows.Close()

	var result []entities.MonthlyTotal
	for rows.Next() {
		var t entities.MonthlyTotal
		if err := rows.Scan(&t.Month, &t.Rides); err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		result = append(result, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %v", err)
	}

	return result, nil
}

// SaveTopStations replaces the stored leaderboard with the latest report
func (r *SQLiteReportRepository) SaveTopStations(report entities.TopStationsReport) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}

	// Only the latest month's leaderboard is kept
	if _, err := tx.Exec("DELETE FROM top_stations"); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear top stations: %v", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO top_stations(month, side, category, rank, station_id, station_name, trips, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %v", err)
	}
	defer stmt.Close()

	now := time.Now()
	boards := []struct {
		side     string
		category string
		counts   []entities.StationCount
	}{
		{"start", entities.CategoryCasual, report.Top5.Starts.Casual},
		{"start", entities.CategoryMember, report.Top5.Starts.Member},
		{"end", entities.CategoryCasual, report.Top5.Ends.Casual},
		{"end", entities.CategoryMember, report.Top5.Ends.Member},
	}
	for _, board := range boards {
		for i, c := range board.counts {
			_, err := stmt.Exec(report.LatestMonth, board.side, board.category, i+1,
				c.StationID, c.StationName, c.Trips, now)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to insert top station %s/%s rank %d: %v",
					board.side, board.category, i+1, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	log.Printf("Successfully saved top stations report for %s", report.LatestMonth)
	return nil
}

// GetTopStations rebuilds the stored leaderboard report. A repository with
// no stored report returns a zero report and no error.
func (r *SQLiteReportRepository) GetTopStations() (entities.TopStationsReport, error) {
	var report entities.TopStationsReport

	err := r.db.QueryRow("SELECT month FROM top_stations ORDER BY month DESC LIMIT 1").
		Scan(&report.LatestMonth)
	if err == sql.ErrNoRows {
		return report, nil
	}
	if err != nil {
		return report, fmt.Errorf("failed to query latest month: %v", err)
	}

	rows, err := r.db.Query(`
		SELECT side, category, station_id, station_name, trips
		FROM top_stations
		WHERE month = ?
		ORDER BY side, category, rank`, report.LatestMonth)
	if err != nil {
		return report, fmt.Errorf("failed to query top stations: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var side, category string
		var c entities.StationCount
		if err := rows.Scan(&side, &category, &c.StationID, &c.StationName, &c.Trips); err != nil {
			return report, fmt.Errorf("failed to scan row: %v", err)
		}
		switch {
		case side == "start" && category == entities.CategoryCasual:
			report.Top5.Starts.Casual = append(report.Top5.Starts.Casual, c)
		case side == "start" && category == entities.CategoryMember:
			report.Top5.Starts.Member = append(report.Top5.Starts.Member, c)
		case side == "end" && category == entities.CategoryCasual:
			report.Top5.Ends.Casual = append(report.Top5.Ends.Casual, c)
		case side == "end" && category == entities.CategoryMember:
			report.Top5.Ends.Member = append(report.Top5.Ends.Member, c)
		}
	}

	if err := rows.Err(); err != nil {
		return report, fmt.Errorf("error during row iteration: %v", err)
	}

	return report, nil
}

// GetLastUpdateTime returns the most recent aggregate write, zero when the
// repository is empty
func (r *SQLiteReportRepository) GetLastUpdateTime() (time.Time, error) {
	var updatedAt sql.NullTime
	err := r.db.QueryRow("SELECT updated_at FROM monthly_totals ORDER BY updated_at DESC LIMIT 1").
		Scan(&updatedAt)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last update time: %v", err)
	}
	if !updatedAt.Valid {
		return time.Time{}, nil
	}
	return updatedAt.Time, nil
}
