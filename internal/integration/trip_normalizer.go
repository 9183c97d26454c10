package integration

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/mzivkov/bikedash/internal/entities"
)

// ErrMalformedArchive is returned when an archive holds no tabular payload
// or cannot be opened at all. It is the only hard failure of normalization.
var ErrMalformedArchive = errors.New("no CSV entry found in archive")

// Recognized source columns. Labels are trimmed and lowercased before
// matching; anything not listed here is ignored.
const (
	colStartedAt        = "started_at"
	colEndedAt          = "ended_at"
	colStartStationID   = "start_station_id"
	colStartStationName = "start_station_name"
	colEndStationID     = "end_station_id"
	colEndStationName   = "end_station_name"
	colMemberCasual     = "member_casual"
	colUserType         = "usertype" // legacy schema used before member_casual
)

// legacyCategories maps the legacy usertype vocabulary onto rider categories
var legacyCategories = map[string]string{
	"subscriber": entities.CategoryMember,
	"customer":   entities.CategoryCasual,
}

// timestampLayouts tried in order. The first layout also accepts trailing
// fractional seconds, which some vendor exports carry.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// NormalizeArchive decodes the first CSV entry of a zip archive into a
// TripSet with the canonical column contract. Unknown columns are ignored,
// missing recognized columns leave fields absent, timestamps that fail to
// parse become absent, and rows whose start time falls outside targetYear
// are dropped. An archive whose CSV entry has no matching rows yields an
// empty set, not an error.
func NormalizeArchive(archive []byte, targetYear int) (entities.TripSet, error) {
	var set entities.TripSet

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return set, fmt.Errorf("failed to open archive: %v: %w", err, ErrMalformedArchive)
	}

	entry := findCSVEntry(zr)
	if entry == nil {
		return set, ErrMalformedArchive
	}
	log.Printf("Decoding archive entry %s", entry.Name)

	f, err := entry.Open()
	if err != nil {
		return set, fmt.Errorf("failed to open archive entry %s: %v: %w", entry.Name, err, ErrMalformedArchive)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		// An entry with no rows at all still counts as a found month with
		// zero rides.
		return set, nil
	}
	if err != nil {
		return set, fmt.Errorf("failed to read CSV header: %v: %w", err, ErrMalformedArchive)
	}

	cols := indexColumns(header)

	rowCount := 0
	dropped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A single ragged row must not discard the month
			log.Printf("Warning: skipping unreadable CSV row: %v", err)
			continue
		}
		rowCount++

		rec := entities.TripRecord{
			StartedAt:        parseTimestamp(field(row, cols, colStartedAt)),
			EndedAt:          parseTimestamp(field(row, cols, colEndedAt)),
			StartStationID:   field(row, cols, colStartStationID),
			StartStationName: field(row, cols, colStartStationName),
			EndStationID:     field(row, cols, colEndStationID),
			EndStationName:   field(row, cols, colEndStationName),
			RiderCategory:    riderCategory(row, cols),
		}

		// Defends against files mislabeled across a month boundary
		if !rec.StartedAt.IsZero() && rec.StartedAt.Year() != targetYear {
			dropped++
			continue
		}

		set.Records = append(set.Records, rec)
	}

	log.Printf("Parsed %d rows, kept %d, dropped %d outside %d", rowCount, len(set.Records), dropped, targetYear)
	return set, nil
}

// findCSVEntry returns the first real CSV entry of the archive. Directory
// entries and macOS resource forks are skipped; tripdata archives routinely
// carry a __MACOSX/ twin for every file.
func findCSVEntry(zr *zip.Reader) *zip.File {
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := strings.ToLower(f.Name)
		base := name
		if idx := strings.LastIndex(base, "/"); idx >= 0 {
			base = base[idx+1:]
		}
		if strings.HasPrefix(name, "__macosx/") || strings.HasPrefix(base, ".") {
			continue
		}
		if strings.HasSuffix(base, ".csv") {
			return f
		}
	}
	return nil
}

// indexColumns maps recognized columns to their header position. Vendors
// disagree on casing and padding, so labels are trimmed and lowercased, and
// a UTF-8 BOM on the first label is stripped.
func indexColumns(header []string) map[string]int {
	recognized := map[string]bool{
		colStartedAt:        true,
		colEndedAt:          true,
		colStartStationID:   true,
		colStartStationName: true,
		colEndStationID:     true,
		colEndStationName:   true,
		colMemberCasual:     true,
		colUserType:         true,
	}

	cols := make(map[string]int)
	for i, label := range header {
		label = strings.TrimPrefix(label, "\ufeff")
		label = strings.ToLower(strings.TrimSpace(label))
		if !recognized[label] {
			continue
		}
		if _, dup := cols[label]; !dup {
			cols[label] = i
		}
	}
	return cols
}

// field returns the trimmed value of a recognized column, or "" when the
// column is missing from the schema or the row is too short.
func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// riderCategory resolves the category strategies in priority order:
// member_casual, then the legacy usertype vocabulary, then unknown.
func riderCategory(row []string, cols map[string]int) string {
	if v := field(row, cols, colMemberCasual); v != "" {
		v = strings.ToLower(v)
		if v == entities.CategoryMember || v == entities.CategoryCasual {
			return v
		}
		return entities.CategoryUnknown
	}
	if v := field(row, cols, colUserType); v != "" {
		if mapped, ok := legacyCategories[strings.ToLower(v)]; ok {
			return mapped
		}
	}
	return entities.CategoryUnknown
}
