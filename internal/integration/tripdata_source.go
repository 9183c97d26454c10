// Package integration handles external service interactions
package integration

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// ErrInvalidMonth is returned by archive name/URL derivation when the month
// is outside 1..12. This is a programmer error, not an upstream condition.
var ErrInvalidMonth = errors.New("month must be between 1 and 12")

// TripDataSource locates and fetches monthly trip archives from the upstream bucket
type TripDataSource struct {
	baseURL      string
	systemPrefix string
	httpClient   *http.Client
}

// NewTripDataSource creates a new trip archive source. Empty arguments fall
// back to the public tripdata bucket and the JC system.
func NewTripDataSource(baseURL, systemPrefix string) *TripDataSource {
	if baseURL == "" {
		// Default source bucket
		baseURL = "https://s3.amazonaws.com/tripdata"
	}
	if systemPrefix == "" {
		systemPrefix = "JC"
	}
	return &TripDataSource{
		baseURL:      strings.TrimRight(baseURL, "/"),
		systemPrefix: systemPrefix,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ArchiveName derives the canonical archive file name for a year and month
func (s *TripDataSource) ArchiveName(year, month int) (string, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("archive name for %d month %d: %w", year, month, ErrInvalidMonth)
	}
	return fmt.Sprintf("%s-%04d%02d-citibike-tripdata.csv.zip", s.systemPrefix, year, month), nil
}

// ArchiveURL derives the full archive URL for a year and month
func (s *TripDataSource) ArchiveURL(year, month int) (string, error) {
	name, err := s.ArchiveName(year, month)
	if err != nil {
		return "", err
	}
	return s.baseURL + "/" + name, nil
}

// FetchArchive retrieves the raw archive bytes for a URL. The second return
// value reports whether the archive exists upstream: months that have not
// been published yet answer 404 (or 403 on buckets with listing disabled)
// and are not an error.
func (s *TripDataSource) FetchArchive(url string) ([]byte, bool, error) {
	log.Printf("Sending HTTP request for archive %s", url)
	res, err := s.httpClient.Get(url)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch archive: %v", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		// Accepted, read the body below. Some bucket frontends answer with
		// application/octet-stream instead of a zip content type, so the
		// status code is the only signal checked here.
	case http.StatusNotFound, http.StatusForbidden:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("unexpected status code: %d %s", res.StatusCode, res.Status)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read archive body: %v", err)
	}
	log.Printf("Successfully fetched archive (%d bytes)", len(data))
	return data, true, nil
}
