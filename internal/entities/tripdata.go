// Package entities contains the core domain objects for the bikedash application
package entities

import (
	"time"
)

// Rider categories a trip can carry after normalization. Every TripRecord
// has exactly one of these; source values that cannot be resolved become
// CategoryUnknown.
const (
	CategoryMember  = "member"
	CategoryCasual  = "casual"
	CategoryUnknown = "unknown"
)

// TripRecord represents a single trip normalized to the canonical field set
type TripRecord struct {
	StartedAt        time.Time // Trip start, zero when missing or unparsable in the source
	EndedAt          time.Time // Trip end, zero when missing or unparsable in the source
	StartStationID   string
	StartStationName string
	EndStationID     string
	EndStationName   string
	RiderCategory    string // member, casual or unknown
}

// TripSet is one month's worth of normalized trips
type TripSet struct {
	YearMonth string // "YYYY-MM" the archive was fetched for
	Records   []TripRecord
}

// StationCount is one station's trip count within a grouped aggregation.
// ID and name are the literal "Unknown" when the source rows had none.
type StationCount struct {
	StationID   string `json:"station_id"`
	StationName string `json:"station_name"`
	Trips       int    `json:"trips"`
}

// MonthlyTotal is the ride count for one month
type MonthlyTotal struct {
	Month string `json:"month"` // "YYYY-MM"
	Rides int    `json:"rides"`
}

// CategoryLeaders splits a leaderboard by rider category
type CategoryLeaders struct {
	Casual []StationCount `json:"casual"`
	Member []StationCount `json:"member"`
}

// TopStations holds the four leaderboards for one month
type TopStations struct {
	Starts CategoryLeaders `json:"starts"`
	Ends   CategoryLeaders `json:"ends"`
}

// TopStationsReport is the dashboard artifact for the latest available month
type TopStationsReport struct {
	LatestMonth string      `json:"latest_month"`
	Top5        TopStations `json:"top5"`
}
