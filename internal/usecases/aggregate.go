package usecases

import (
	"sort"

	"github.com/mzivkov/bikedash/internal/entities"
)

// unknownStation is the placeholder bucket for rows without station data
const unknownStation = "Unknown"

// topStationsLimit caps each leaderboard
const topStationsLimit = 5

// TotalRides returns the number of trips in a set. Archives are already
// one-per-month, so the row count is the monthly total.
func TotalRides(set entities.TripSet) int {
	return len(set.Records)
}

// GroupStationCounts counts trips per station for one rider category.
// byStart selects the start or end station of each trip. An absent station
// id or name becomes the literal "Unknown", so every row without station
// data collapses into a single bucket rather than one bucket per row.
func GroupStationCounts(set entities.TripSet, byStart bool, category string) []entities.StationCount {
	type stationKey struct {
		id   string
		name string
	}

	counts := make(map[stationKey]int)
	for _, rec := range set.Records {
		if rec.RiderCategory != category {
			continue
		}
		id, name := rec.EndStationID, rec.EndStationName
		if byStart {
			id, name = rec.StartStationID, rec.StartStationName
		}
		if id == "" {
			id = unknownStation
		}
		if name == "" {
			name = unknownStation
		}
		counts[stationKey{id, name}]++
	}

	result := make([]entities.StationCount, 0, len(counts))
	for key, n := range counts {
		result = append(result, entities.StationCount{
			StationID:   key.id,
			StationName: key.name,
			Trips:       n,
		})
	}
	// Map iteration order is random; fix the group order so downstream
	// ranking is deterministic.
	sort.Slice(result, func(i, j int) bool {
		if result[i].StationID != result[j].StationID {
			return result[i].StationID < result[j].StationID
		}
		return result[i].StationName < result[j].StationName
	})
	return result
}

// TopStations returns the up-to-5 highest-count stations, descending by
// trips. Equal counts are ordered lexicographically by station id, then
// name, so rankings are stable across runs. Never pads: the result length
// is min(5, distinct groups).
func TopStations(counts []entities.StationCount) []entities.StationCount {
	ranked := make([]entities.StationCount, len(counts))
	copy(ranked, counts)

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Trips != ranked[j].Trips {
			return ranked[i].Trips > ranked[j].Trips
		}
		if ranked[i].StationID != ranked[j].StationID {
			return ranked[i].StationID < ranked[j].StationID
		}
		return ranked[i].StationName < ranked[j].StationName
	})

	if len(ranked) > topStationsLimit {
		ranked = ranked[:topStationsLimit]
	}
	return ranked
}

// BuildTopStationsReport assembles the four leaderboards for one month
func BuildTopStationsReport(set entities.TripSet) entities.TopStationsReport {
	return entities.TopStationsReport{
		LatestMonth: set.YearMonth,
		Top5: entities.TopStations{
			Starts: entities.CategoryLeaders{
				Casual: TopStations(GroupStationCounts(set, true, entities.CategoryCasual)),
				Member: TopStations(GroupStationCounts(set, true, entities.CategoryMember)),
			},
			Ends: entities.CategoryLeaders{
				Casual: TopStations(GroupStationCounts(set, false, entities.CategoryCasual)),
				Member: TopStations(GroupStationCounts(set, false, entities.CategoryMember)),
			},
		},
	}
}
