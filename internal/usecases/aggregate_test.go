package usecases

import (
	"testing"
	"time"

	"github.com/mzivkov/bikedash/internal/entities"
)

func trip(category, startID, startName, endID, endName string) entities.TripRecord {
	return entities.TripRecord{
		StartedAt:        time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
		RiderCategory:    category,
		StartStationID:   startID,
		StartStationName: startName,
		EndStationID:     endID,
		EndStationName:   endName,
	}
}

func TestTotalRides(t *testing.T) {
	if got := TotalRides(entities.TripSet{}); got != 0 {
		t.Errorf("TotalRides of empty set = %d, want 0", got)
	}

	set := entities.TripSet{Records: []entities.TripRecord{
		trip(entities.CategoryMember, "A", "Alpha", "B", "Beta"),
		trip(entities.CategoryCasual, "A", "Alpha", "B", "Beta"),
		trip(entities.CategoryUnknown, "", "", "", ""),
	}}
	if got := TotalRides(set); got != 3 {
		t.Errorf("TotalRides = %d, want 3 (category-independent)", got)
	}
}

func TestGroupStationCountsFiltersCategory(t *testing.T) {
	set := entities.TripSet{Records: []entities.TripRecord{
		trip(entities.CategoryCasual, "A", "Alpha", "B", "Beta"),
		trip(entities.CategoryCasual, "A", "Alpha", "C", "Gamma"),
		trip(entities.CategoryMember, "A", "Alpha", "B", "Beta"),
		trip(entities.CategoryUnknown, "A", "Alpha", "B", "Beta"),
	}}

	counts := GroupStationCounts(set, true, entities.CategoryCasual)
	if len(counts) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(counts))
	}
	if counts[0].StationID != "A" || counts[0].Trips != 2 {
		t.Errorf("Got %+v, want station A with 2 trips", counts[0])
	}
}

func TestGroupStationCountsByEndStation(t *testing.T) {
	set := entities.TripSet{Records: []entities.TripRecord{
		trip(entities.CategoryMember, "A", "Alpha", "B", "Beta"),
		trip(entities.CategoryMember, "C", "Gamma", "B", "Beta"),
		trip(entities.CategoryMember, "C", "Gamma", "D", "Delta"),
	}}

	counts := GroupStationCounts(set, false, entities.CategoryMember)
	if len(counts) != 2 {
		t.Fatalf("Expected 2 end-station groups, got %d", len(counts))
	}
	for _, c := range counts {
		if c.StationID == "B" && c.Trips != 2 {
			t.Errorf("Station B trips = %d, want 2", c.Trips)
		}
	}
}

func TestGroupStationCountsUnknownCollapse(t *testing.T) {
	// Every row without station data for a category lands in one bucket
	set := entities.TripSet{Records: []entities.TripRecord{
		trip(entities.CategoryCasual, "", "", "", ""),
		trip(entities.CategoryCasual, "", "", "", ""),
		trip(entities.CategoryCasual, "", "", "", ""),
	}}

	counts := GroupStationCounts(set, true, entities.CategoryCasual)
	if len(counts) != 1 {
		t.Fatalf("Expected a single Unknown bucket, got %d groups", len(counts))
	}
	want := entities.StationCount{StationID: "Unknown", StationName: "Unknown", Trips: 3}
	if counts[0] != want {
		t.Errorf("Got %+v, want %+v", counts[0], want)
	}
}

func TestGroupStationCountsPartialStationData(t *testing.T) {
	set := entities.TripSet{Records: []entities.TripRecord{
		trip(entities.CategoryMember, "A", "", "B", "Beta"),
	}}

	counts := GroupStationCounts(set, true, entities.CategoryMember)
	if counts[0].StationID != "A" || counts[0].StationName != "Unknown" {
		t.Errorf("Got %+v, want id A with Unknown name", counts[0])
	}
}

func TestTopStationsOrderingAndLimit(t *testing.T) {
	counts := []entities.StationCount{
		{StationID: "A", StationName: "Alpha", Trips: 3},
		{StationID: "B", StationName: "Beta", Trips: 9},
		{StationID: "C", StationName: "Gamma", Trips: 1},
		{StationID: "D", StationName: "Delta", Trips: 7},
		{StationID: "E", StationName: "Epsilon", Trips: 5},
		{StationID: "F", StationName: "Zeta", Trips: 2},
		{StationID: "G", StationName: "Eta", Trips: 8},
	}

	top := TopStations(counts)
	if len(top) != 5 {
		t.Fatalf("Expected 5 entries, got %d", len(top))
	}

	wantOrder := []string{"B", "G", "D", "E", "A"}
	total := 0
	for i, c := range top {
		if c.StationID != wantOrder[i] {
			t.Errorf("Position %d: got %s, want %s", i, c.StationID, wantOrder[i])
		}
		if i > 0 && top[i-1].Trips < c.Trips {
			t.Errorf("Trips not descending at position %d", i)
		}
		total += c.Trips
	}

	sum := 0
	for _, c := range counts {
		sum += c.Trips
	}
	if total > sum {
		t.Errorf("Top-5 trips %d exceed total trips %d", total, sum)
	}
}

func TestTopStationsFewerGroupsThanLimit(t *testing.T) {
	counts := []entities.StationCount{
		{StationID: "A", StationName: "Alpha", Trips: 2},
		{StationID: "B", StationName: "Beta", Trips: 4},
	}

	top := TopStations(counts)
	if len(top) != 2 {
		t.Fatalf("Expected 2 entries without padding, got %d", len(top))
	}
	if top[0].StationID != "B" {
		t.Errorf("Top entry = %s, want B", top[0].StationID)
	}
}

func TestTopStationsTieBreak(t *testing.T) {
	// Equal counts order lexicographically by station id
	counts := []entities.StationCount{
		{StationID: "Z", StationName: "Zulu", Trips: 4},
		{StationID: "A", StationName: "Alpha", Trips: 4},
		{StationID: "M", StationName: "Mike", Trips: 4},
	}

	top := TopStations(counts)
	wantOrder := []string{"A", "M", "Z"}
	for i, c := range top {
		if c.StationID != wantOrder[i] {
			t.Errorf("Position %d: got %s, want %s", i, c.StationID, wantOrder[i])
		}
	}
}

func TestTopStationsDoesNotMutateInput(t *testing.T) {
	counts := []entities.StationCount{
		{StationID: "A", StationName: "Alpha", Trips: 1},
		{StationID: "B", StationName: "Beta", Trips: 2},
	}

	TopStations(counts)
	if counts[0].StationID != "A" {
		t.Error("TopStations reordered its input slice")
	}
}

func TestBuildTopStationsReport(t *testing.T) {
	set := entities.TripSet{
		YearMonth: "2025-07",
		Records: []entities.TripRecord{
			trip(entities.CategoryCasual, "A", "Alpha", "X", "Xi"),
			trip(entities.CategoryCasual, "A", "Alpha", "X", "Xi"),
			trip(entities.CategoryCasual, "A", "Alpha", "Y", "Upsilon"),
			trip(entities.CategoryCasual, "B", "Beta", "Y", "Upsilon"),
			trip(entities.CategoryCasual, "B", "Beta", "X", "Xi"),
			trip(entities.CategoryMember, "C", "Gamma", "X", "Xi"),
		},
	}

	report := BuildTopStationsReport(set)
	if report.LatestMonth != "2025-07" {
		t.Errorf("LatestMonth = %q, want 2025-07", report.LatestMonth)
	}

	starts := report.Top5.Starts.Casual
	if len(starts) != 2 {
		t.Fatalf("Expected 2 casual start groups, got %d", len(starts))
	}
	if starts[0].StationID != "A" || starts[0].Trips != 3 {
		t.Errorf("Top casual start = %+v, want A with 3 trips", starts[0])
	}
	if starts[1].StationID != "B" || starts[1].Trips != 2 {
		t.Errorf("Second casual start = %+v, want B with 2 trips", starts[1])
	}

	members := report.Top5.Starts.Member
	if len(members) != 1 || members[0].StationID != "C" {
		t.Errorf("Member starts = %+v, want only C", members)
	}
}
