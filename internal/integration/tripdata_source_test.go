package integration

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestArchiveName(t *testing.T) {
	source := NewTripDataSource("", "")

	name, err := source.ArchiveName(2025, 3)
	if err != nil {
		t.Fatalf("ArchiveName failed: %v", err)
	}
	want := "JC-202503-citibike-tripdata.csv.zip"
	if name != want {
		t.Errorf("ArchiveName = %q, want %q", name, want)
	}
}

func TestArchiveURL(t *testing.T) {
	source := NewTripDataSource("https://example.test/bucket/", "NYC")

	url, err := source.ArchiveURL(2025, 11)
	if err != nil {
		t.Fatalf("ArchiveURL failed: %v", err)
	}
	want := "https://example.test/bucket/NYC-202511-citibike-tripdata.csv.zip"
	if url != want {
		t.Errorf("ArchiveURL = %q, want %q", url, want)
	}
}

func TestArchiveNameInvalidMonth(t *testing.T) {
	source := NewTripDataSource("", "")

	for _, month := range []int{0, 13, -1} {
		if _, err := source.ArchiveName(2025, month); !errors.Is(err, ErrInvalidMonth) {
			t.Errorf("ArchiveName(2025, %d): expected ErrInvalidMonth, got %v", month, err)
		}
		if _, err := source.ArchiveURL(2025, month); !errors.Is(err, ErrInvalidMonth) {
			t.Errorf("ArchiveURL(2025, %d): expected ErrInvalidMonth, got %v", month, err)
		}
	}
}

func TestFetchArchiveFound(t *testing.T) {
	payload := []byte("zip-bytes-here")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		io.Copy(w, bytes.NewReader(payload))
	}))
	defer server.Close()

	source := NewTripDataSource(server.URL, "JC")
	url, err := source.ArchiveURL(2025, 1)
	if err != nil {
		t.Fatalf("ArchiveURL failed: %v", err)
	}

	data, found, err := source.FetchArchive(url)
	if err != nil {
		t.Fatalf("FetchArchive failed: %v", err)
	}
	if !found {
		t.Fatal("Expected archive to be reported as found")
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("Fetched %d bytes, want %d", len(data), len(payload))
	}
}

func TestFetchArchiveNotPublished(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		source := NewTripDataSource(server.URL, "JC")
		data, found, err := source.FetchArchive(server.URL + "/JC-202509-citibike-tripdata.csv.zip")
		server.Close()

		if err != nil {
			t.Errorf("Status %d: expected no error, got %v", status, err)
		}
		if found {
			t.Errorf("Status %d: expected found=false", status)
		}
		if data != nil {
			t.Errorf("Status %d: expected no data", status)
		}
	}
}

func TestFetchArchiveServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	source := NewTripDataSource(server.URL, "JC")
	_, found, err := source.FetchArchive(server.URL + "/JC-202509-citibike-tripdata.csv.zip")
	if err == nil {
		t.Fatal("Expected an error for a 500 response")
	}
	if found {
		t.Error("A failed fetch must not report the archive as found")
	}
}

func TestFetchArchiveUnreachableHost(t *testing.T) {
	source := NewTripDataSource("http://127.0.0.1:1", "JC")
	_, found, err := source.FetchArchive("http://127.0.0.1:1/JC-202501-citibike-tripdata.csv.zip")
	if err == nil {
		t.Fatal("Expected a transport error")
	}
	if found {
		t.Error("A transport error must not report the archive as found")
	}
}
