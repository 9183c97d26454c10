package integration

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockListingServer serves a fixed listing response at the bucket root
func mockListingServer(contentType, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, body)
	}))
}

func TestListArchivesHTMLListing(t *testing.T) {
	body := `<!DOCTYPE html>
<html><body><table>
<tr><td><a href="/tripdata/JC-202501-citibike-tripdata.csv.zip">JC-202501-citibike-tripdata.csv.zip</a></td></tr>
<tr><td><a href="/tripdata/JC-202502-citibike-tripdata.csv.zip">JC-202502-citibike-tripdata.csv.zip</a></td></tr>
<tr><td><a href="/tripdata/202501-citibike-tripdata.csv.zip">202501-citibike-tripdata.csv.zip</a></td></tr>
<tr><td><a href="/tripdata/index.html">index</a></td></tr>
</table></body></html>`
	server := mockListingServer("text/html", body)
	defer server.Close()

	source := NewTripDataSource(server.URL, "JC")
	names, err := source.ListArchives()
	if err != nil {
		t.Fatalf("ListArchives failed: %v", err)
	}

	if len(names) != 2 {
		t.Fatalf("Expected 2 JC archives, got %d: %v", len(names), names)
	}
	if !names["JC-202501-citibike-tripdata.csv.zip"] || !names["JC-202502-citibike-tripdata.csv.zip"] {
		t.Errorf("Expected both JC archives in the index, got %v", names)
	}
}

func TestListArchivesS3XMLListing(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult>
  <Name>tripdata</Name>
  <Contents><Key>JC-202506-citibike-tripdata.csv.zip</Key></Contents>
  <Contents><Key>JC-202507-citibike-tripdata.csv.zip</Key></Contents>
  <Contents><Key>202506-citibike-tripdata.csv.zip</Key></Contents>
  <Contents><Key>misc/notes.txt</Key></Contents>
</ListBucketResult>`
	server := mockListingServer("application/xml", body)
	defer server.Close()

	source := NewTripDataSource(server.URL, "JC")
	names, err := source.ListArchives()
	if err != nil {
		t.Fatalf("ListArchives failed: %v", err)
	}

	if len(names) != 2 {
		t.Fatalf("Expected 2 JC archives, got %d: %v", len(names), names)
	}
	if !names["JC-202506-citibike-tripdata.csv.zip"] || !names["JC-202507-citibike-tripdata.csv.zip"] {
		t.Errorf("Expected both JC archives in the index, got %v", names)
	}
}

func TestListArchivesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	source := NewTripDataSource(server.URL, "JC")
	if _, err := source.ListArchives(); err == nil {
		t.Fatal("Expected an error when the index endpoint fails")
	}
}
