package integration

import (
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ListArchives scrapes the bucket listing page and returns the set of
// archive file names currently published for this source's system prefix.
// The listing is advisory: callers should probe months directly when the
// index cannot be fetched.
func (s *TripDataSource) ListArchives() (map[string]bool, error) {
	log.Printf("Fetching archive index from %s", s.baseURL)
	res, err := s.httpClient.Get(s.baseURL)
	if err != nil {
		log.Printf("Error fetching archive index: %v", err)
		return nil, fmt.Errorf("failed to fetch archive index: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != 200 {
		log.Printf("Received unexpected status code for archive index: %d %s", res.StatusCode, res.Status)
		return nil, fmt.Errorf("unexpected status code for archive index: %d %s", res.StatusCode, res.Status)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		log.Printf("Error parsing archive index: %v", err)
		return nil, fmt.Errorf("failed to parse archive index: %v", err)
	}

	names := make(map[string]bool)

	// HTML-style listings link each archive directly
	doc.Find("a").Each(func(i int, sel *goquery.Selection) {
		href := sel.AttrOr("href", "")
		if idx := strings.LastIndex(href, "/"); idx >= 0 {
			href = href[idx+1:]
		}
		if s.isArchiveName(href) {
			names[href] = true
		}
	})

	// S3 XML listings carry object names in <Key> elements; the HTML parser
	// keeps them as lowercase foreign elements
	doc.Find("key").Each(func(i int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Text())
		if s.isArchiveName(name) {
			names[name] = true
		}
	})

	log.Printf("Archive index lists %d %s archives", len(names), s.systemPrefix)
	return names, nil
}

func (s *TripDataSource) isArchiveName(name string) bool {
	return strings.HasPrefix(name, s.systemPrefix+"-") && strings.HasSuffix(name, ".csv.zip")
}
