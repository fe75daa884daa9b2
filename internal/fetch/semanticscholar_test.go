// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const semanticPaperFixture = `{
  "paperId": "204e3073870fae3d05bcbc2f6a8e263d9b72e776",
  "title": "BERT: Pre-training of Deep Bidirectional Transformers for Language Understanding",
  "year": 2019,
  "venue": "NAACL",
  "url": "https://www.semanticscholar.org/paper/204e",
  "authors": [
    {"authorId": "1", "name": "Jacob Devlin"},
    {"authorId": "2", "name": "Ming-Wei Chang"}
  ],
  "externalIds": {"DOI": "10.18653/v1/n19-1423", "ArXiv": "1810.04805"}
}`

const semanticSearchFixture = `{
  "total": 2,
  "data": [
    {
      "paperId": "a",
      "title": "First Result",
      "year": 2020,
      "authors": [{"authorId": "1", "name": "A Author"}],
      "externalIds": {}
    },
    {
      "paperId": "b",
      "title": "Second Result",
      "year": 2021,
      "externalIds": {"DOI": "10.1000/xyz"}
    }
  ]
}`

func TestSemanticScholarFetchByIdentifier(t *testing.T) {
	var capturedReq *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, semanticPaperFixture)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	c := &SemanticScholarClient{Client: ts.Client(), APIKey: "test-key-123"}
	rec, err := c.FetchByIdentifier(context.Background(), "doi:10.18653/v1/n19-1423")
	if err != nil {
		t.Fatalf("FetchByIdentifier: %v", err)
	}
	if rec == nil {
		t.Fatal("FetchByIdentifier returned nil record")
	}

	if got := capturedReq.URL.Path; got != "/DOI:10.18653/v1/n19-1423" {
		t.Errorf("request path = %q, want DOI lookup path", got)
	}
	if got := capturedReq.Header.Get("x-api-key"); got != "test-key-123" {
		t.Errorf("x-api-key header = %q", got)
	}
	fields := capturedReq.URL.Query().Get("fields")
	for _, f := range []string{"title", "authors", "year", "venue", "externalIds", "url"} {
		if !strings.Contains(fields, f) {
			t.Errorf("fields param %q missing %q", fields, f)
		}
	}

	if rec.Source != "semantic_scholar" {
		t.Errorf("Source = %q, want %q", rec.Source, "semantic_scholar")
	}
	if rec.Year != "2019" || rec.Venue != "NAACL" {
		t.Errorf("Year/Venue = %q/%q", rec.Year, rec.Venue)
	}
	if rec.DOI != "10.18653/v1/n19-1423" || rec.ArxivID != "1810.04805" {
		t.Errorf("DOI/ArxivID = %q/%q", rec.DOI, rec.ArxivID)
	}
	if len(rec.Authors) != 2 || rec.Authors[1] != "Ming-Wei Chang" {
		t.Errorf("Authors = %v", rec.Authors)
	}
}

func TestSemanticScholarFetchByIdentifierNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": "Paper not found"}`)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	c := &SemanticScholarClient{Client: ts.Client()}
	rec, err := c.FetchByIdentifier(context.Background(), "10.9999/missing")
	if err != nil {
		t.Fatalf("FetchByIdentifier: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record for HTTP 404, got %+v", rec)
	}
}

func TestSemanticScholarSearchByTitle(t *testing.T) {
	var capturedReq *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, semanticSearchFixture)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	c := &SemanticScholarClient{Client: ts.Client()}
	records, err := c.SearchByTitle(context.Background(), "bert pretraining", 2)
	if err != nil {
		t.Fatalf("SearchByTitle: %v", err)
	}

	if got := capturedReq.URL.Path; got != "/search" {
		t.Errorf("request path = %q, want %q", got, "/search")
	}
	q := capturedReq.URL.Query()
	if got := q.Get("query"); got != "bert pretraining" {
		t.Errorf("query param = %q", got)
	}
	if got := q.Get("limit"); got != "2" {
		t.Errorf("limit param = %q, want %q", got, "2")
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Title != "First Result" || records[1].DOI != "10.1000/xyz" {
		t.Errorf("records = %+v", records)
	}
	// No key configured, so no header sent.
	if got := capturedReq.Header.Get("x-api-key"); got != "" {
		t.Errorf("x-api-key header = %q, want empty", got)
	}
}
