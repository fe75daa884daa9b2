// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const dblpFixture = `{
  "result": {
    "hits": {
      "@total": "2",
      "hit": [
        {
          "info": {
            "authors": {
              "author": [
                {"@pid": "83/1234", "text": "Ashish Vaswani"},
                {"@pid": "106/5997", "text": "Wei Wang 0001"}
              ]
            },
            "title": "Attention is All you Need.",
            "venue": "NIPS",
            "year": "2017",
            "type": "Conference and Workshop Papers",
            "doi": "10.5555/3295222.3295349",
            "ee": "https://papers.nips.cc/paper/7181",
            "url": "https://dblp.org/rec/conf/nips/VaswaniSPUJGKP17"
          }
        },
        {
          "info": {
            "authors": {
              "author": {"@pid": "50/999", "text": "Solo Author"}
            },
            "title": "A Single Author Entry",
            "venue": ["CoRR", "ICLR"],
            "year": "2021",
            "url": "https://dblp.org/rec/journals/corr/solo"
          }
        }
      ]
    }
  }
}`

const dblpEmptyFixture = `{"result": {"hits": {"@total": "0"}}}`

func TestDblpSearchByTitle(t *testing.T) {
	var capturedReq *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, dblpFixture)
	}))
	defer ts.Close()

	old := dblpAPIBase
	dblpAPIBase = ts.URL
	defer func() { dblpAPIBase = old }()

	c := &DblpClient{Client: ts.Client(), UserAgent: "citecheck-test"}
	records, err := c.SearchByTitle(context.Background(), "attention is all you need", 4)
	if err != nil {
		t.Fatalf("SearchByTitle: %v", err)
	}

	q := capturedReq.URL.Query()
	if got := q.Get("q"); got != "attention is all you need" {
		t.Errorf("q param = %q", got)
	}
	if got := q.Get("format"); got != "json" {
		t.Errorf("format param = %q, want %q", got, "json")
	}
	if got := q.Get("h"); got != "4" {
		t.Errorf("h param = %q, want %q", got, "4")
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.Source != "dblp" {
		t.Errorf("Source = %q, want %q", first.Source, "dblp")
	}
	if first.Title != "Attention is All you Need" {
		t.Errorf("Title = %q, want trailing period stripped", first.Title)
	}
	wantAuthors := []string{"Ashish Vaswani", "Wei Wang"}
	if len(first.Authors) != 2 || first.Authors[0] != wantAuthors[0] || first.Authors[1] != wantAuthors[1] {
		t.Errorf("Authors = %v, want %v (homonym suffix stripped)", first.Authors, wantAuthors)
	}
	if first.Year != "2017" || first.Venue != "NIPS" {
		t.Errorf("Year/Venue = %q/%q", first.Year, first.Venue)
	}
	if first.URL != "https://papers.nips.cc/paper/7181" {
		t.Errorf("URL = %q, want the ee link preferred", first.URL)
	}

	second := records[1]
	if len(second.Authors) != 1 || second.Authors[0] != "Solo Author" {
		t.Errorf("Authors = %v, want the single-object form decoded", second.Authors)
	}
	if second.Venue != "CoRR" {
		t.Errorf("Venue = %q, want the first venue of the array", second.Venue)
	}
	if second.URL != "https://dblp.org/rec/journals/corr/solo" {
		t.Errorf("URL = %q, want the url fallback", second.URL)
	}
}

func TestDblpSearchByTitleNoHits(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, dblpEmptyFixture)
	}))
	defer ts.Close()

	old := dblpAPIBase
	dblpAPIBase = ts.URL
	defer func() { dblpAPIBase = old }()

	c := &DblpClient{Client: ts.Client()}
	records, err := c.SearchByTitle(context.Background(), "no such paper", 3)
	if err != nil {
		t.Fatalf("SearchByTitle: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestDblpAuthorListForms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"array of objects", `{"author": [{"text": "A"}, {"text": "B"}]}`, []string{"A", "B"}},
		{"single object", `{"author": {"text": "A"}}`, []string{"A"}},
		{"bare string", `{"author": "A"}`, []string{"A"}},
		{"array of strings", `{"author": ["A", "B"]}`, []string{"A", "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list dblpAuthorList
			if err := json.Unmarshal([]byte(tt.in), &list); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if len(list.Author) != len(tt.want) {
				t.Fatalf("got %d authors, want %d", len(list.Author), len(tt.want))
			}
			for i, w := range tt.want {
				if list.Author[i].Text != w {
					t.Errorf("Author[%d] = %q, want %q", i, list.Author[i].Text, w)
				}
			}
		})
	}
}
