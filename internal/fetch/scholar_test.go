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

const scholarFixture = `<html><body>
<div id="gs_res_ccl_mid">
  <div class="gs_r gs_or gs_scl">
    <div class="gs_ri">
      <h3 class="gs_rt"><span class="gs_ct1">[PDF]</span> <a href="https://papers.nips.cc/paper/7181.pdf">Attention is all you need</a></h3>
      <div class="gs_a">A Vaswani, N Shazeer, N Parmar&#8230; - Advances in neural information processing systems, 2017 - proceedings.neurips.cc</div>
    </div>
  </div>
  <div class="gs_r gs_or gs_scl">
    <div class="gs_ri">
      <h3 class="gs_rt">[CITATION][C] Deep learning</h3>
      <div class="gs_a">Y LeCun, Y Bengio, G Hinton - nature, 2015 - nature.com</div>
    </div>
  </div>
</div>
</body></html>`

const scholarCaptchaFixture = `<html><body>
<div id="gs_captcha_ccl"><form>Please show you're not a robot</form></div>
</body></html>`

func TestScholarSearchByTitle(t *testing.T) {
	var capturedReq *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		fmt.Fprint(w, scholarFixture)
	}))
	defer ts.Close()

	old := scholarBase
	scholarBase = ts.URL
	defer func() { scholarBase = old }()

	c := &ScholarClient{Client: ts.Client()}
	records, err := c.SearchByTitle(context.Background(), "attention is all you need", 3)
	if err != nil {
		t.Fatalf("SearchByTitle: %v", err)
	}

	if got := capturedReq.URL.Query().Get("q"); got != "attention is all you need" {
		t.Errorf("q param = %q", got)
	}
	if ua := capturedReq.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla") {
		t.Errorf("User-Agent = %q, want a browser user agent", ua)
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.Source != "google_scholar" {
		t.Errorf("Source = %q, want %q", first.Source, "google_scholar")
	}
	if first.Title != "Attention is all you need" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.URL != "https://papers.nips.cc/paper/7181.pdf" {
		t.Errorf("URL = %q", first.URL)
	}
	wantAuthors := []string{"A Vaswani", "N Shazeer", "N Parmar"}
	if len(first.Authors) != 3 {
		t.Fatalf("Authors = %v, want %v", first.Authors, wantAuthors)
	}
	for i, w := range wantAuthors {
		if first.Authors[i] != w {
			t.Errorf("Authors[%d] = %q, want %q (ellipsis trimmed)", i, first.Authors[i], w)
		}
	}
	if first.Year != "2017" {
		t.Errorf("Year = %q, want %q", first.Year, "2017")
	}
	if first.Venue != "Advances in neural information processing systems" {
		t.Errorf("Venue = %q", first.Venue)
	}

	second := records[1]
	if second.Title != "Deep learning" {
		t.Errorf("Title = %q, want the [CITATION] markers stripped", second.Title)
	}
	if second.Year != "2015" || second.Venue != "nature" {
		t.Errorf("Year/Venue = %q/%q", second.Year, second.Venue)
	}
}

func TestScholarSearchByTitleMaxResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, scholarFixture)
	}))
	defer ts.Close()

	old := scholarBase
	scholarBase = ts.URL
	defer func() { scholarBase = old }()

	c := &ScholarClient{Client: ts.Client()}
	records, err := c.SearchByTitle(context.Background(), "attention", 1)
	if err != nil {
		t.Fatalf("SearchByTitle: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}

func TestScholarCaptcha(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, scholarCaptchaFixture)
	}))
	defer ts.Close()

	old := scholarBase
	scholarBase = ts.URL
	defer func() { scholarBase = old }()

	c := &ScholarClient{Client: ts.Client()}
	if _, err := c.SearchByTitle(context.Background(), "anything", 3); err == nil {
		t.Error("expected error for the CAPTCHA page")
	}
}

func TestScholarBlocked(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	old := scholarBase
	scholarBase = ts.URL
	defer func() { scholarBase = old }()

	c := &ScholarClient{Client: ts.Client()}
	if _, err := c.SearchByTitle(context.Background(), "anything", 3); err == nil {
		t.Error("expected error for HTTP 403")
	}
}
