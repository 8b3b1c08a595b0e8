package audible

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cherry0021/ryot/internal/models"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

const productJSON = `{
	"product": {
		"asin": "B002V02KPU",
		"title": "The Name of the Wind",
		"authors": [{"name": "Patrick Rothfuss"}],
		"narrators": [{"name": "Nick Podehl"}],
		"product_images": {"2400": "https://img.example/poster.jpg"},
		"publisher_summary": "A tale told in taverns.",
		"merchandising_summary": "Short blurb.",
		"release_date": "2009-05-14",
		"runtime_length_min": 662,
		"category_ladders": [
			{"ladder": [{"name": "Fiction"}, {"name": "Fantasy"}]},
			{"ladder": [{"name": "Fantasy"}, {"name": "Epic"}]}
		]
	}
}`

func TestDetails(t *testing.T) {
	var gotPath, gotGroups string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotGroups = r.URL.Query().Get("response_groups")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(productJSON))
	}))
	defer ts.Close()

	client, err := NewClient("us", testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client = client.WithBaseURL(ts.URL)

	metadata, err := client.Details(context.Background(), "B002V02KPU")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}

	if gotPath != "/B002V02KPU" {
		t.Errorf("expected ASIN in path, got %q", gotPath)
	}
	if gotGroups == "" {
		t.Error("expected response_groups query parameter")
	}

	if metadata.Lot != models.LotAudioBook || metadata.Source != models.SourceAudible {
		t.Errorf("unexpected lot/source: %s/%s", metadata.Lot, metadata.Source)
	}
	if metadata.Title != "The Name of the Wind" {
		t.Errorf("unexpected title: %q", metadata.Title)
	}
	if metadata.Description != "A tale told in taverns." {
		t.Errorf("expected the publisher summary, got %q", metadata.Description)
	}
	if len(metadata.Creators) != 2 ||
		metadata.Creators[0].Role != "Author" ||
		metadata.Creators[1].Role != "Narrator" {
		t.Errorf("unexpected creators: %+v", metadata.Creators)
	}
	// "Fantasy" appears in two ladders but must be listed once
	wantGenres := []string{"Fiction", "Fantasy", "Epic"}
	if len(metadata.Genres) != len(wantGenres) {
		t.Fatalf("expected genres %v, got %v", wantGenres, metadata.Genres)
	}
	for i, genre := range wantGenres {
		if metadata.Genres[i] != genre {
			t.Errorf("expected genres %v, got %v", wantGenres, metadata.Genres)
			break
		}
	}
	if metadata.PublishDate != "2009-05-14" {
		t.Errorf("unexpected publish date: %q", metadata.PublishDate)
	}
	if metadata.PublishYear == nil || *metadata.PublishYear != 2009 {
		t.Errorf("unexpected publish year: %v", metadata.PublishYear)
	}
	if metadata.AudioBookSpecifics == nil ||
		metadata.AudioBookSpecifics.Runtime == nil ||
		*metadata.AudioBookSpecifics.Runtime != 662 {
		t.Errorf("unexpected specifics: %+v", metadata.AudioBookSpecifics)
	}
	if len(metadata.PosterImages) != 1 || metadata.PosterImages[0] != "https://img.example/poster.jpg" {
		t.Errorf("unexpected poster images: %v", metadata.PosterImages)
	}
}

func TestSearchPagination(t *testing.T) {
	var gotPage string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPage = r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_results": 45, "products": [
			{"asin": "A1", "title": "First", "product_images": {}},
			{"asin": "A2", "title": "Second", "product_images": {}}
		]}`))
	}))
	defer ts.Close()

	client, err := NewClient("us", testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client = client.WithBaseURL(ts.URL)

	results, err := client.Search(context.Background(), "wind", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	// The upstream API pages from zero
	if gotPage != "0" {
		t.Errorf("expected page parameter 0, got %q", gotPage)
	}
	if results.Total != 45 {
		t.Errorf("unexpected total: %d", results.Total)
	}
	if len(results.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(results.Items))
	}
	if results.NextPage == nil || *results.NextPage != 2 {
		t.Errorf("expected next page 2, got %v", results.NextPage)
	}
}

func TestSearchLastPage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_results": 5, "products": []}`))
	}))
	defer ts.Close()

	client, err := NewClient("us", testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client = client.WithBaseURL(ts.URL)

	results, err := client.Search(context.Background(), "wind", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results.NextPage != nil {
		t.Errorf("expected no next page, got %v", results.NextPage)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(productJSON))
	}))
	defer ts.Close()

	client, err := NewClient("us", testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client = client.WithBaseURL(ts.URL)

	metadata, err := client.Details(context.Background(), "B002V02KPU")
	if err != nil {
		t.Fatalf("Details should succeed after a retry: %v", err)
	}
	if metadata.Title != "The Name of the Wind" {
		t.Errorf("unexpected title: %q", metadata.Title)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 requests, got %d", calls.Load())
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	client, err := NewClient("us", testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client = client.WithBaseURL(ts.URL)

	if _, err := client.Details(context.Background(), "UNKNOWN"); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	if calls.Load() != 1 {
		t.Errorf("client errors must not be retried, got %d requests", calls.Load())
	}
}

func TestUnsupportedLocale(t *testing.T) {
	if _, err := NewClient("zz", testLogger()); err == nil {
		t.Fatal("expected an error for an unsupported locale")
	}
}
