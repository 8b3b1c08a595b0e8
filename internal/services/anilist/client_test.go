package anilist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cherry0021/ryot/internal/models"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestNewClientRejectsOtherLots(t *testing.T) {
	if _, err := NewClient(models.LotMovie, testLogger()); err == nil {
		t.Fatal("expected an error for an unsupported lot")
	}
}

func TestDetailsAnime(t *testing.T) {
	var gotBody struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"Media": {
			"id": 5114,
			"title": {"romaji": "Hagane no Renkinjutsushi", "english": "Fullmetal Alchemist: Brotherhood"},
			"description": "Two brothers.",
			"coverImage": {"extraLarge": "https://img.example/cover.jpg"},
			"startDate": {"year": 2009, "month": 4, "day": 5},
			"genres": ["Action", "Adventure"],
			"episodes": 64
		}}}`))
	}))
	defer ts.Close()

	client, err := NewClient(models.LotAnime, testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client = client.WithEndpoint(ts.URL)

	metadata, err := client.Details(context.Background(), "5114")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}

	if !strings.Contains(gotBody.Query, "Media(id: $id, type: $type)") {
		t.Errorf("unexpected query: %q", gotBody.Query)
	}
	if gotBody.Variables["type"] != "ANIME" {
		t.Errorf("expected ANIME media type, got %v", gotBody.Variables["type"])
	}

	if metadata.Lot != models.LotAnime || metadata.Source != models.SourceAnilist {
		t.Errorf("unexpected lot/source: %s/%s", metadata.Lot, metadata.Source)
	}
	if metadata.Identifier != "5114" {
		t.Errorf("unexpected identifier: %q", metadata.Identifier)
	}
	if metadata.Title != "Hagane no Renkinjutsushi" {
		t.Errorf("expected the romaji title, got %q", metadata.Title)
	}
	if metadata.PublishDate != "2009-04-05" {
		t.Errorf("unexpected publish date: %q", metadata.PublishDate)
	}
	if metadata.AnimeSpecifics == nil ||
		metadata.AnimeSpecifics.Episodes == nil ||
		*metadata.AnimeSpecifics.Episodes != 64 {
		t.Errorf("unexpected specifics: %+v", metadata.AnimeSpecifics)
	}
}

func TestDetailsTitleFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"Media": {
			"id": 30002,
			"title": {"romaji": "", "english": "Berserk"},
			"chapters": 364,
			"volumes": 41
		}}}`))
	}))
	defer ts.Close()

	client, err := NewClient(models.LotManga, testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client = client.WithEndpoint(ts.URL)

	metadata, err := client.Details(context.Background(), "30002")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if metadata.Title != "Berserk" {
		t.Errorf("expected the english title fallback, got %q", metadata.Title)
	}
	if metadata.MangaSpecifics == nil ||
		metadata.MangaSpecifics.Chapters == nil ||
		*metadata.MangaSpecifics.Chapters != 364 {
		t.Errorf("unexpected specifics: %+v", metadata.MangaSpecifics)
	}
}

func TestDetailsGraphQLError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": null, "errors": [{"message": "Not Found."}]}`))
	}))
	defer ts.Close()

	client, err := NewClient(models.LotAnime, testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client = client.WithEndpoint(ts.URL)

	_, err = client.Details(context.Background(), "1")
	if err == nil || !strings.Contains(err.Error(), "Not Found.") {
		t.Fatalf("expected the GraphQL error message, got %v", err)
	}
}

func TestDetailsInvalidIdentifier(t *testing.T) {
	client, err := NewClient(models.LotAnime, testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.Details(context.Background(), "not-a-number"); err == nil {
		t.Fatal("expected an error for a non-numeric identifier")
	}
}

func TestSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"Page": {
			"pageInfo": {"total": 120, "hasNextPage": true},
			"media": [
				{"id": 1, "title": {"romaji": "First"}},
				{"id": 2, "title": {"romaji": "Second"}}
			]
		}}}`))
	}))
	defer ts.Close()

	client, err := NewClient(models.LotAnime, testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client = client.WithEndpoint(ts.URL)

	results, err := client.Search(context.Background(), "test", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results.Total != 120 {
		t.Errorf("unexpected total: %d", results.Total)
	}
	if len(results.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(results.Items))
	}
	// Results keep the order the API listed them in
	if results.Items[0].Title != "First" || results.Items[1].Title != "Second" {
		t.Errorf("unexpected order: %q, %q", results.Items[0].Title, results.Items[1].Title)
	}
	if results.NextPage == nil || *results.NextPage != 2 {
		t.Errorf("expected next page 2, got %v", results.NextPage)
	}
}
