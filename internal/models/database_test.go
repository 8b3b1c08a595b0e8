package models

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/timshannon/bolthold"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestMetadataLifecycle(t *testing.T) {
	db := newTestDatabase(t)

	metadata := &Metadata{
		Identifier: "B002V02KPU",
		Lot:        LotAudioBook,
		Source:     SourceAudible,
		Title:      "The Name of the Wind",
	}
	if err := db.CreateMetadata(metadata); err != nil {
		t.Fatalf("CreateMetadata: %v", err)
	}
	if metadata.ID == 0 {
		t.Fatal("expected CreateMetadata to assign an ID")
	}
	if metadata.CreatedAt.IsZero() || metadata.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := db.GetMetadataByID(metadata.ID)
	if err != nil {
		t.Fatalf("GetMetadataByID: %v", err)
	}
	if got.Title != "The Name of the Wind" {
		t.Errorf("unexpected title: %q", got.Title)
	}

	byIdentifier, err := db.GetMetadataByIdentifier("B002V02KPU", SourceAudible)
	if err != nil {
		t.Fatalf("GetMetadataByIdentifier: %v", err)
	}
	if byIdentifier.ID != metadata.ID {
		t.Errorf("expected ID %d, got %d", metadata.ID, byIdentifier.ID)
	}

	if _, err := db.GetMetadataByIdentifier("B002V02KPU", SourceAnilist); !errors.Is(err, bolthold.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a different source, got %v", err)
	}

	got.Title = "Updated"
	if err := db.UpdateMetadata(got); err != nil {
		t.Fatalf("UpdateMetadata: %v", err)
	}
	updated, err := db.GetMetadataByID(metadata.ID)
	if err != nil {
		t.Fatalf("GetMetadataByID after update: %v", err)
	}
	if updated.Title != "Updated" {
		t.Errorf("expected updated title, got %q", updated.Title)
	}

	if err := db.DeleteMetadata(metadata.ID); err != nil {
		t.Fatalf("DeleteMetadata: %v", err)
	}
	if _, err := db.GetMetadataByID(metadata.ID); !errors.Is(err, bolthold.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSeenOperations(t *testing.T) {
	db := newTestDatabase(t)

	metadata := &Metadata{Identifier: "1", Lot: LotShow, Source: SourceCustom, Title: "Some Show"}
	if err := db.CreateMetadata(metadata); err != nil {
		t.Fatalf("CreateMetadata: %v", err)
	}

	season, episode := 1, 2
	records := []*Seen{
		{MetadataID: metadata.ID, Progress: 100},
		{MetadataID: metadata.ID, Progress: 100, ShowSeason: &season, ShowEpisode: &episode},
		{MetadataID: metadata.ID + 100, Progress: 100},
	}
	for _, seen := range records {
		if err := db.CreateSeen(seen); err != nil {
			t.Fatalf("CreateSeen: %v", err)
		}
	}

	forItem, err := db.GetSeenByMetadataID(metadata.ID)
	if err != nil {
		t.Fatalf("GetSeenByMetadataID: %v", err)
	}
	if len(forItem) != 2 {
		t.Fatalf("expected 2 seen records, got %d", len(forItem))
	}

	all, err := db.GetAllSeen()
	if err != nil {
		t.Fatalf("GetAllSeen: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 seen records, got %d", len(all))
	}

	if err := db.DeleteSeenByMetadataID(metadata.ID); err != nil {
		t.Fatalf("DeleteSeenByMetadataID: %v", err)
	}
	remaining, err := db.GetAllSeen()
	if err != nil {
		t.Fatalf("GetAllSeen after delete: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected 1 remaining record, got %d", len(remaining))
	}
}

func TestLatestSeen(t *testing.T) {
	db := newTestDatabase(t)

	metadata := &Metadata{Identifier: "1", Lot: LotMovie, Source: SourceCustom, Title: "The Matrix"}
	if err := db.CreateMetadata(metadata); err != nil {
		t.Fatalf("CreateMetadata: %v", err)
	}

	if _, err := db.LatestSeen(metadata.ID); !errors.Is(err, bolthold.ErrNotFound) {
		t.Fatalf("expected ErrNotFound without records, got %v", err)
	}

	older := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	records := []*Seen{
		{MetadataID: metadata.ID, Progress: 100, FinishedOn: &older},
		{MetadataID: metadata.ID, Progress: 100}, // undated, falls back to CreatedAt
		{MetadataID: metadata.ID, Progress: 100, FinishedOn: &newer},
	}
	for _, seen := range records {
		if err := db.CreateSeen(seen); err != nil {
			t.Fatalf("CreateSeen: %v", err)
		}
	}

	latest, err := db.LatestSeen(metadata.ID)
	if err != nil {
		t.Fatalf("LatestSeen: %v", err)
	}
	// The undated record was created just now, so it wins over both
	// dated ones
	if latest.ID != records[1].ID {
		t.Errorf("expected the undated record %d, got %d", records[1].ID, latest.ID)
	}

	byID, err := db.GetSeenByID(latest.ID)
	if err != nil {
		t.Fatalf("GetSeenByID: %v", err)
	}
	if byID.MetadataID != metadata.ID || byID.FinishedOn != nil {
		t.Errorf("unexpected record: %+v", byID)
	}

	if err := db.DeleteSeen(latest.ID); err != nil {
		t.Fatalf("DeleteSeen: %v", err)
	}
	latest, err = db.LatestSeen(metadata.ID)
	if err != nil {
		t.Fatalf("LatestSeen after delete: %v", err)
	}
	if latest.FinishedOn == nil || !latest.FinishedOn.Equal(newer) {
		t.Errorf("expected the most recently finished record, got %+v", latest)
	}
}
