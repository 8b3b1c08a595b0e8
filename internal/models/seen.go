package models

import "time"

// Seen represents one recorded consumption event for a media item.
// For shows a row may address a single episode; for every other lot
// the row addresses the whole item and both numbers are nil.
type Seen struct {
	ID         uint64 `boltholdKey:"ID"`
	MetadataID uint64 `boltholdIndex:"MetadataID"`

	Progress int // percent, 100 for a completed consumption

	// Show specific fields, nil otherwise
	ShowSeason  *int
	ShowEpisode *int

	// When the item was consumed. Nil means "at some unknown time in
	// the past" (the user could not remember a date).
	FinishedOn *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
