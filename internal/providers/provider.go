package providers

import (
	"context"

	"github.com/cherry0021/ryot/internal/models"
)

// PageLimit is the number of results a provider returns per search page
const PageLimit = 20

// SearchResults represents one page of provider search results
type SearchResults struct {
	Total    int
	NextPage *int // nil when this is the last page
	Items    []*models.Metadata
}

// Provider fetches media metadata from an upstream catalogue
type Provider interface {
	// Details fetches the full descriptive record for one item. The
	// returned metadata is not yet persisted and has no ID.
	Details(ctx context.Context, identifier string) (*models.Metadata, error)

	// Search looks up items by free-text query. Pages start at 1.
	Search(ctx context.Context, query string, page int) (*SearchResults, error)
}

// Key identifies a provider by the source and lot it serves. AniList
// serves two lots with separate clients, so the source alone is not
// enough.
type Key struct {
	Source models.MetadataSource
	Lot    models.MetadataLot
}

// Registry maps a source/lot pair to its provider
type Registry map[Key]Provider

// For returns the provider for a source/lot pair, or nil if none is
// registered
func (r Registry) For(source models.MetadataSource, lot models.MetadataLot) Provider {
	return r[Key{Source: source, Lot: lot}]
}
