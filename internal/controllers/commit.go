package controllers

import (
	"context"
	"errors"
	"fmt"

	"github.com/cherry0021/ryot/internal/models"
	"github.com/cherry0021/ryot/internal/providers"
	"github.com/sirupsen/logrus"
	"github.com/timshannon/bolthold"
)

// ErrNoProvider is returned when no provider serves a source/lot pair
var ErrNoProvider = errors.New("no provider registered")

// CommitController imports provider items into the local store
type CommitController struct {
	db       *models.Database
	registry providers.Registry
	logger   *logrus.Logger
}

// NewCommitController creates a new commit controller
func NewCommitController(db *models.Database, registry providers.Registry, logger *logrus.Logger) *CommitController {
	return &CommitController{
		db:       db,
		registry: registry,
		logger:   logger,
	}
}

// CommitMedia fetches an item from its provider and stores it. Committing
// an already stored item returns the existing record untouched.
func (c *CommitController) CommitMedia(ctx context.Context, lot models.MetadataLot, source models.MetadataSource, identifier string) (*models.Metadata, error) {
	existing, err := c.db.GetMetadataByIdentifier(identifier, source)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, bolthold.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up metadata: %w", err)
	}

	provider := c.registry.For(source, lot)
	if provider == nil {
		return nil, fmt.Errorf("%w for source %q and lot %q", ErrNoProvider, source, lot)
	}

	metadata, err := provider.Details(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch details from %s: %w", source, err)
	}

	if err := c.db.CreateMetadata(metadata); err != nil {
		return nil, fmt.Errorf("failed to store metadata: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"metadata_id": metadata.ID,
		"title":       metadata.Title,
		"source":      source,
		"lot":         lot,
	}).Info("Committed media from provider")

	return metadata, nil
}
