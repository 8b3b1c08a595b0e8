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

// RefreshController keeps stored metadata in sync with its providers
type RefreshController struct {
	db       *models.Database
	registry providers.Registry
	details  *DetailsController
	logger   *logrus.Logger
}

// NewRefreshController creates a new refresh controller
func NewRefreshController(db *models.Database, registry providers.Registry, details *DetailsController, logger *logrus.Logger) *RefreshController {
	return &RefreshController{
		db:       db,
		registry: registry,
		details:  details,
		logger:   logger,
	}
}

// RefreshAll re-fetches every provider-sourced item and updates the
// store. A failing item is logged and skipped, the run continues.
func (c *RefreshController) RefreshAll(ctx context.Context) error {
	items, err := c.db.GetAllMetadata()
	if err != nil {
		return fmt.Errorf("failed to list metadata: %w", err)
	}

	refreshed := 0
	for _, existing := range items {
		provider := c.registry.For(existing.Source, existing.Lot)
		if provider == nil {
			continue
		}

		fresh, err := provider.Details(ctx, existing.Identifier)
		if err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"metadata_id": existing.ID,
				"title":       existing.Title,
				"source":      existing.Source,
			}).Warn("Failed to refresh metadata, skipping")
			continue
		}

		fresh.ID = existing.ID
		fresh.CreatedAt = existing.CreatedAt
		if err := c.db.UpdateMetadata(fresh); err != nil {
			c.logger.WithError(err).WithField("metadata_id", existing.ID).Error("Failed to update refreshed metadata")
			continue
		}

		c.details.Invalidate(existing.ID)
		refreshed++
	}

	c.logger.WithFields(logrus.Fields{
		"total":     len(items),
		"refreshed": refreshed,
	}).Info("Metadata refresh completed")

	return nil
}

// CleanupDangling deletes consumption records whose media item no
// longer exists
func (c *RefreshController) CleanupDangling() error {
	records, err := c.db.GetAllSeen()
	if err != nil {
		return fmt.Errorf("failed to list seen records: %w", err)
	}

	deleted := 0
	for _, seen := range records {
		_, err := c.db.GetMetadataByID(seen.MetadataID)
		if err == nil {
			continue
		}
		if !errors.Is(err, bolthold.ErrNotFound) {
			return fmt.Errorf("failed to check metadata %d: %w", seen.MetadataID, err)
		}

		if err := c.db.DeleteSeen(seen.ID); err != nil {
			return fmt.Errorf("failed to delete dangling seen record %d: %w", seen.ID, err)
		}
		deleted++
	}

	if deleted > 0 {
		c.logger.WithField("deleted", deleted).Info("Removed dangling seen records")
	}

	return nil
}
