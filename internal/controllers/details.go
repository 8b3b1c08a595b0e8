package controllers

import (
	"strconv"

	"github.com/cherry0021/ryot/internal/models"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// DetailsController serves media detail records, caching them
// indefinitely until a refresh invalidates them
type DetailsController struct {
	db     *models.Database
	cache  *cache.Cache
	logger *logrus.Logger
}

// NewDetailsController creates a new details controller
func NewDetailsController(db *models.Database, logger *logrus.Logger) *DetailsController {
	return &DetailsController{
		db:     db,
		cache:  cache.New(cache.NoExpiration, cache.NoExpiration),
		logger: logger,
	}
}

// GetDetails retrieves the descriptive record for one media item
func (c *DetailsController) GetDetails(id uint64) (*models.Metadata, error) {
	key := strconv.FormatUint(id, 10)

	if cached, found := c.cache.Get(key); found {
		return cached.(*models.Metadata), nil
	}

	metadata, err := c.db.GetMetadataByID(id)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, metadata, cache.NoExpiration)
	return metadata, nil
}

// Invalidate drops one media item from the cache
func (c *DetailsController) Invalidate(id uint64) {
	c.cache.Delete(strconv.FormatUint(id, 10))
}
