package controllers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cherry0021/ryot/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Validation errors surfaced to API callers as bad requests
var (
	ErrSeasonOnNonShow = errors.New("season selection is only valid for shows")
	ErrMissingSeason   = errors.New("episode selection requires a season")
	ErrEpisodeConflict = errors.New("whole-season update conflicts with an episode selection")
	ErrSeasonNotFound  = errors.New("season not found")
	ErrEpisodeNotFound = errors.New("episode not found")
	ErrInvalidDate     = errors.New("invalid date")
	ErrUnexpectedDate  = errors.New("an explicit date requires the in-the-past action")
	ErrUnknownAction   = errors.New("unknown progress action")
)

// IsValidation reports whether err is caused by invalid caller input
func IsValidation(err error) bool {
	for _, sentinel := range []error{
		ErrSeasonOnNonShow, ErrMissingSeason, ErrEpisodeConflict,
		ErrSeasonNotFound, ErrEpisodeNotFound, ErrInvalidDate,
		ErrUnexpectedDate, ErrUnknownAction,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// ProgressInput describes one progress update request
type ProgressInput struct {
	MetadataID uint64
	Action     models.ProgressAction
	Date       *string // ISO date, only with ActionInThePast

	// Show selection
	SeasonNumber        *int
	EpisodeNumber       *int
	AllEpisodesOfSeason bool
}

// ProgressResult reports which consumption records were written. For a
// whole-season update that failed partway, Episodes lists exactly the
// episode numbers that were recorded before the abort.
type ProgressResult struct {
	MetadataID uint64 `json:"metadataId"`
	Recorded   int    `json:"recorded"`
	Episodes   []int  `json:"episodes,omitempty"`
}

// ProgressController records consumption events
type ProgressController struct {
	db          *models.Database
	concurrency int
	logger      *logrus.Logger
}

// NewProgressController creates a new progress controller
func NewProgressController(db *models.Database, concurrency int, logger *logrus.Logger) *ProgressController {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ProgressController{
		db:          db,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Submit validates and records a progress update. A whole-season update
// writes one record per episode of the selected season through a bounded
// task group and aborts remaining writes on the first error.
func (c *ProgressController) Submit(ctx context.Context, input ProgressInput) (*ProgressResult, error) {
	finishedOn, err := resolveFinishedOn(input)
	if err != nil {
		return nil, err
	}

	metadata, err := c.db.GetMetadataByID(input.MetadataID)
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata %d: %w", input.MetadataID, err)
	}

	if metadata.Lot != models.LotShow {
		if input.SeasonNumber != nil || input.EpisodeNumber != nil || input.AllEpisodesOfSeason {
			return nil, ErrSeasonOnNonShow
		}
		return c.recordOne(metadata, nil, nil, finishedOn)
	}

	if input.EpisodeNumber != nil && input.SeasonNumber == nil {
		return nil, ErrMissingSeason
	}

	if input.AllEpisodesOfSeason {
		if input.EpisodeNumber != nil {
			return nil, ErrEpisodeConflict
		}
		if input.SeasonNumber == nil {
			return nil, ErrMissingSeason
		}
		season := metadata.ShowSpecifics.Season(*input.SeasonNumber)
		if season == nil {
			return nil, fmt.Errorf("%w: season %d of %q", ErrSeasonNotFound, *input.SeasonNumber, metadata.Title)
		}
		return c.recordSeason(ctx, metadata, season, finishedOn)
	}

	if input.SeasonNumber != nil {
		season := metadata.ShowSpecifics.Season(*input.SeasonNumber)
		if season == nil {
			return nil, fmt.Errorf("%w: season %d of %q", ErrSeasonNotFound, *input.SeasonNumber, metadata.Title)
		}
		if input.EpisodeNumber != nil && season.Episode(*input.EpisodeNumber) == nil {
			return nil, fmt.Errorf("%w: S%dE%d of %q", ErrEpisodeNotFound, *input.SeasonNumber, *input.EpisodeNumber, metadata.Title)
		}
	}

	return c.recordOne(metadata, input.SeasonNumber, input.EpisodeNumber, finishedOn)
}

// resolveFinishedOn turns the action/date pair into a consumption time.
// Nil means the item was consumed at an unknown time in the past.
func resolveFinishedOn(input ProgressInput) (*time.Time, error) {
	switch input.Action {
	case models.ActionNow:
		if input.Date != nil {
			return nil, ErrUnexpectedDate
		}
		now := time.Now()
		return &now, nil
	case models.ActionInThePast:
		if input.Date == nil {
			return nil, nil
		}
		parsed, err := time.Parse("2006-01-02", *input.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, *input.Date)
		}
		return &parsed, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, input.Action)
	}
}

// recordOne writes a single consumption record
func (c *ProgressController) recordOne(metadata *models.Metadata, season, episode *int, finishedOn *time.Time) (*ProgressResult, error) {
	seen := &models.Seen{
		MetadataID:  metadata.ID,
		Progress:    100,
		ShowSeason:  season,
		ShowEpisode: episode,
		FinishedOn:  finishedOn,
	}

	if err := c.db.CreateSeen(seen); err != nil {
		return nil, fmt.Errorf("failed to record progress: %w", err)
	}

	fields := logrus.Fields{"metadata_id": metadata.ID, "title": metadata.Title}
	if episode != nil {
		fields["season"] = *season
		fields["episode"] = *episode
	}
	c.logger.WithFields(fields).Info("Recorded progress update")

	result := &ProgressResult{MetadataID: metadata.ID, Recorded: 1}
	if episode != nil {
		result.Episodes = []int{*episode}
	}
	return result, nil
}

// recordSeason writes one consumption record per episode of the season.
// All records share the same consumption time. The first failed write
// cancels the remaining ones.
func (c *ProgressController) recordSeason(ctx context.Context, metadata *models.Metadata, season *models.ShowSeason, finishedOn *time.Time) (*ProgressResult, error) {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.concurrency)

	var mu sync.Mutex
	var recorded []int

	for i := range season.Episodes {
		episode := season.Episodes[i]
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			seasonNumber := season.SeasonNumber
			episodeNumber := episode.EpisodeNumber
			seen := &models.Seen{
				MetadataID:  metadata.ID,
				Progress:    100,
				ShowSeason:  &seasonNumber,
				ShowEpisode: &episodeNumber,
				FinishedOn:  finishedOn,
			}
			if err := c.db.CreateSeen(seen); err != nil {
				return fmt.Errorf("failed to record episode %d: %w", episodeNumber, err)
			}

			mu.Lock()
			recorded = append(recorded, episodeNumber)
			mu.Unlock()
			return nil
		})
	}

	err := group.Wait()
	sort.Ints(recorded)

	result := &ProgressResult{
		MetadataID: metadata.ID,
		Recorded:   len(recorded),
		Episodes:   recorded,
	}

	if err != nil {
		// Report what was written before the abort alongside the error
		c.logger.WithError(err).WithFields(logrus.Fields{
			"metadata_id": metadata.ID,
			"season":      season.SeasonNumber,
			"recorded":    len(recorded),
		}).Error("Whole-season update aborted")
		return result, err
	}

	c.logger.WithFields(logrus.Fields{
		"metadata_id": metadata.ID,
		"title":       metadata.Title,
		"season":      season.SeasonNumber,
		"episodes":    len(recorded),
	}).Info("Recorded whole-season progress update")

	return result, nil
}
