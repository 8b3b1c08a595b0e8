package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cherry0021/ryot/internal/models"
	"github.com/cherry0021/ryot/internal/providers"
	"github.com/sirupsen/logrus"
)

const defaultEndpoint = "https://graphql.anilist.co"

const mediaFields = `
	id
	title { romaji english native }
	description(asHtml: false)
	coverImage { extraLarge }
	startDate { year month day }
	genres
	episodes
	chapters
	volumes
`

// Client handles communication with the AniList GraphQL API. One client
// serves a single lot: anime or manga.
type Client struct {
	endpoint   string
	lot        models.MetadataLot
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new AniList client for the given lot
func NewClient(lot models.MetadataLot, logger *logrus.Logger) (*Client, error) {
	if lot != models.LotAnime && lot != models.LotManga {
		return nil, fmt.Errorf("anilist does not serve lot %q", lot)
	}

	return &Client{
		endpoint:   defaultEndpoint,
		lot:        lot,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}, nil
}

// WithEndpoint overrides the GraphQL endpoint, used in tests
func (c *Client) WithEndpoint(endpoint string) *Client {
	if endpoint != "" {
		c.endpoint = endpoint
	}
	return c
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []graphQLError `json:"errors,omitempty"`
}

// media is one media record as returned by the GraphQL API
type media struct {
	ID    int `json:"id"`
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
		Native  string `json:"native"`
	} `json:"title"`
	Description string `json:"description"`
	CoverImage  struct {
		ExtraLarge string `json:"extraLarge"`
	} `json:"coverImage"`
	StartDate struct {
		Year  *int `json:"year"`
		Month *int `json:"month"`
		Day   *int `json:"day"`
	} `json:"startDate"`
	Genres   []string `json:"genres"`
	Episodes *int     `json:"episodes"`
	Chapters *int     `json:"chapters"`
	Volumes  *int     `json:"volumes"`
}

// mediaType returns the GraphQL MediaType value for this client's lot
func (c *Client) mediaType() string {
	if c.lot == models.LotManga {
		return "MANGA"
	}
	return "ANIME"
}

// Details fetches the full record for one item by its AniList id
func (c *Client) Details(ctx context.Context, identifier string) (*models.Metadata, error) {
	id, err := strconv.Atoi(identifier)
	if err != nil {
		return nil, fmt.Errorf("invalid anilist identifier %q: %w", identifier, err)
	}

	req := graphQLRequest{
		Query: `query($id: Int, $type: MediaType) {
			Media(id: $id, type: $type) {` + mediaFields + `}
		}`,
		Variables: map[string]any{"id": id, "type": c.mediaType()},
	}

	var out graphQLResponse[struct {
		Media *media `json:"Media"`
	}]
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	if len(out.Errors) > 0 {
		return nil, errors.New(out.Errors[0].Message)
	}
	if out.Data.Media == nil {
		return nil, fmt.Errorf("anilist media %d not found", id)
	}

	return c.convertMedia(*out.Data.Media), nil
}

// Search looks up items by free-text query
func (c *Client) Search(ctx context.Context, query string, page int) (*providers.SearchResults, error) {
	if page < 1 {
		page = 1
	}

	req := graphQLRequest{
		Query: `query($search: String, $page: Int, $perPage: Int, $type: MediaType) {
			Page(page: $page, perPage: $perPage) {
				pageInfo { total hasNextPage }
				media(search: $search, type: $type) {` + mediaFields + `}
			}
		}`,
		Variables: map[string]any{
			"search":  query,
			"page":    page,
			"perPage": providers.PageLimit,
			"type":    c.mediaType(),
		},
	}

	var out graphQLResponse[struct {
		Page struct {
			PageInfo struct {
				Total       int  `json:"total"`
				HasNextPage bool `json:"hasNextPage"`
			} `json:"pageInfo"`
			Media []media `json:"media"`
		} `json:"Page"`
	}]
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	if len(out.Errors) > 0 {
		return nil, errors.New(out.Errors[0].Message)
	}

	results := &providers.SearchResults{Total: out.Data.Page.PageInfo.Total}
	for _, m := range out.Data.Page.Media {
		results.Items = append(results.Items, c.convertMedia(m))
	}
	if out.Data.Page.PageInfo.HasNextPage {
		nextPage := page + 1
		results.NextPage = &nextPage
	}

	return results, nil
}

// do performs one GraphQL request against the AniList API
func (c *Client) do(ctx context.Context, req graphQLRequest, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	c.logger.WithField("endpoint", c.endpoint).Debug("Making AniList GraphQL request")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "ryot")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("anilist request failed with status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// convertMedia converts a GraphQL media record into a metadata record
func (c *Client) convertMedia(m media) *models.Metadata {
	metadata := &models.Metadata{
		Identifier:  strconv.Itoa(m.ID),
		Lot:         c.lot,
		Source:      models.SourceAnilist,
		Title:       m.Title.Romaji,
		Description: m.Description,
		Genres:      m.Genres,
	}

	if metadata.Title == "" {
		metadata.Title = m.Title.English
	}
	if metadata.Title == "" {
		metadata.Title = m.Title.Native
	}

	if m.CoverImage.ExtraLarge != "" {
		metadata.PosterImages = append(metadata.PosterImages, m.CoverImage.ExtraLarge)
	}

	if m.StartDate.Year != nil {
		metadata.PublishYear = m.StartDate.Year
		if m.StartDate.Month != nil && m.StartDate.Day != nil {
			metadata.PublishDate = fmt.Sprintf("%04d-%02d-%02d",
				*m.StartDate.Year, *m.StartDate.Month, *m.StartDate.Day)
		}
	}

	if c.lot == models.LotManga {
		metadata.MangaSpecifics = &models.MangaSpecifics{
			Chapters: m.Chapters,
			Volumes:  m.Volumes,
		}
	} else {
		metadata.AnimeSpecifics = &models.AnimeSpecifics{
			Episodes: m.Episodes,
		}
	}

	return metadata
}
