package audible

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cherry0021/ryot/internal/models"
	"github.com/cherry0021/ryot/internal/providers"
	"github.com/sirupsen/logrus"
)

const (
	responseGroups = "contributors,category_ladders,media,product_attrs,product_extended_attrs"
	imageSizes     = "2400"
	maxRetries     = 3
)

// localeSuffixes maps an Audible marketplace locale to its domain suffix
var localeSuffixes = map[string]string{
	"us": "com",
	"ca": "ca",
	"gb": "co.uk",
	"au": "co.au",
	"fr": "fr",
	"de": "de",
	"jp": "co.jp",
	"it": "it",
	"in": "co.in",
	"es": "es",
}

// Client handles communication with the Audible catalogue API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new Audible API client for the given locale
func NewClient(locale string, logger *logrus.Logger) (*Client, error) {
	suffix, ok := localeSuffixes[locale]
	if !ok {
		return nil, fmt.Errorf("unsupported Audible locale: %s", locale)
	}

	return &Client{
		baseURL:    fmt.Sprintf("https://api.audible.%s/1.0/catalog/products", suffix),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}, nil
}

// WithBaseURL overrides the catalogue API base URL, used in tests
func (c *Client) WithBaseURL(baseURL string) *Client {
	if baseURL != "" {
		c.baseURL = baseURL
	}
	return c
}

// item is one product record as returned by the catalogue API
type item struct {
	ASIN            string            `json:"asin"`
	Title           string            `json:"title"`
	Authors         []namedObject     `json:"authors"`
	Narrators       []namedObject     `json:"narrators"`
	ProductImages   map[string]string `json:"product_images"`
	Merchandising   string            `json:"merchandising_summary"`
	PublisherSum    string            `json:"publisher_summary"`
	ReleaseDate     string            `json:"release_date"`
	RuntimeMinutes  *int              `json:"runtime_length_min"`
	CategoryLadders []struct {
		Ladder []namedObject `json:"ladder"`
	} `json:"category_ladders"`
}

type namedObject struct {
	Name string `json:"name"`
}

// doRequest performs a GET request against the catalogue API, retrying
// transient failures with exponential backoff. Client errors (4xx) are
// not retried.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values, result interface{}) error {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	c.logger.WithField("url", fullURL).Debug("Making Audible API request")

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "ryot")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			bodyBytes, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(bodyBytes)))
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("API request failed with status %d", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}

		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	return backoff.Retry(operation, policy)
}

// primaryQuery returns the query parameters every catalogue request carries
func primaryQuery() url.Values {
	q := url.Values{}
	q.Set("response_groups", responseGroups)
	q.Set("image_sizes", imageSizes)
	return q
}

// Details fetches the full record for one audiobook by ASIN
func (c *Client) Details(ctx context.Context, identifier string) (*models.Metadata, error) {
	var response struct {
		Product item `json:"product"`
	}

	if err := c.doRequest(ctx, "/"+identifier, primaryQuery(), &response); err != nil {
		return nil, fmt.Errorf("failed to get audiobook details: %w", err)
	}

	return c.convertItem(response.Product), nil
}

// Search looks up audiobooks by title
func (c *Client) Search(ctx context.Context, query string, page int) (*providers.SearchResults, error) {
	if page < 1 {
		page = 1
	}

	q := primaryQuery()
	q.Set("title", query)
	q.Set("num_results", strconv.Itoa(providers.PageLimit))
	q.Set("page", strconv.Itoa(page-1)) // the API pages from 0
	q.Set("products_sort_by", "Relevance")

	var response struct {
		TotalResults int    `json:"total_results"`
		Products     []item `json:"products"`
	}

	if err := c.doRequest(ctx, "", q, &response); err != nil {
		return nil, fmt.Errorf("failed to search audiobooks: %w", err)
	}

	results := &providers.SearchResults{Total: response.TotalResults}
	for _, product := range response.Products {
		results.Items = append(results.Items, c.convertItem(product))
	}

	if response.TotalResults-page*providers.PageLimit > 0 {
		nextPage := page + 1
		results.NextPage = &nextPage
	}

	return results, nil
}

// convertItem converts an API product record into a metadata record
func (c *Client) convertItem(product item) *models.Metadata {
	metadata := &models.Metadata{
		Identifier: product.ASIN,
		Lot:        models.LotAudioBook,
		Source:     models.SourceAudible,
		Title:      product.Title,
		AudioBookSpecifics: &models.AudioBookSpecifics{
			Runtime: product.RuntimeMinutes,
		},
	}

	// The publisher summary is the richer description when present
	if product.PublisherSum != "" {
		metadata.Description = product.PublisherSum
	} else {
		metadata.Description = product.Merchandising
	}

	for _, author := range product.Authors {
		metadata.Creators = append(metadata.Creators, models.MetadataCreator{
			Name: author.Name,
			Role: "Author",
		})
	}
	for _, narrator := range product.Narrators {
		metadata.Creators = append(metadata.Creators, models.MetadataCreator{
			Name: narrator.Name,
			Role: "Narrator",
		})
	}

	seen := make(map[string]bool)
	for _, collection := range product.CategoryLadders {
		for _, category := range collection.Ladder {
			if !seen[category.Name] {
				seen[category.Name] = true
				metadata.Genres = append(metadata.Genres, category.Name)
			}
		}
	}

	if poster, ok := product.ProductImages[imageSizes]; ok && poster != "" {
		metadata.PosterImages = append(metadata.PosterImages, poster)
	}

	if product.ReleaseDate != "" {
		if date, err := time.Parse("2006-01-02", product.ReleaseDate); err == nil {
			metadata.PublishDate = product.ReleaseDate
			year := date.Year()
			metadata.PublishYear = &year
		}
	}

	return metadata
}
