package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"kinodex/internal/catalog"
	"kinodex/internal/config"
	"kinodex/internal/utils"
)

const (
	baseURL      = "https://api.themoviedb.org/3"
	imageBaseURL = "https://image.tmdb.org/t/p/w500"

	// matchThreshold is the minimum similarity between the cleaned source
	// title and a candidate's title for the candidate to be accepted.
	matchThreshold = 0.8
)

// Result is a normalized metadata lookup result
type Result struct {
	Poster         string
	Year           string
	TMDBID         int
	IsSeries       bool
	CanonicalTitle string
}

// Client handles communication with the TMDB API
type Client struct {
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new TMDB client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.TMDBAPIKey == "" {
		return nil, fmt.Errorf("TMDB API key is required")
	}

	return &Client{
		apiKey:     cfg.TMDBAPIKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}, nil
}

type searchResponse struct {
	Results []searchItem `json:"results"`
}

type searchItem struct {
	ID           int    `json:"id"`
	MediaType    string `json:"media_type"`
	Title        string `json:"title"` // movies
	Name         string `json:"name"`  // tv
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	PosterPath   string `json:"poster_path"`
}

func (i searchItem) displayTitle() string {
	if i.Title != "" {
		return i.Title
	}
	return i.Name
}

func (i searchItem) year() string {
	date := i.ReleaseDate
	if date == "" {
		date = i.FirstAirDate
	}
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// Lookup searches TMDB for the best metadata match for a raw title.
// Matching policy: season/quality/year tokens are stripped before
// querying, a season token in the source implies a series and the
// candidate's type must agree, candidate titles must clear the
// similarity threshold, and exact-year candidates win when the source
// carries a year. No acceptable match is (nil, nil), not an error.
func (c *Client) Lookup(ctx context.Context, title string) (*Result, error) {
	cleaned := utils.CleanTitle(title)
	if cleaned == "" {
		return nil, nil
	}
	wantSeries := utils.HasSeasonToken(title)
	year := utils.ExtractYear(title)

	items, err := c.search(ctx, cleaned, year)
	if err != nil {
		return nil, err
	}

	best := pickBest(cleaned, year, wantSeries, items)
	if best == nil {
		c.logger.WithField("title", cleaned).Debug("No acceptable TMDB match")
		return nil, nil
	}

	result := &Result{
		Year:           best.year(),
		TMDBID:         best.ID,
		IsSeries:       best.MediaType == "tv",
		CanonicalTitle: best.displayTitle(),
	}
	if best.PosterPath != "" {
		result.Poster = imageBaseURL + best.PosterPath
	}
	return result, nil
}

// search performs a TMDB multi search by cleaned title and optional year
func (c *Client) search(ctx context.Context, query string, year int) ([]searchItem, error) {
	apiURL, err := url.Parse(baseURL + "/search/multi")
	if err != nil {
		return nil, fmt.Errorf("invalid TMDB URL: %w", err)
	}

	params := url.Values{}
	params.Add("api_key", c.apiKey)
	params.Add("query", query)
	if year != 0 {
		params.Add("year", strconv.Itoa(year))
	}
	apiURL.RawQuery = params.Encode()

	c.logger.WithFields(logrus.Fields{
		"query": query,
		"year":  year,
	}).Debug("Performing TMDB search")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "kinodex/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("TMDB request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("TMDB returned status %d: %s", resp.StatusCode, string(body))
	}

	var response searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode TMDB response: %w", err)
	}

	return response.Results, nil
}

// pickBest applies the matching policy over the candidate list
func pickBest(cleaned string, year int, wantSeries bool, items []searchItem) *searchItem {
	var (
		best      *searchItem
		bestRatio float64
		bestYear  bool
	)

	for i := range items {
		item := items[i]

		isSeries := item.MediaType == "tv"
		if item.MediaType != "movie" && item.MediaType != "tv" {
			continue
		}
		if isSeries != wantSeries {
			continue
		}

		ratio := catalog.Similarity(strings.ToLower(cleaned), strings.ToLower(item.displayTitle()))
		if ratio < matchThreshold {
			continue
		}

		yearMatch := year != 0 && item.year() == strconv.Itoa(year)
		switch {
		case best == nil:
		case yearMatch && !bestYear:
		case yearMatch == bestYear && ratio > bestRatio:
		default:
			continue
		}
		best = &items[i]
		bestRatio = ratio
		bestYear = yearMatch
	}

	return best
}
