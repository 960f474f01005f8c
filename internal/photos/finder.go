// Package photos finds Unsplash stock photography for clothing recommendations.
package photos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/kiranshivaraju/meeteo/internal/config"
	"github.com/kiranshivaraju/meeteo/internal/enrich"
	"github.com/kiranshivaraju/meeteo/pkg/models"
)

// DummyImageID identifies the placeholder photo. It is never download-tracked.
const DummyImageID = "dummy-image"

const searchTermTokens = 32

const searchTermPrompt = `Turn this clothing recommendation into a short stock-photo search term of one to three words, for example "rain boots" or "wool scarf".

Recommendation: %s

Respond with only the search term.`

var (
	errMissingAccessKey = errors.New("unsplash access key not configured")
	errNoResults        = errors.New("unsplash returned no photos")
)

// Dummy is the placeholder photo used whenever a real one is unavailable.
func Dummy() models.Photo {
	return models.Photo{
		URL:             "https://dummyimage.com/400x600/e0e0e0/555555.png&text=No+image",
		Photographer:    "Unsplash",
		PhotographerURL: "https://unsplash.com",
		ID:              DummyImageID,
	}
}

// Finder derives a search term with the language model and returns the first
// portrait-oriented Unsplash result.
type Finder struct {
	provider  models.AIProvider
	baseURL   string
	accessKey string
	client    *http.Client
}

func NewFinder(provider models.AIProvider, cfg config.PhotosConfig) *Finder {
	return &Finder{
		provider:  provider,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		accessKey: cfg.AccessKey,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Find never fails: any error yields Fallback(Dummy()).
func (f *Finder) Find(ctx context.Context, description string) enrich.Result[models.Photo] {
	if f.accessKey == "" {
		return enrich.Fallback(Dummy(), errMissingAccessKey)
	}

	term := f.SearchTerm(ctx, description)
	photo, err := f.search(ctx, term)
	if err != nil {
		slog.Error("unsplash search failed, using dummy image", "term", term, "error", err)
		return enrich.Fallback(Dummy(), err)
	}
	return enrich.Success(photo)
}

// SearchTerm asks the language model for a short photo query. When the model
// fails or answers with nothing usable, the description itself is the term.
func (f *Finder) SearchTerm(ctx context.Context, description string) string {
	if f.provider == nil {
		return description
	}
	reply, err := f.provider.Complete(ctx, models.CompletionRequest{
		Prompt:    fmt.Sprintf(searchTermPrompt, description),
		MaxTokens: searchTermTokens,
	})
	if err != nil {
		slog.Warn("search term generation failed, using description", "error", err)
		return description
	}
	if term := normaliseTerm(reply); term != "" {
		return term
	}
	return description
}

// normaliseTerm keeps the first non-empty line of a reply, minus quotes and
// trailing punctuation.
func normaliseTerm(reply string) string {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "\"'`.")
		if line != "" {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

type searchResponse struct {
	Results []struct {
		ID   string `json:"id"`
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
		User struct {
			Name  string `json:"name"`
			Links struct {
				HTML string `json:"html"`
			} `json:"links"`
		} `json:"user"`
	} `json:"results"`
}

func (f *Finder) search(ctx context.Context, term string) (models.Photo, error) {
	q := url.Values{}
	q.Set("query", term)
	q.Set("per_page", "1")
	q.Set("orientation", "portrait")

	resp, err := f.get(ctx, "/search/photos?"+q.Encode())
	if err != nil {
		return models.Photo{}, err
	}
	defer closeBody(resp)

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Photo{}, fmt.Errorf("decode unsplash response: %w", err)
	}
	if len(body.Results) == 0 {
		return models.Photo{}, errNoResults
	}

	r := body.Results[0]
	if r.ID == "" || r.URLs.Regular == "" {
		return models.Photo{}, fmt.Errorf("unsplash result missing id or url")
	}
	photo := models.Photo{
		URL:             r.URLs.Regular,
		Photographer:    r.User.Name,
		PhotographerURL: r.User.Links.HTML,
		ID:              r.ID,
	}
	dummy := Dummy()
	if photo.Photographer == "" {
		photo.Photographer = dummy.Photographer
	}
	if photo.PhotographerURL == "" {
		photo.PhotographerURL = dummy.PhotographerURL
	}
	return photo, nil
}

// TrackDownload reports a photo use to Unsplash, as their API guidelines
// require. The dummy image and an unconfigured client are silently skipped.
func (f *Finder) TrackDownload(ctx context.Context, imageID string) error {
	if imageID == "" {
		return fmt.Errorf("image id is required")
	}
	if imageID == DummyImageID || f.accessKey == "" {
		return nil
	}

	resp, err := f.get(ctx, "/photos/"+url.PathEscape(imageID)+"/download")
	if err != nil {
		return err
	}
	closeBody(resp)
	return nil
}

func (f *Finder) get(ctx context.Context, pathAndQuery string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+pathAndQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("create unsplash request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+f.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call unsplash: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		closeBody(resp)
		return nil, fmt.Errorf("unsplash returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(errBody)))
	}
	return resp, nil
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		slog.Error("failed to close unsplash response body", "error", err)
	}
}

var _ enrich.PhotoFinder = (*Finder)(nil)
