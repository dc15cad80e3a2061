package workshop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/logging"
)

// DefaultBaseURL is the published-file details endpoint of the Steam Web
// API.
const DefaultBaseURL = "https://api.steampowered.com/IPublishedFileService/GetDetails/v1/"

// Client fetches published-file metadata batches.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string
	appID      string
}

// NewClient creates a Client for the given Web API key and app id.
func NewClient(key, appID string) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		key:        key,
		appID:      appID,
	}
}

// WithBaseURL overrides the service endpoint, used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// GetDetails fetches metadata for one batch of ids. The result maps each
// requested id to its Item; ids the service does not know come back as
// MissingItem markers inside the same map, never as an error.
func (c *Client) GetDetails(ctx context.Context, ids []string) (map[string]Item, error) {
	logger := logging.GetLogger("workshop.client")

	query := url.Values{}
	query.Set("key", c.key)
	query.Set("includechildren", "true")
	query.Set("short_description", "true")
	query.Set("appid", c.appID)
	for i, id := range ids {
		query.Set(fmt.Sprintf("publishedfileids[%d]", i), id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrWebAPIRequest, "failed to build details request")
	}
	logger.Trace().Str("url", req.URL.String()).Msg("Requesting published file details")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrWebAPIRequest, "details request failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrWebAPIRequest, "failed to read details response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrWebAPIRequest, "details request returned status %d", resp.StatusCode).
			WithDetail("status", resp.StatusCode)
	}
	logger.Trace().Int("bytes", len(body)).Msg("Received published file details")

	var decoded struct {
		Response struct {
			PublishedFileDetails []Item `json:"publishedfiledetails"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.Wrap(err, errors.ErrWebAPIParse, "failed to decode details response")
	}

	result := make(map[string]Item, len(decoded.Response.PublishedFileDetails))
	for _, item := range decoded.Response.PublishedFileDetails {
		result[item.ID()] = item
	}
	return result, nil
}
