package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
)

// Search implements ports.CatalogSearcher. An expired or unobtainable token
// is reported as a TransientAuthError; a rejected query or unreadable body
// as a MalformedResponseError.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	searchURL, err := url.Parse(fmt.Sprintf("%s/search", c.baseURL))
	if err != nil {
		return "", fmt.Errorf("spotify adapter: invalid search url: %w", err)
	}
	params := searchURL.Query()
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(c.limit))
	if c.market != "" {
		params.Set("market", c.market)
	}
	searchURL.RawQuery = params.Encode()

	c.logger.Debug("spotify search request", zap.String("url", searchURL.String()))

	resp, err := c.get(ctx, searchURL.String())
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return "", &ports.TransientAuthError{Query: query, Err: err}
		}
		return "", fmt.Errorf("spotify adapter: search request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return "", &ports.TransientAuthError{Query: query, Err: apiErrorFrom(resp)}
	case http.StatusBadRequest:
		return "", &ports.MalformedResponseError{Query: query, Err: apiErrorFrom(resp)}
	default:
		return "", fmt.Errorf("spotify adapter: search status %d: %w", resp.StatusCode, apiErrorFrom(resp))
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &ports.MalformedResponseError{Query: query, Err: fmt.Errorf("spotify adapter: search decode error: %w", err)}
	}
	if body.Tracks == nil {
		return "", &ports.MalformedResponseError{Query: query, Err: errors.New("spotify adapter: response has no tracks section")}
	}

	c.logger.Debug("spotify search results",
		zap.String("query", query),
		zap.Int("items", len(body.Tracks.Items)),
	)
	return formatListing(body.Tracks.Items), nil
}

func apiErrorFrom(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var parsed apiError
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error.Message != "" {
		return fmt.Errorf("spotify adapter: %s", parsed.Error.Message)
	}
	return fmt.Errorf("spotify adapter: status %d", resp.StatusCode)
}
