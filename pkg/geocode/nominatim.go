package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// nominatimResult is one candidate from the Nominatim search API.
// Coordinates arrive as JSON strings.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode looks up an address with limit=1 and returns the first candidate.
func (n *nominatim) Geocode(ctx context.Context, address string) (*Result, error) {
	if strings.TrimSpace(address) == "" {
		return nil, eris.New("geocode: empty address")
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: rate limit")
	}

	params := url.Values{
		"format": {"json"},
		"q":      {address},
		"limit":  {"1"},
	}
	reqURL := n.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: build request")
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: nominatim returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: read body")
	}

	var candidates []nominatimResult
	if err := json.Unmarshal(body, &candidates); err != nil {
		return nil, eris.Wrap(err, "geocode: parse response")
	}

	if len(candidates) == 0 {
		return &Result{Matched: false}, nil
	}

	first := candidates[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: parse lat")
	}
	lng, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: parse lon")
	}

	return &Result{
		Lat:         lat,
		Lng:         lng,
		DisplayName: first.DisplayName,
		Matched:     true,
	}, nil
}
