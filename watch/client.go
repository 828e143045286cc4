package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/theoremus-urban-solutions/bus-tracker/registry"
)

// Client is a thin HTTP client for the tracker API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Listing mirrors the bulk endpoint's response.
type Listing struct {
	Count       int                       `json:"count"`
	Buses       []registry.LocationRecord `json:"buses"`
	LastUpdated *int64                    `json:"last_updated"`
}

// GetLocation fetches one device's current record.
func (c *Client) GetLocation(ctx context.Context, deviceID string) (registry.LocationRecord, error) {
	var rec registry.LocationRecord
	err := c.getJSON(ctx, c.baseURL+"/api/locations/"+deviceID, &rec)
	return rec, err
}

// ListLocations fetches the full registry snapshot.
func (c *Client) ListLocations(ctx context.Context) (Listing, error) {
	var l Listing
	err := c.getJSON(ctx, c.baseURL+"/api/locations", &l)
	return l, err
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
