// Package osrm fetches driving routes from an OSRM routing service.
package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/core/domain/model/routing"
	"harvestlog/internal/core/ports"
)

// DefaultBaseURL is the public demo server.
const DefaultBaseURL = "https://router.project-osrm.org"

const okCode = "Ok"

var _ ports.RouteClient = (*Client)(nil)

// Client calls the OSRM route service.
type Client struct {
	baseURL    string
	profile    string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithProfile selects the routing profile. The default is "driving".
func WithProfile(profile string) Option {
	return func(c *Client) {
		if p := strings.TrimSpace(profile); p != "" {
			c.profile = p
		}
	}
}

// NewClient builds a client for baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("osrm base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse osrm base URL: %w", err)
	}

	c := &Client{
		baseURL:    baseURL,
		profile:    "driving",
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			// Coordinates are [lng, lat] pairs.
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// FetchRoute returns the first route between from and to, or nil when the
// service answers without one.
func (c *Client) FetchRoute(ctx context.Context, from, to kernel.Location) (*routing.Route, error) {
	if err := errors.Join(from.Validate(), to.Validate()); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.routeURL(from, to), nil)
	if err != nil {
		return nil, fmt.Errorf("build osrm request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call osrm: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osrm unexpected status: %s", resp.Status)
	}

	var body routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode osrm response: %w", err)
	}

	if body.Code != okCode || len(body.Routes) == 0 {
		return nil, nil
	}

	first := body.Routes[0]
	coords := make([]kernel.Location, 0, len(first.Geometry.Coordinates))
	for _, pair := range first.Geometry.Coordinates {
		if len(pair) < 2 {
			return nil, fmt.Errorf("osrm coordinate has %d values", len(pair))
		}
		loc, err := kernel.NewLocation(pair[1], pair[0])
		if err != nil {
			return nil, fmt.Errorf("osrm coordinate: %w", err)
		}
		coords = append(coords, loc)
	}

	return routing.NewRoute(coords, first.Distance, first.Duration)
}

func (c *Client) routeURL(from, to kernel.Location) string {
	return fmt.Sprintf("%s/route/v1/%s/%s,%s;%s,%s?overview=full&geometries=geojson",
		c.baseURL, c.profile,
		formatCoord(from.Lng()), formatCoord(from.Lat()),
		formatCoord(to.Lng()), formatCoord(to.Lat()),
	)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
