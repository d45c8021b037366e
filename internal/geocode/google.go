package geocode

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"addresseligibility/internal/platform/metrics"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleClient calls the Google Maps Geocoding API. Any transport error,
// non-OK provider status, or malformed payload resolves to "no result".
type GoogleClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// GoogleOption configures a GoogleClient.
type GoogleOption func(*GoogleClient)

// WithBaseURL overrides the API endpoint. Tests point this at httptest.
func WithBaseURL(u string) GoogleOption {
	return func(c *GoogleClient) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) GoogleOption {
	return func(c *GoogleClient) { c.httpClient = hc }
}

// WithMetrics attaches geocode call counters.
func WithMetrics(m *metrics.Metrics) GoogleOption {
	return func(c *GoogleClient) { c.metrics = m }
}

// NewGoogleClient creates a geocoding client with a bounded request timeout.
func NewGoogleClient(apiKey string, logger *slog.Logger, opts ...GoogleOption) *GoogleClient {
	c := &GoogleClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// googleResponse is the subset of the geocode payload we consume.
type googleResponse struct {
	Status  string `json:"status"`
	Results []struct {
		AddressComponents []googleComponent `json:"address_components"`
	} `json:"results"`
}

type googleComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

// Geocode resolves an address via the provider. Empty input, a missing API
// key, provider errors and empty result sets all report a miss.
func (c *GoogleClient) Geocode(ctx context.Context, address string) (Components, bool) {
	if strings.TrimSpace(address) == "" {
		return nil, false
	}
	if c.apiKey == "" {
		c.logger.ErrorContext(ctx, "google maps API key is not configured")
		return nil, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(address), nil)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to build geocode request", "error", err)
		c.metrics.IncrementGeocode("error")
		return nil, false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "geocode call failed", "address", address, "error", err)
		c.metrics.IncrementGeocode("error")
		return nil, false
	}
	defer resp.Body.Close()

	var payload googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.ErrorContext(ctx, "failed to decode geocode response", "address", address, "error", err)
		c.metrics.IncrementGeocode("error")
		return nil, false
	}

	if payload.Status != "OK" || len(payload.Results) == 0 {
		c.logger.WarnContext(ctx, "geocoder returned no result",
			"address", address, "status", payload.Status)
		c.metrics.IncrementGeocode("miss")
		return nil, false
	}

	c.metrics.IncrementGeocode("ok")
	return formatResult(payload.Results[0].AddressComponents), true
}

func (c *GoogleClient) buildURL(address string) string {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.apiKey)
	return c.baseURL + "?" + q.Encode()
}

// formatResult maps provider address components onto the shared keys.
// street_number and route concatenate into street; the " County" suffix is
// stripped from administrative_area_level_2.
func formatResult(components []googleComponent) Components {
	out := Components{}
	var streetParts []string

	for _, comp := range components {
		if len(comp.Types) == 0 {
			continue
		}
		switch comp.Types[0] {
		case "street_number", "route":
			streetParts = append(streetParts, comp.LongName)
		case "locality":
			out[KeyCity] = comp.LongName
		case "administrative_area_level_2":
			out[KeyCounty] = strings.ReplaceAll(comp.LongName, " County", "")
		case "administrative_area_level_1":
			out[KeyState] = comp.LongName
		case "country":
			out[KeyCountry] = comp.LongName
		case "postal_code":
			out[KeyZip] = comp.LongName
		}
	}

	if len(streetParts) > 0 {
		out[KeyStreet] = strings.Join(streetParts, " ")
	}
	return out
}
