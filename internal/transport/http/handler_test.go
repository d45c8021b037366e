package httptransport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addresseligibility/internal/address"
	"addresseligibility/internal/cache"
	"addresseligibility/internal/eligibility/rules"
	"addresseligibility/internal/eligibility/service"
	"addresseligibility/internal/geocode"
	"addresseligibility/internal/lookup"
	"addresseligibility/internal/property"
	"addresseligibility/internal/region"
	"addresseligibility/internal/zone"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func boolPtr(b bool) *bool { return &b }

// newTestServer assembles the full stack over in-memory stores.
func newTestServer(t *testing.T, apiToken string) (*httptest.Server, *zone.InMemoryStore) {
	t.Helper()
	logger := testLogger()

	zones := zone.NewInMemoryStore()
	addresses := address.NewInMemoryStore()
	addrCache := cache.New(cache.NewMemoryKV(), time.Hour, logger)
	preloaded := lookup.NewPreloadedDirectory([]lookup.PreloadedAddress{
		{Street: "212 Encounter Bay", City: "Alameda", State: "CA",
			Zip: "90255", County: "Alameda", Eligible: boolPtr(true)},
	}, logger)

	engine := rules.New(rules.Config{Enabled: true, MinConfidenceScore: 0.5}, logger)
	eligibility := service.New(zones, addresses, addrCache, preloaded, engine, logger)

	geocoder := geocode.NewFixtureGeocoderFromMap(map[string]geocode.Components{
		"1400 Park Ave, Alameda": {
			geocode.KeyStreet: "1400 Park Ave",
			geocode.KeyCity:   "Alameda",
			geocode.KeyCounty: "Alameda",
			geocode.KeyState:  "California",
		},
	}, logger)
	lookups := lookup.NewService(addrCache, geocoder, logger)

	directory := region.NewDirectory(map[string]map[string][]string{
		"california": {"alameda": {"Alameda", "Oakland"}},
	})
	properties := property.NewService(region.NewService(directory, logger), logger)

	h := NewHandler(eligibility, lookups, properties, addrCache, logger)
	srv := httptest.NewServer(NewRouter(h, apiToken, logger))
	t.Cleanup(srv.Close)
	return srv, zones
}

func seedChicagoZone(t *testing.T, zones *zone.InMemoryStore) {
	t.Helper()
	_, err := zones.Save(t.Context(), &zone.Zone{
		Name: "chicago-loop", Type: zone.TypeZipCode,
		ZipCodes: []string{"60601"}, Active: true, Priority: 5,
	})
	require.NoError(t, err)
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHandleCheck(t *testing.T) {
	srv, zones := newTestServer(t, "")
	seedChicagoZone(t, zones)

	resp := postJSON(t, srv.URL+"/api/v1/address/check", `{
		"street_address": "100 N Wacker Dr",
		"city": "Chicago",
		"state": "IL",
		"zip_code": "60601"
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["eligible"])
	assert.Equal(t, []any{"chicago-loop"}, body["matched_zones"])
	assert.Equal(t, false, body["cache_hit"])
	assert.Contains(t, body["reason"], "Zone: chicago-loop")
}

func TestHandleCheck_Validation(t *testing.T) {
	srv, _ := newTestServer(t, "")

	cases := []struct {
		name string
		body string
	}{
		{"missing street", `{"city": "Chicago", "state": "IL", "zip_code": "60601"}`},
		{"missing city", `{"street_address": "100 N Wacker Dr", "state": "IL", "zip_code": "60601"}`},
		{"bad zip", `{"street_address": "100 N Wacker Dr", "city": "Chicago", "state": "IL", "zip_code": "606"}`},
		{"not json", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/v1/address/check", tc.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandleEligibilityCheck_Preloaded(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp := postJSON(t, srv.URL+"/api/v1/address/eligibility_check",
		`{"address": "212 Encounter Bay"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "address_eligible", body["message"])

	formatted, ok := body["formatted_address"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Alameda", formatted["city"])
	assert.Equal(t, "Alameda, CA", formatted["county"])
}

func TestHandleEligibilityCheck_NotEligible(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp := postJSON(t, srv.URL+"/api/v1/address/eligibility_check",
		`{"address": "1 Unknown Rd"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "address not eligible", body["message"])
	assert.NotContains(t, body, "formatted_address")
}

func TestHandleEligibilityCheck_MissingAddress(t *testing.T) {
	srv, _ := newTestServer(t, "")

	for _, payload := range []string{`{}`, `{"address": "   "}`, ``} {
		resp := postJSON(t, srv.URL+"/api/v1/address/eligibility_check", payload)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "address missing", body["message"])
	}
}

func TestHandleEligibleParam(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp, err := http.Post(
		srv.URL+"/api/v1/address/eligible?address=212+Encounter+Bay",
		"application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "address_eligible", body["message"])
}

func TestHandleLookup(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp := postJSON(t, srv.URL+"/api/v1/address/lookup",
		`{"address": "1400 Park Ave, Alameda"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "address_eligible", body["message"])
	formatted, ok := body["formatted_address"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Alameda", formatted["county"])

	resp = postJSON(t, srv.URL+"/api/v1/address/lookup", `{"address": "nowhere"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "address not found", body["message"])
	assert.Equal(t, "Address information is missing or incomplete", body["reason"])
}

func TestCacheAdminEndpoints(t *testing.T) {
	srv, zones := newTestServer(t, "")
	seedChicagoZone(t, zones)
	client := srv.Client()

	// Populate the result cache through a check.
	resp := postJSON(t, srv.URL+"/api/v1/address/check", `{
		"street_address": "100 N Wacker Dr",
		"city": "Chicago",
		"state": "IL",
		"zip_code": "60601"
	}`)
	resp.Body.Close()

	resp, err := client.Get(srv.URL + "/api/v1/cache/stats")
	require.NoError(t, err)
	stats := decodeBody(t, resp)
	assert.Equal(t, float64(1), stats["eligibility_entries"])

	key := url.PathEscape("100 n wacker dr:chicago:il:60601")
	resp, err = client.Get(srv.URL + "/api/v1/cache/" + key)
	require.NoError(t, err)
	inspect := decodeBody(t, resp)
	assert.Equal(t, true, inspect["cached"])
	assert.Greater(t, inspect["ttl_seconds"], float64(0))

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/cache/"+key, nil)
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	decodeBody(t, resp)

	resp, err = client.Get(srv.URL + "/api/v1/cache/" + key)
	require.NoError(t, err)
	inspect = decodeBody(t, resp)
	assert.Equal(t, false, inspect["cached"])

	req, err = http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/cache", nil)
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	cleared := decodeBody(t, resp)
	assert.Equal(t, float64(0), cleared["cleared"])
}

func TestHealthAndMetricsSkipTokenCheck(t *testing.T) {
	srv, _ := newTestServer(t, "secret-token")
	client := srv.Client()

	resp, err := client.Get(srv.URL + "/api/v1/address/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "OK", string(raw))

	resp, err = client.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPITokenRequired(t *testing.T) {
	srv, _ := newTestServer(t, "secret-token")

	resp := postJSON(t, srv.URL+"/api/v1/address/eligibility_check", `{"address": "x"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost,
		srv.URL+"/api/v1/address/eligibility_check", strings.NewReader(`{"address": ""}`))
	require.NoError(t, err)
	req.Header.Set("X-API-Token", "secret-token")
	authed, err := srv.Client().Do(req)
	require.NoError(t, err)
	body := decodeBody(t, authed)
	assert.Equal(t, "address missing", body["message"])
}

func TestRequestIDEchoed(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/api/v1/address/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
