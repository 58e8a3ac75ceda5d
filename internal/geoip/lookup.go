package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oschwald/geoip2-golang"
)

// MaxMindLookup resolves countries from a local GeoLite2/GeoIP2 database
type MaxMindLookup struct {
	reader *geoip2.Reader
}

// OpenMaxMind opens the country database at path
func OpenMaxMind(path string) (*MaxMindLookup, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}
	return &MaxMindLookup{reader: reader}, nil
}

func (m *MaxMindLookup) Name() string {
	return "maxmind"
}

func (m *MaxMindLookup) Lookup(_ context.Context, ip string) (string, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", fmt.Errorf("invalid ip address")
	}
	record, err := m.reader.Country(parsed)
	if err != nil {
		return "", err
	}
	return record.Country.IsoCode, nil
}

func (m *MaxMindLookup) Close() error {
	return m.reader.Close()
}

// HTTPLookup queries a JSON GeoIP API
type HTTPLookup struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewHTTPLookup creates a lookup against endpoint. The endpoint may contain
// an {ip} placeholder; otherwise the address is sent as the ip query
// parameter.
func NewHTTPLookup(endpoint, token string, timeout time.Duration) *HTTPLookup {
	return &HTTPLookup{
		endpoint: strings.TrimSpace(endpoint),
		token:    strings.TrimSpace(token),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (h *HTTPLookup) Name() string {
	return "http"
}

func (h *HTTPLookup) Lookup(ctx context.Context, ip string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", h.requestURL(ip), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("geoip request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("geoip request failed with status %d", resp.StatusCode)
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode geoip response: %w", err)
	}

	return countryFromPayload(payload), nil
}

func (h *HTTPLookup) requestURL(ip string) string {
	if strings.Contains(h.endpoint, "{ip}") {
		return strings.ReplaceAll(h.endpoint, "{ip}", url.QueryEscape(ip))
	}
	sep := "?"
	if strings.Contains(h.endpoint, "?") {
		sep = "&"
	}
	return h.endpoint + sep + url.Values{"ip": {ip}}.Encode()
}

var payloadKeys = [][]string{
	{"country_code"},
	{"countryCode"},
	{"country"},
	{"country_iso_code"},
	{"data", "country_code"},
	{"data", "countryCode"},
}

func countryFromPayload(payload map[string]interface{}) string {
	for _, path := range payloadKeys {
		if code := NormalizeCountryCode(stringAt(payload, path)); code != "" {
			return code
		}
	}
	return ""
}

func stringAt(payload map[string]interface{}, path []string) string {
	var current interface{} = payload
	for _, key := range path {
		m, ok := current.(map[string]interface{})
		if !ok {
			return ""
		}
		current = m[key]
	}
	s, _ := current.(string)
	return s
}
