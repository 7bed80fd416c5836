package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	app_errors "kishanmitra/client/internal/errors"
	"kishanmitra/client/internal/model"
)

var ErrNoResult = fmt.Errorf("%w: no matching place", app_errors.ErrNotFound)

// Geocoder converts between coordinates and place names. language is the
// preferred language for names.
type Geocoder interface {
	Reverse(ctx context.Context, c model.Coordinates, language string) (string, error)
	Search(ctx context.Context, query, language string) (*model.Location, error)
}

type nominatim struct {
	client    *http.Client
	url       string
	userAgent string
}

// NewNominatim returns a Geocoder for the Nominatim API at baseURL. The
// usage policy requires an identifying User-Agent.
func NewNominatim(baseURL, userAgent string, timeout time.Duration) Geocoder {
	return &nominatim{
		client:    &http.Client{Timeout: timeout},
		url:       strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
	}
}

type nominatimAddress struct {
	Village       string `json:"village"`
	Town          string `json:"town"`
	City          string `json:"city"`
	StateDistrict string `json:"state_district"`
	County        string `json:"county"`
	State         string `json:"state"`
}

type nominatimPlace struct {
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
	Error       string           `json:"error"`
}

// shortName builds "locality, district, state" from the parts that exist,
// falling back to the full display name.
func (p *nominatimPlace) shortName() string {
	a := p.Address
	var parts []string
	for _, v := range []string{firstNonEmpty(a.City, a.Town, a.Village), firstNonEmpty(a.StateDistrict, a.County), a.State} {
		if v != "" && (len(parts) == 0 || parts[len(parts)-1] != v) {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return p.DisplayName
	}
	return strings.Join(parts, ", ")
}

func (g *nominatim) Reverse(ctx context.Context, c model.Coordinates, language string) (string, error) {
	if !c.Set {
		return "", fmt.Errorf("%w: coordinates are not set", app_errors.ErrValidation)
	}
	params := url.Values{
		"format": {"jsonv2"},
		"lat":    {strconv.FormatFloat(c.Latitude, 'f', -1, 64)},
		"lon":    {strconv.FormatFloat(c.Longitude, 'f', -1, 64)},
		"zoom":   {"10"},
	}
	var place nominatimPlace
	if err := g.get(ctx, "/reverse", params, language, &place); err != nil {
		return "", err
	}
	if place.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrNoResult, place.Error)
	}
	name := place.shortName()
	if name == "" {
		return "", ErrNoResult
	}
	return name, nil
}

func (g *nominatim) Search(ctx context.Context, query, language string) (*model.Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search text must not be empty", app_errors.ErrValidation)
	}
	params := url.Values{
		"format":         {"jsonv2"},
		"q":              {query},
		"limit":          {"1"},
		"addressdetails": {"1"},
	}
	var places []nominatimPlace
	if err := g.get(ctx, "/search", params, language, &places); err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, ErrNoResult
	}

	best := places[0]
	lat, latErr := strconv.ParseFloat(best.Lat, 64)
	lon, lonErr := strconv.ParseFloat(best.Lon, 64)
	if err := errors.Join(latErr, lonErr); err != nil {
		return nil, fmt.Errorf("%w: unreadable coordinates: %w", app_errors.ErrUnavailable, err)
	}
	return &model.Location{Coordinates: model.NewCoordinates(lat, lon), Name: best.shortName()}, nil
}

func (g *nominatim) get(ctx context.Context, path string, params url.Values, language string, out any) error {
	if language != "" {
		params.Set("accept-language", language)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("could not create http request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: geocoder request failed: %w", app_errors.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: geocoder returned status %d: %s", app_errors.ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: could not decode geocoder response: %w", app_errors.ErrUnavailable, err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
