// Package geocode resolves postal addresses to coordinates.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrNoMatch = errors.New("geocode: address not found")

// Location is a resolved address. Longitude comes first, as in a GeoJSON
// point.
type Location struct {
	Longitude        float64
	Latitude         float64
	FormattedAddress string
	Street           string
	City             string
	State            string
	Zipcode          string
	Country          string
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (Location, error)
}

// MapQuest queries the MapQuest geocoding API.
type MapQuest struct {
	client *resty.Client
	url    string
	key    string
}

func NewMapQuest(url, key string, timeout time.Duration) *MapQuest {
	return &MapQuest{
		client: resty.New().SetTimeout(timeout),
		url:    url,
		key:    key,
	}
}

type mqResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []struct {
			Street     string `json:"street"`
			City       string `json:"adminArea5"`
			State      string `json:"adminArea3"`
			Country    string `json:"adminArea1"`
			PostalCode string `json:"postalCode"`
			LatLng     struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"latLng"`
		} `json:"locations"`
	} `json:"results"`
}

func (m *MapQuest) Geocode(ctx context.Context, address string) (Location, error) {
	var body mqResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":      m.key,
			"location": address,
		}).
		SetResult(&body).
		Get(m.url)
	if err != nil {
		return Location{}, fmt.Errorf("geocoding %q: %w", address, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Location{}, fmt.Errorf("geocoding %q: unexpected status %d", address, resp.StatusCode())
	}
	if body.Info.StatusCode != 0 {
		return Location{}, fmt.Errorf("geocoding %q: mapquest status %d: %s",
			address, body.Info.StatusCode, strings.Join(body.Info.Messages, "; "))
	}

	if len(body.Results) == 0 || len(body.Results[0].Locations) == 0 {
		return Location{}, ErrNoMatch
	}

	l := body.Results[0].Locations[0]
	return Location{
		Longitude:        l.LatLng.Lng,
		Latitude:         l.LatLng.Lat,
		FormattedAddress: format(l.Street, l.City, l.State, l.PostalCode, l.Country),
		Street:           l.Street,
		City:             l.City,
		State:            l.State,
		Zipcode:          l.PostalCode,
		Country:          l.Country,
	}, nil
}

// format renders "street, city, state zipcode, country", skipping blanks.
func format(street, city, state, zipcode, country string) string {
	region := strings.TrimSpace(state + " " + zipcode)

	var parts []string
	for _, p := range []string{street, city, region, country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
