package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps reverse geocoding service.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// ErrEmptyResponse is returned when the Google Maps API responds with an empty result.
var ErrEmptyResponse = errors.New("get empty response from Google Maps API")

// NewGoogleProvider initializes a new GoogleProvider with the given client and logger.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// Reverse looks up the place at coords using the Google Maps Geocoding API.
// Only the first (most specific) result is used.
func (gp *GoogleProvider) Reverse(ctx context.Context, coords models.Coordinates) (*models.Place, error) {
	gp.log.DebugContext(ctx, "Reverse geocoding using Google Maps", "lat", coords.Latitude, "lon", coords.Longitude)

	req := maps.GeocodingRequest{LatLng: &maps.LatLng{Lat: coords.Latitude, Lng: coords.Longitude}}
	response, err := gp.client.ReverseGeocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to reverse geocode coordinates: %w", err)
	}

	if len(response) == 0 {
		return nil, ErrEmptyResponse
	}

	return placeFromGoogleResult(response[0]), nil
}

func placeFromGoogleResult(result maps.GeocodingResult) *models.Place {
	var street, number, city, town, country string
	for _, component := range result.AddressComponents {
		for _, kind := range component.Types {
			switch kind {
			case "route":
				street = component.LongName
			case "street_number":
				number = component.LongName
			case "locality":
				city = component.LongName
			case "postal_town":
				town = component.LongName
			case "country":
				country = component.LongName
			}
		}
	}

	name := strings.TrimSpace(street + " " + number)
	if name == "" {
		// Fall back to the leading part of the formatted address, e.g. a point of interest.
		name, _, _ = strings.Cut(result.FormattedAddress, ",")
	}
	if city == "" {
		city = town
	}

	return &models.Place{Name: strings.TrimSpace(name), City: city, Country: country}
}
