package geocoding_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/pinpoint/internal/geocoding"
	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

type googleClientMock struct {
	mock.Mock
}

func (m *googleClientMock) ReverseGeocode(
	ctx context.Context,
	r *maps.GeocodingRequest,
) ([]maps.GeocodingResult, error) {
	args := m.Called(ctx, r)
	results, _ := args.Get(0).([]maps.GeocodingResult)
	return results, args.Error(1)
}

func TestGoogleProvider_Reverse(t *testing.T) {
	mockClient := &googleClientMock{}
	provider := geocoding.NewGoogleProvider(mockClient, slog.Default())
	ctx := t.Context()
	coords := models.Coordinates{Latitude: 37.42, Longitude: -122.08}
	req := &maps.GeocodingRequest{LatLng: &maps.LatLng{Lat: 37.42, Lng: -122.08}}

	t.Run("api returns error", func(t *testing.T) {
		mockClient.On("ReverseGeocode", ctx, req).Return(nil, assert.AnError).Once()

		_, err := provider.Reverse(ctx, coords)

		require.ErrorIs(t, err, assert.AnError)
		mockClient.AssertExpectations(t)
	})

	t.Run("api return empty response", func(t *testing.T) {
		mockClient.On("ReverseGeocode", ctx, req).Return(nil, nil).Once()

		place, err := provider.Reverse(ctx, coords)

		require.Nil(t, place)
		require.ErrorIs(t, err, geocoding.ErrEmptyResponse)
		mockClient.AssertExpectations(t)
	})

	t.Run("successfull reverse geocoding", func(t *testing.T) {
		response := []maps.GeocodingResult{{
			FormattedAddress: "1600 Amphitheatre Pkwy, Mountain View, CA 94043, USA",
			AddressComponents: []maps.AddressComponent{
				{LongName: "1600", Types: []string{"street_number"}},
				{LongName: "Amphitheatre Parkway", Types: []string{"route"}},
				{LongName: "Mountain View", Types: []string{"locality", "political"}},
				{LongName: "United States", ShortName: "US", Types: []string{"country", "political"}},
			},
		}}
		mockClient.On("ReverseGeocode", ctx, req).Return(response, nil).Once()

		place, err := provider.Reverse(ctx, coords)

		require.NoError(t, err)
		assert.Equal(t, &models.Place{
			Name:    "Amphitheatre Parkway 1600",
			City:    "Mountain View",
			Country: "United States",
		}, place)
		mockClient.AssertExpectations(t)
	})

	t.Run("point of interest without route", func(t *testing.T) {
		response := []maps.GeocodingResult{{
			FormattedAddress: "Golden Gate Park, San Francisco, CA, USA",
			AddressComponents: []maps.AddressComponent{
				{LongName: "London", Types: []string{"postal_town"}},
				{LongName: "United Kingdom", Types: []string{"country"}},
			},
		}}
		mockClient.On("ReverseGeocode", ctx, req).Return(response, nil).Once()

		place, err := provider.Reverse(ctx, coords)

		require.NoError(t, err)
		assert.Equal(t, "Golden Gate Park", place.Name)
		assert.Equal(t, "London", place.City)
		mockClient.AssertExpectations(t)
	})
}
