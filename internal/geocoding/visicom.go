package geocoding

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"golang.org/x/time/rate"
)

// VisicomBaseURL is the Visicom Data API geocode endpoint.
const VisicomBaseURL = "https://api.visicom.ua/data-api/5.0/uk/geocode.json"

var (
	ErrVisicomEmptyResponse = errors.New("visicom API returned empty response")
	ErrVisicomUnathorized   = errors.New("visicom API unathorized (invalid API key)")
)

// VisicomProvider reverse geocodes through the Visicom Data API.
type VisicomProvider struct {
	endpoint *restEndpoint
	apiKey   string
	log      *slog.Logger
}

type visicomFeature struct {
	Properties struct {
		Name       string `json:"name"`
		Settlement string `json:"settlement"`
		Country    string `json:"country"`
	} `json:"properties"`
}

func NewVisicomProvider(apiKey string, rateLimit int, log *slog.Logger) *VisicomProvider {
	client := &http.Client{Timeout: 10 * time.Second}
	return NewVisicomProviderWithClient(client, apiKey, rate.NewLimiter(rate.Limit(rateLimit), rateLimit), log)
}

func NewVisicomProviderWithClient(
	client HTTPClient,
	apiKey string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *VisicomProvider {
	header := http.Header{}
	header.Set("Accept", "application/json")

	return &VisicomProvider{
		endpoint: &restEndpoint{
			api:       "visicom",
			rawURL:    VisicomBaseURL,
			client:    client,
			limiter:   limiter,
			header:    header,
			log:       log,
			statusErr: visicomStatusErr,
		},
		apiKey: apiKey,
		log:    log,
	}
}

func visicomStatusErr(status int) error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return ErrVisicomUnathorized
	}
	return nil
}

// Reverse returns the addressed object nearest to coords.
func (vp *VisicomProvider) Reverse(ctx context.Context, coords models.Coordinates) (*models.Place, error) {
	vp.log.DebugContext(ctx, "Reverse geocoding using Visicom", "lat", coords.Latitude, "lon", coords.Longitude)

	// "near" takes lon,lat.
	params := url.Values{
		"near":  {formatCoord(coords.Longitude) + "," + formatCoord(coords.Latitude)},
		"limit": {"1"},
		"key":   {vp.apiKey},
	}

	var feature visicomFeature
	if err := vp.endpoint.getJSON(ctx, params, &feature); err != nil {
		return nil, err
	}

	props := feature.Properties
	if props.Name == "" && props.Settlement == "" {
		return nil, ErrVisicomEmptyResponse
	}

	vp.log.InfoContext(ctx, "Visicom found result", "name", props.Name, "settlement", props.Settlement)
	return &models.Place{Name: props.Name, City: props.Settlement, Country: props.Country}, nil
}
