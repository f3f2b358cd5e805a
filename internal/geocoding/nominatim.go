package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"golang.org/x/time/rate"
)

// NominatimBaseURL is the public Nominatim reverse endpoint.
const NominatimBaseURL = "https://nominatim.openstreetmap.org/reverse"

const nominatimUserAgent = "Pinpoint-Position-Resolver/1.0 (https://github.com/UnknownOlympus/pinpoint)"

// ErrNominatimEmptyResponse is returned when Nominatim knows nothing about the point.
var ErrNominatimEmptyResponse = errors.New("nominatim API returned empty response")

// NominatimProvider reverse geocodes through OpenStreetMap's Nominatim.
// The public instance allows one request per second and requires a User-Agent.
type NominatimProvider struct {
	endpoint *restEndpoint
	log      *slog.Logger
}

type nominatimReply struct {
	Error   string `json:"error"`
	Name    string `json:"name"`
	Address struct {
		HouseNumber string `json:"house_number"`
		Road        string `json:"road"`
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		Country     string `json:"country"`
	} `json:"address"`
}

// NewNominatimProvider returns a provider bound to the public endpoint.
func NewNominatimProvider(rateLimit int, log *slog.Logger) *NominatimProvider {
	if rateLimit <= 0 {
		rateLimit = 1
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return NewNominatimProviderWithClient(client, rate.NewLimiter(rate.Limit(rateLimit), 1), log)
}

// NewNominatimProviderWithClient is NewNominatimProvider with an injected client and limiter.
func NewNominatimProviderWithClient(client HTTPClient, limiter *rate.Limiter, log *slog.Logger) *NominatimProvider {
	header := http.Header{}
	header.Set("User-Agent", nominatimUserAgent)

	return &NominatimProvider{
		endpoint: &restEndpoint{
			api:     "nominatim",
			rawURL:  NominatimBaseURL,
			client:  client,
			limiter: limiter,
			header:  header,
			log:     log,
		},
		log: log,
	}
}

// Reverse returns the place Nominatim reports at coords.
func (np *NominatimProvider) Reverse(ctx context.Context, coords models.Coordinates) (*models.Place, error) {
	np.log.DebugContext(ctx, "Reverse geocoding using Nominatim", "lat", coords.Latitude, "lon", coords.Longitude)

	params := url.Values{
		"lat":            {formatCoord(coords.Latitude)},
		"lon":            {formatCoord(coords.Longitude)},
		"format":         {"jsonv2"},
		"addressdetails": {"1"},
	}

	var reply nominatimReply
	if err := np.endpoint.getJSON(ctx, params, &reply); err != nil {
		return nil, err
	}
	// A miss is still a 200, flagged by the "error" field.
	if reply.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrNominatimEmptyResponse, reply.Error)
	}

	place := reply.place()
	if *place == (models.Place{}) {
		return nil, ErrNominatimEmptyResponse
	}
	return place, nil
}

func (r nominatimReply) place() *models.Place {
	name := r.Name
	if name == "" {
		name = strings.TrimSpace(r.Address.Road + " " + r.Address.HouseNumber)
	}

	city := r.Address.City
	for _, alt := range []string{r.Address.Town, r.Address.Village} {
		if city == "" {
			city = alt
		}
	}

	return &models.Place{Name: name, City: city, Country: r.Address.Country}
}
