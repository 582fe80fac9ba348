package distance

import (
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL    = "https://api.openrouteservice.org"
	defaultProfile    = "driving-car"
	defaultGramsPerKm = 192.0
)

// ORSOptions configures an ORSProvider. Zero values fall back to defaults.
type ORSOptions struct {
	APIKey     string
	BaseURL    string
	Profile    string
	GramsPerKm float64 // CO2 emitted per driven kilometer
	RatePerSec float64 // outbound request budget; <= 0 disables limiting
	Timeout    time.Duration
}

// ORSProvider implements the matrix, directions and geometry ports using OpenRouteService.
//
// It coordinates:
//   - Batched N x N matrix requests
//   - Per-leg GeoJSON directions
//   - Client-side rate limiting
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type ORSProvider struct {
	session    *http.Client
	apiKey     string
	baseURL    string
	profile    string
	gramsPerKm float64
	limiter    *rate.Limiter
}

func NewORSProvider(opts ORSOptions) (*ORSProvider, error) {
	if opts.APIKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSProvider{
		session:    &http.Client{Timeout: 10 * time.Second},
		apiKey:     opts.APIKey,
		baseURL:    defaultBaseURL,
		profile:    defaultProfile,
		gramsPerKm: defaultGramsPerKm,
	}

	if opts.BaseURL != "" {
		provider.baseURL = opts.BaseURL
	}
	if opts.Profile != "" {
		provider.profile = opts.Profile
	}
	if opts.GramsPerKm > 0 {
		provider.gramsPerKm = opts.GramsPerKm
	}
	if opts.Timeout > 0 {
		provider.session.Timeout = opts.Timeout
	}
	if opts.RatePerSec > 0 {
		burst := int(opts.RatePerSec)
		if burst < 1 {
			burst = 1
		}
		provider.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)
	}

	return provider, nil
}
