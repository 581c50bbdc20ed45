package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/benmeehan/location-agent/pkg/geo"
)

// DefaultOSRMURL is the public OSRM demo server.
const DefaultOSRMURL = "https://router.project-osrm.org"

// OSRMRouter queries an OSRM server's route service.
type OSRMRouter struct {
	baseURL    string
	profile    string
	userAgent  string
	httpClient *http.Client
}

// NewOSRMRouter creates a router. timeout 0 leaves requests bounded only by ctx.
func NewOSRMRouter(baseURL, profile, userAgent string, timeout time.Duration) *OSRMRouter {
	if baseURL == "" {
		baseURL = DefaultOSRMURL
	}
	if profile == "" {
		profile = "driving"
	}
	return &OSRMRouter{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		profile:    profile,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry string  `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// Route asks OSRM for a route. "NoRoute" and "NoSegment" answers give a
// degraded straight line, any other failure is an error.
func (o *OSRMRouter) Route(ctx context.Context, from, to geo.Point) (Route, error) {
	url := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f?overview=full&geometries=polyline",
		o.baseURL, o.profile, from.Lng, from.Lat, to.Lng, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Route{}, fmt.Errorf("failed to build OSRM request: %w", err)
	}
	if o.userAgent != "" {
		req.Header.Set("User-Agent", o.userAgent)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return Route{}, fmt.Errorf("OSRM request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return Route{}, fmt.Errorf("failed to read OSRM response: %w", err)
	}

	var parsed osrmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Route{}, fmt.Errorf("unexpected OSRM response (status %d): %w", resp.StatusCode, err)
	}

	switch parsed.Code {
	case "Ok":
	case "NoRoute", "NoSegment":
		return straightLine(from, to), nil
	default:
		return Route{}, fmt.Errorf("OSRM error %s: %s", parsed.Code, parsed.Message)
	}
	if len(parsed.Routes) == 0 {
		return straightLine(from, to), nil
	}

	r := parsed.Routes[0]
	path, err := decodePath(r.Geometry)
	if err != nil {
		return Route{}, fmt.Errorf("failed to decode route polyline: %w", err)
	}
	bounds, ok := geo.BoundsOf(path...)
	if !ok {
		bounds, _ = geo.BoundsOf(from, to)
	}

	return Route{
		Path:      path,
		Bounds:    bounds,
		DistanceM: r.Distance,
		Duration:  time.Duration(r.Duration * float64(time.Second)),
		Status:    StatusOK,
	}, nil
}
