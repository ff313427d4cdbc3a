package locate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/riyashastri4/nh-fuel-finder/internal/metrics"
	"github.com/riyashastri4/nh-fuel-finder/internal/models"
	"github.com/riyashastri4/nh-fuel-finder/pkg/http/client"
)

// ipLocation accepts both the ipapi.co (latitude/longitude) and
// ip-api.com (lat/lon) payload shapes.
type ipLocation struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Error     bool     `json:"error"`
	Reason    string   `json:"reason"`
	Status    string   `json:"status"`
	Message   string   `json:"message"`
}

// IPLocator approximates the device position from its public IP address.
type IPLocator struct {
	httpClient client.Interface
}

var _ models.Locator = (*IPLocator)(nil)

// NewIPLocator expects httpClient to be rooted at the lookup endpoint.
func NewIPLocator(httpClient client.Interface) *IPLocator {
	return &IPLocator{httpClient: httpClient}
}

func (l *IPLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	started := time.Now()
	pos, err := l.lookup(ctx)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObserveUpstream(metrics.ServiceIPLocate, result, time.Since(started))
	return pos, err
}

func (l *IPLocator) lookup(ctx context.Context) (models.Coordinates, error) {
	resp, err := l.httpClient.Get(ctx, "", nil)
	if err != nil {
		if isTimeout(err) {
			return models.Coordinates{}, ErrLocationTimeout
		}
		return models.Coordinates{}, fmt.Errorf("requesting IP location: %w", err)
	}
	if resp == nil {
		return models.Coordinates{}, errors.New("no response from IP location service")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return models.Coordinates{}, ErrLocationDenied
	case !resp.OK():
		return models.Coordinates{}, fmt.Errorf("IP location service returned status %d", resp.StatusCode)
	}

	var body ipLocation
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return models.Coordinates{}, fmt.Errorf("decoding IP location: %w", err)
	}
	if body.Error || body.Status == "fail" {
		reason := body.Reason
		if reason == "" {
			reason = body.Message
		}
		return models.Coordinates{}, fmt.Errorf("IP location service error: %s", reason)
	}

	lat, lon := body.Latitude, body.Longitude
	if lat == nil || lon == nil {
		lat, lon = body.Lat, body.Lon
	}
	if lat == nil || lon == nil {
		return models.Coordinates{}, errors.New("IP location response has no coordinates")
	}

	pos := models.Coordinates{Lat: *lat, Lon: *lon}
	if err := pos.Validate(); err != nil {
		return models.Coordinates{}, err
	}

	log.Debug().Str("position", pos.String()).Msg("Resolved IP location")
	return pos, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
