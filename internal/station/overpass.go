package station

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/riyashastri4/nh-fuel-finder/internal/metrics"
	"github.com/riyashastri4/nh-fuel-finder/internal/models"
	"github.com/riyashastri4/nh-fuel-finder/pkg/http/client"
)

const (
	interpreterPath = "/api/interpreter"
	fuelSelector    = `node["amenity"="fuel"]`
)

type OverpassStationFinder struct {
	httpClient client.Interface
}

var _ models.StationFinder = (*OverpassStationFinder)(nil)

func NewOverpassStationFinder(httpClient client.Interface) *OverpassStationFinder {
	return &OverpassStationFinder{httpClient: httpClient}
}

func (f *OverpassStationFinder) FindStationsInBoundingBox(ctx context.Context, box models.BoundingBox) ([]models.Station, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}
	return f.query(ctx, BoundingBoxQuery(box))
}

func (f *OverpassStationFinder) FindStationsNearPoint(ctx context.Context, center models.Coordinates, radiusMeters int) ([]models.Station, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if radiusMeters <= 0 {
		return nil, fmt.Errorf("invalid radius: %d", radiusMeters)
	}
	return f.query(ctx, AroundQuery(center, radiusMeters))
}

// BoundingBoxQuery builds the Overpass QL for fuel nodes inside box.
func BoundingBoxQuery(box models.BoundingBox) string {
	return fmt.Sprintf("[out:json];%s(%s,%s,%s,%s);out;",
		fuelSelector, formatCoord(box.South), formatCoord(box.West), formatCoord(box.North), formatCoord(box.East))
}

// AroundQuery builds the Overpass QL for fuel nodes within radiusMeters of center.
func AroundQuery(center models.Coordinates, radiusMeters int) string {
	return fmt.Sprintf("[out:json];%s(around:%d,%s,%s);out;",
		fuelSelector, radiusMeters, formatCoord(center.Lat), formatCoord(center.Lon))
}

func (f *OverpassStationFinder) query(ctx context.Context, ql string) ([]models.Station, error) {
	started := time.Now()
	query := url.Values{}
	query.Set("data", ql)

	log.Debug().Str("query", ql).Msg("Calling Overpass interpreter")
	resp, err := f.httpClient.Get(ctx, interpreterPath, query)
	if err != nil {
		metrics.ObserveUpstream(metrics.ServiceOverpass, metrics.ResultError, time.Since(started))
		return nil, NewTransportError("fetching stations", err)
	}
	if resp == nil {
		metrics.ObserveUpstream(metrics.ServiceOverpass, metrics.ResultError, time.Since(started))
		return nil, NewTransportError("no response from Overpass", nil)
	}
	if !resp.OK() {
		metrics.ObserveUpstream(metrics.ServiceOverpass, metrics.ResultError, time.Since(started))
		return nil, NewTransportError(fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var overpassResp struct {
		Elements []Element `json:"elements"`
	}
	if err := json.Unmarshal(resp.Body, &overpassResp); err != nil {
		metrics.ObserveUpstream(metrics.ServiceOverpass, metrics.ResultError, time.Since(started))
		return nil, NewTransportError("decoding response", err)
	}

	stations := make([]models.Station, 0, len(overpassResp.Elements))
	dropped := 0
	for _, el := range overpassResp.Elements {
		s, ok := NormalizeElement(el)
		if !ok {
			dropped++
			continue
		}
		stations = append(stations, s)
	}

	result := metrics.ResultSuccess
	if len(stations) == 0 {
		result = metrics.ResultEmpty
	}
	metrics.ObserveUpstream(metrics.ServiceOverpass, result, time.Since(started))

	log.Debug().
		Int("station_count", len(stations)).
		Int("dropped", dropped).
		Msg("Overpass query complete")
	return stations, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
