package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/riyashastri4/nh-fuel-finder/internal/cache"
	"github.com/riyashastri4/nh-fuel-finder/internal/metrics"
	"github.com/riyashastri4/nh-fuel-finder/internal/models"
	"github.com/riyashastri4/nh-fuel-finder/pkg/http/client"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const searchPath = "/search"

// nominatimResult mirrors the parts of the Nominatim search payload we use.
// boundingbox is ordered south, north, west, east.
type nominatimResult struct {
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	DisplayName string   `json:"display_name"`
	BoundingBox []string `json:"boundingbox"`
}

type NominatimGeocoder struct {
	httpClient client.Interface
	cache      *cache.LRUCache[string, models.Place]
	group      singleflight.Group
}

var _ models.Geocoder = (*NominatimGeocoder)(nil)

// NewNominatimGeocoder builds a geocoder; placeCache may be nil to disable memoisation.
func NewNominatimGeocoder(httpClient client.Interface, placeCache *cache.LRUCache[string, models.Place]) *NominatimGeocoder {
	return &NominatimGeocoder{
		httpClient: httpClient,
		cache:      placeCache,
	}
}

func (g *NominatimGeocoder) ResolvePlace(ctx context.Context, name string) (*models.Place, error) {
	key := normalizeName(name)
	if key == "" {
		return nil, ErrEmptyPlaceName
	}

	if g.cache != nil {
		if place, ok := g.cache.Get(key); ok {
			log.Debug().Str("place", name).Msg("Cache HIT for place")
			return &place, nil
		}
	}

	v, err, shared := g.group.Do(key, func() (interface{}, error) {
		return g.lookup(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Trace().Str("place", name).Msg("Coalesced concurrent place lookup")
	}

	place := *v.(*models.Place)
	if g.cache != nil {
		g.cache.Add(key, place)
	}
	return &place, nil
}

func (g *NominatimGeocoder) lookup(ctx context.Context, name string) (*models.Place, error) {
	started := time.Now()
	query := url.Values{}
	query.Set("format", "json")
	query.Set("limit", "1")
	query.Set("q", strings.TrimSpace(name))

	log.Debug().Str("place", name).Msg("Calling Nominatim search")
	resp, err := g.httpClient.Get(ctx, searchPath, query)
	if err != nil {
		metrics.ObserveUpstream(metrics.ServiceNominatim, metrics.ResultError, time.Since(started))
		return nil, NewTransportError("requesting place", err)
	}
	if resp == nil {
		metrics.ObserveUpstream(metrics.ServiceNominatim, metrics.ResultError, time.Since(started))
		return nil, NewTransportError("no response from geocoding service", nil)
	}
	if !resp.OK() {
		metrics.ObserveUpstream(metrics.ServiceNominatim, metrics.ResultError, time.Since(started))
		return nil, NewTransportError(fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var results []nominatimResult
	if err := json.Unmarshal(resp.Body, &results); err != nil {
		metrics.ObserveUpstream(metrics.ServiceNominatim, metrics.ResultError, time.Since(started))
		return nil, NewTransportError("decoding response", err)
	}

	if len(results) == 0 {
		metrics.ObserveUpstream(metrics.ServiceNominatim, metrics.ResultNotFound, time.Since(started))
		log.Info().Str("place", name).Msg("Place not found")
		return nil, ErrPlaceNotFound
	}

	place, err := toPlace(name, results[0])
	if err != nil {
		metrics.ObserveUpstream(metrics.ServiceNominatim, metrics.ResultError, time.Since(started))
		return nil, NewTransportError("parsing place", err)
	}

	metrics.ObserveUpstream(metrics.ServiceNominatim, metrics.ResultSuccess, time.Since(started))
	log.Debug().
		Str("place", name).
		Str("center", place.Center.String()).
		Msg("Resolved place")
	return place, nil
}

func toPlace(name string, r nominatimResult) (*models.Place, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("latitude %q: %w", r.Lat, err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("longitude %q: %w", r.Lon, err)
	}
	box, err := parseBoundingBox(r.BoundingBox)
	if err != nil {
		return nil, err
	}

	center := models.Coordinates{Lat: lat, Lon: lon}
	if err := center.Validate(); err != nil {
		return nil, err
	}

	return &models.Place{
		Name:        strings.TrimSpace(name),
		DisplayName: r.DisplayName,
		Center:      center,
		BoundingBox: box,
	}, nil
}

// parseBoundingBox reorders Nominatim's [south, north, west, east] strings.
func parseBoundingBox(raw []string) (models.BoundingBox, error) {
	if len(raw) != 4 {
		return models.BoundingBox{}, fmt.Errorf("bounding box has %d values, want 4", len(raw))
	}

	var v [4]float64
	for i, s := range raw {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.BoundingBox{}, fmt.Errorf("bounding box value %q: %w", s, err)
		}
		v[i] = f
	}

	box := models.BoundingBox{South: v[0], North: v[1], West: v[2], East: v[3]}
	if err := box.Validate(); err != nil {
		return models.BoundingBox{}, err
	}
	return box, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
