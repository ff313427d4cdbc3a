package search

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/riyashastri4/nh-fuel-finder/internal/metrics"
	"github.com/riyashastri4/nh-fuel-finder/internal/models"
)

type Outcome string

const (
	OutcomeBoundingBox Outcome = "bounding_box"
	OutcomeRadius      Outcome = "radius"
	OutcomeExhausted   Outcome = "exhausted"
)

const (
	DefaultInitialRadius = 20000
	DefaultGrowthFactor  = 2
	DefaultMaxAttempts   = 5
)

type Options struct {
	InitialRadiusMeters int
	GrowthFactor        int
	MaxAttempts         int
}

// Result is the final station set of one city search.
type Result struct {
	Place    models.Place
	Stations []models.Station
	Outcome  Outcome
	// Radius is the radius in meters of the last radius query, zero when none ran.
	Radius   int
	Attempts int
	// ReferenceFromCenter is set when distances should be measured from Place.Center.
	ReferenceFromCenter bool
}

type Pipeline struct {
	geocoder models.Geocoder
	finder   models.StationFinder
	opts     Options
}

func NewPipeline(geocoder models.Geocoder, finder models.StationFinder, opts Options) *Pipeline {
	if opts.InitialRadiusMeters <= 0 {
		opts.InitialRadiusMeters = DefaultInitialRadius
	}
	if opts.GrowthFactor < 2 {
		opts.GrowthFactor = DefaultGrowthFactor
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	return &Pipeline{
		geocoder: geocoder,
		finder:   finder,
		opts:     opts,
	}
}

// Radii returns the radius sequence the pipeline walks through when the
// bounding box is empty.
func (p *Pipeline) Radii() []int {
	radii := make([]int, p.opts.MaxAttempts)
	r := p.opts.InitialRadiusMeters
	for i := range radii {
		radii[i] = r
		r *= p.opts.GrowthFactor
	}
	return radii
}

// Search geocodes name and returns the stations of its bounding box, falling
// back to an expanding radius around the place center. Geocoding and
// transport errors abort the search. When every radius comes back empty the
// result is returned together with ErrSearchExhausted.
func (p *Pipeline) Search(ctx context.Context, name string) (*Result, error) {
	place, err := p.geocoder.ResolvePlace(ctx, name)
	if err != nil {
		return nil, err
	}

	logger := log.With().Str("place", name).Logger()

	stations, err := p.finder.FindStationsInBoundingBox(ctx, place.BoundingBox)
	if err != nil {
		return nil, fmt.Errorf("bounding box search: %w", err)
	}
	if len(stations) > 0 {
		logger.Debug().Int("station_count", len(stations)).Msg("Bounding box search found stations")
		metrics.ObserveSearch(string(OutcomeBoundingBox), 0)
		return &Result{
			Place:    *place,
			Stations: stations,
			Outcome:  OutcomeBoundingBox,
		}, nil
	}

	result := &Result{
		Place:    *place,
		Stations: []models.Station{},
		Outcome:  OutcomeExhausted,
	}
	for _, radius := range p.Radii() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result.Attempts++
		result.Radius = radius
		logger.Debug().Int("radius_m", radius).Int("attempt", result.Attempts).Msg("Expanding search radius")

		stations, err := p.finder.FindStationsNearPoint(ctx, place.Center, radius)
		if err != nil {
			return nil, fmt.Errorf("radius search at %dm: %w", radius, err)
		}
		if len(stations) > 0 {
			result.Stations = stations
			result.Outcome = OutcomeRadius
			result.ReferenceFromCenter = true
			logger.Info().
				Int("radius_m", radius).
				Int("station_count", len(stations)).
				Msg("Radius search found stations")
			metrics.ObserveSearch(string(OutcomeRadius), result.Attempts)
			return result, nil
		}
	}

	logger.Info().Int("attempts", result.Attempts).Msg("Search exhausted")
	metrics.ObserveSearch(string(OutcomeExhausted), result.Attempts)
	return result, ErrSearchExhausted
}
