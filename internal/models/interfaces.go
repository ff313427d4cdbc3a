package models

import "context"

type Geocoder interface {
	ResolvePlace(ctx context.Context, name string) (*Place, error)
}

type StationFinder interface {
	FindStationsInBoundingBox(ctx context.Context, box BoundingBox) ([]Station, error)
	FindStationsNearPoint(ctx context.Context, center Coordinates, radiusMeters int) ([]Station, error)
}

// Locator is a single-shot request for the device position.
type Locator interface {
	Locate(ctx context.Context) (Coordinates, error)
}
