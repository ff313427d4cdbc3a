package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultStationName = "Petrol Pump"
	DefaultHighway     = "N/A"
	DefaultAddress     = "Address not available"
	DefaultHours       = "N/A"
	HighwayFilterAll   = "all"
)

type Service string

const (
	ServiceDiesel   Service = "Diesel"
	ServicePetrol   Service = "Petrol"
	ServiceCNG      Service = "CNG"
	ServiceLPG      Service = "LPG"
	ServiceEV       Service = "Electric Vehicle Charging"
	ServiceATM      Service = "ATM"
	ServiceRestroom Service = "Restroom"
	ServiceCarWash  Service = "Car Wash"
)

var validate = validator.New()

type Coordinates struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// Validate reports whether the coordinates lie within the WGS84 range.
func (c Coordinates) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid coordinates (%f, %f): %w", c.Lat, c.Lon, err)
	}
	return nil
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// BoundingBox is kept in the south, west, north, east order that the
// Overpass bbox filter expects.
type BoundingBox struct {
	South float64 `json:"south" validate:"latitude"`
	West  float64 `json:"west" validate:"longitude"`
	North float64 `json:"north" validate:"latitude"`
	East  float64 `json:"east" validate:"longitude"`
}

func (b BoundingBox) Validate() error {
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("invalid bounding box: %w", err)
	}
	if b.South > b.North {
		return fmt.Errorf("invalid bounding box: south %f is north of %f", b.South, b.North)
	}
	return nil
}

type Place struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"displayName"`
	Center      Coordinates `json:"center"`
	BoundingBox BoundingBox `json:"boundingBox"`
}

type Station struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Highway     string      `json:"highway"`
	Address     string      `json:"address"`
	Hours       string      `json:"hours"`
	Coordinates Coordinates `json:"coordinates"`
	Services    []Service   `json:"services"`
	DistanceKm  *float64    `json:"distanceKm,omitempty"`
}

// HasService reports whether the station advertises the given capability.
func (s Station) HasService(svc Service) bool {
	for _, have := range s.Services {
		if have == svc {
			return true
		}
	}
	return false
}

// Key is the marker identifier used by map surfaces.
func (s Station) Key() string {
	return fmt.Sprintf("station/%d", s.ID)
}

type ReferenceKind string

const (
	ReferenceUser         ReferenceKind = "user"
	ReferenceSearchCenter ReferenceKind = "search_center"
)

// ReferencePoint is the location distances are measured from.
type ReferencePoint struct {
	Kind        ReferenceKind `json:"kind"`
	Coordinates Coordinates   `json:"coordinates"`
}
