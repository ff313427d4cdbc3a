package coordinator

import (
	"github.com/riyashastri4/nh-fuel-finder/internal/models"
)

// Marker is a station pin on the map surface.
type Marker struct {
	ID       string
	Position models.Coordinates
	Popup    string
}

// MapSurface renders markers and the viewport. ClearMarkers removes station
// markers only; the user marker is managed through ShowUser.
type MapSurface interface {
	ClearMarkers()
	AddMarker(m Marker)
	SetView(center models.Coordinates, zoom int)
	ShowUser(position models.Coordinates)
	OpenPopup(markerID string)
}

// ListSurface renders the station list and status indicators. message is
// non-empty only when stations is empty.
type ListSurface interface {
	ShowStations(stations []models.Station, message string)
	ShowNearest(station models.Station)
	ShowError(message string)
	SetLoading(loading bool)
}
