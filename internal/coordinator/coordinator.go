package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/riyashastri4/nh-fuel-finder/internal/geocode"
	"github.com/riyashastri4/nh-fuel-finder/internal/locate"
	"github.com/riyashastri4/nh-fuel-finder/internal/models"
	"github.com/riyashastri4/nh-fuel-finder/internal/search"
	"github.com/riyashastri4/nh-fuel-finder/internal/station"
)

type State string

const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StateDisplaying State = "displaying"
	StateErrorShown State = "error_shown"
)

const (
	InitialZoom = 5
	UserZoom    = 10
	StationZoom = 12
)

// InitialCenter is the default viewport before any action.
var InitialCenter = models.Coordinates{Lat: 20.5937, Lon: 78.9629}

const (
	MsgNoStations          = "No stations found for this area. Try another search."
	MsgSearchExhausted     = "No fuel stations found even after widening the search around this place. Try another search."
	MsgPlaceNotFound       = "City not found!"
	MsgSearchFailed        = "An error occurred while searching for the city."
	MsgStationsFailed      = "Could not fetch petrol pump data."
	MsgLocationUnsupported = "Geolocation is not supported on this device."
	MsgLocationDenied      = "Unable to get your location. Please ensure location services are enabled."
	MsgLocationTimeout     = "Timed out while getting your location. Please try again."
	MsgLocationFailed      = "Unable to get your location. Please try again later."
)

type Searcher interface {
	Search(ctx context.Context, name string) (*search.Result, error)
}

// Coordinator owns the application state and pushes it to the map and list
// surfaces. Surfaces are called with the state lock held and must not call
// back into the Coordinator.
type Coordinator struct {
	searcher Searcher
	locator  models.Locator
	mapView  MapSurface
	list     ListSurface

	mu           sync.Mutex
	state        State
	stations     []models.Station
	emptyMessage string
	filter       string
	userLocation *models.Coordinates
	searchCenter *models.Coordinates
	reference    *models.ReferencePoint
	nearest      *models.Station
	message      string
	searchSeq    uint64
	locateSeq    uint64
	pending      int
}

func New(searcher Searcher, locator models.Locator, mapView MapSurface, list ListSurface) *Coordinator {
	return &Coordinator{
		searcher:     searcher,
		locator:      locator,
		mapView:      mapView,
		list:         list,
		state:        StateIdle,
		stations:     []models.Station{},
		emptyMessage: MsgNoStations,
	}
}

// Init draws the default viewport and the empty list.
func (c *Coordinator) Init() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mapView.SetView(InitialCenter, InitialZoom)
	c.renderLocked()
}

// Search runs the place search pipeline and displays its result. Errors are
// reported to the list surface; a result superseded by a newer search is
// discarded.
func (c *Coordinator) Search(ctx context.Context, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		log.Debug().Msg("Ignoring empty place search")
		return
	}

	logger := actionLogger("search").With().Str("place", name).Logger()

	c.mu.Lock()
	c.searchSeq++
	seq := c.searchSeq
	c.beginLocked()
	c.mu.Unlock()

	logger.Info().Uint64("seq", seq).Msg("Search started")
	result, err := c.searcher.Search(ctx, name)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.endLocked()

	if seq != c.searchSeq {
		logger.Debug().Uint64("seq", seq).Uint64("latest", c.searchSeq).Msg("Discarding superseded search")
		return
	}

	exhausted := errors.Is(err, search.ErrSearchExhausted)
	if err != nil && !(exhausted && result != nil) {
		msg := searchErrorMessage(err)
		logger.Warn().Err(err).Str("message", msg).Msg("Search failed")
		c.showErrorLocked(msg)
		return
	}

	center := result.Place.Center
	c.searchCenter = &center
	switch {
	case result.ReferenceFromCenter:
		c.reference = &models.ReferencePoint{Kind: models.ReferenceSearchCenter, Coordinates: center}
	case c.reference != nil && c.reference.Kind == models.ReferenceSearchCenter:
		// the previous center belongs to an earlier search
		c.reference = nil
	}

	c.stations = append([]models.Station{}, result.Stations...)
	c.emptyMessage = MsgNoStations
	if exhausted {
		c.emptyMessage = MsgSearchExhausted
	}
	c.state = StateDisplaying
	c.message = ""

	c.refreshLocked()
	displayed := c.renderLocked()
	if len(displayed) > 0 {
		c.mapView.SetView(displayed[0].Coordinates, StationZoom)
	}
	if c.nearest != nil {
		c.list.ShowNearest(*c.nearest)
	}

	logger.Info().
		Str("outcome", string(result.Outcome)).
		Int("station_count", len(c.stations)).
		Int("radius_m", result.Radius).
		Msg("Search complete")
}

// Locate asks the locator for the device position, makes it the distance
// reference and highlights the nearest station.
func (c *Coordinator) Locate(ctx context.Context) {
	logger := actionLogger("locate")

	c.mu.Lock()
	c.locateSeq++
	seq := c.locateSeq
	c.beginLocked()
	c.mu.Unlock()

	var (
		pos models.Coordinates
		err = locate.ErrLocationUnsupported
	)
	if c.locator != nil {
		pos, err = c.locator.Locate(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.endLocked()

	if seq != c.locateSeq {
		logger.Debug().Uint64("seq", seq).Msg("Discarding superseded locate")
		return
	}

	if err != nil {
		msg := locateErrorMessage(err)
		logger.Warn().Err(err).Str("message", msg).Msg("Locate failed")
		c.showErrorLocked(msg)
		return
	}

	c.userLocation = &pos
	c.reference = &models.ReferencePoint{Kind: models.ReferenceUser, Coordinates: pos}
	c.state = StateDisplaying
	c.message = ""

	c.mapView.ShowUser(pos)
	c.mapView.SetView(pos, UserZoom)

	c.refreshLocked()
	c.renderLocked()
	if c.nearest != nil {
		c.list.ShowNearest(*c.nearest)
		c.mapView.OpenPopup(c.nearest.Key())
		c.mapView.SetView(c.nearest.Coordinates, StationZoom)
	}

	logger.Info().Str("position", pos.String()).Bool("has_nearest", c.nearest != nil).Msg("Locate complete")
}

// Filter narrows the displayed stations to one highway. An empty value or
// "all" clears the filter. The active station set is never modified.
func (c *Coordinator) Filter(highway string) {
	highway = strings.TrimSpace(highway)
	if strings.EqualFold(highway, models.HighwayFilterAll) {
		highway = ""
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.filter = highway
	if c.state != StateLoading {
		c.state = StateDisplaying
		c.message = ""
	}
	displayed := c.renderLocked()

	log.Debug().Str("filter", highway).Int("displayed", len(displayed)).Msg("Filter applied")
}

func (c *Coordinator) beginLocked() {
	c.pending++
	c.state = StateLoading
	c.list.SetLoading(true)
}

func (c *Coordinator) endLocked() {
	c.pending--
	if c.pending <= 0 {
		c.pending = 0
		c.list.SetLoading(false)
	}
}

func (c *Coordinator) showErrorLocked(msg string) {
	c.state = StateErrorShown
	c.message = msg
	c.list.ShowError(msg)
}

// refreshLocked recomputes distances against the active reference and the
// nearest station when the reference is the user.
func (c *Coordinator) refreshLocked() {
	c.nearest = nil
	if c.reference == nil {
		for i := range c.stations {
			c.stations[i].DistanceKm = nil
		}
		return
	}

	c.stations = station.WithDistances(c.stations, c.reference.Coordinates)
	if c.reference.Kind != models.ReferenceUser {
		return
	}
	for i := range c.stations {
		if c.nearest == nil || *c.stations[i].DistanceKm < *c.nearest.DistanceKm {
			s := c.stations[i]
			c.nearest = &s
		}
	}
}

// displayedLocked applies the filter and, when a reference is active, sorts
// by distance.
func (c *Coordinator) displayedLocked() []models.Station {
	displayed := make([]models.Station, 0, len(c.stations))
	for _, s := range c.stations {
		if c.filter == "" || s.Highway == c.filter {
			displayed = append(displayed, s)
		}
	}

	if c.reference != nil {
		SortByDistance(displayed)
	}
	return displayed
}

// SortByDistance orders stations nearest first in place. A station without a
// distance ranks as if it were zero kilometres away.
func SortByDistance(stations []models.Station) {
	sort.SliceStable(stations, func(i, j int) bool {
		return distanceOrZero(stations[i]) < distanceOrZero(stations[j])
	})
}

func (c *Coordinator) renderLocked() []models.Station {
	displayed := c.displayedLocked()

	c.mapView.ClearMarkers()
	for _, s := range displayed {
		c.mapView.AddMarker(Marker{
			ID:       s.Key(),
			Position: s.Coordinates,
			Popup:    popupText(s),
		})
	}

	msg := ""
	if len(displayed) == 0 {
		msg = MsgNoStations
		if len(c.stations) == 0 {
			msg = c.emptyMessage
		}
	}
	c.list.ShowStations(displayed, msg)
	return displayed
}

func distanceOrZero(s models.Station) float64 {
	if s.DistanceKm == nil {
		return 0
	}
	return *s.DistanceKm
}

func popupText(s models.Station) string {
	lines := []string{s.Name, s.Highway, s.Address, "Hours: " + s.Hours}
	if s.DistanceKm != nil {
		lines = append(lines, fmt.Sprintf("%.1f km away", *s.DistanceKm))
	}
	return strings.Join(lines, "\n")
}

func searchErrorMessage(err error) string {
	var poiErr *station.TransportError
	switch {
	case errors.Is(err, geocode.ErrPlaceNotFound), errors.Is(err, geocode.ErrEmptyPlaceName):
		return MsgPlaceNotFound
	case errors.As(err, &poiErr):
		return MsgStationsFailed
	default:
		return MsgSearchFailed
	}
}

func locateErrorMessage(err error) string {
	switch {
	case errors.Is(err, locate.ErrLocationUnsupported):
		return MsgLocationUnsupported
	case errors.Is(err, locate.ErrLocationDenied):
		return MsgLocationDenied
	case errors.Is(err, locate.ErrLocationTimeout), errors.Is(err, context.DeadlineExceeded):
		return MsgLocationTimeout
	default:
		return MsgLocationFailed
	}
}

func actionLogger(action string) zerolog.Logger {
	return log.With().Str("action", action).Str("action_id", uuid.NewString()).Logger()
}

// Snapshot is a copy of the coordinator state.
type Snapshot struct {
	State        State
	Stations     []models.Station
	Displayed    []models.Station
	Filter       string
	Reference    *models.ReferencePoint
	UserLocation *models.Coordinates
	SearchCenter *models.Coordinates
	Nearest      *models.Station
	Message      string
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		State:     c.state,
		Stations:  append([]models.Station{}, c.stations...),
		Displayed: c.displayedLocked(),
		Filter:    c.filter,
		Message:   c.message,
	}
	if c.reference != nil {
		ref := *c.reference
		snap.Reference = &ref
	}
	if c.userLocation != nil {
		pos := *c.userLocation
		snap.UserLocation = &pos
	}
	if c.searchCenter != nil {
		center := *c.searchCenter
		snap.SearchCenter = &center
	}
	if c.nearest != nil {
		n := *c.nearest
		snap.Nearest = &n
	}
	return snap
}
