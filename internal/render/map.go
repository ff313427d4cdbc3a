package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/riyashastri4/nh-fuel-finder/internal/coordinator"
	"github.com/riyashastri4/nh-fuel-finder/internal/models"
)

// TerminalMap keeps the marker layer in memory and reports viewport changes
// and opened popups as text.
type TerminalMap struct {
	w       io.Writer
	markers []coordinator.Marker
	user    *models.Coordinates
}

var _ coordinator.MapSurface = (*TerminalMap)(nil)

func NewTerminalMap(w io.Writer) *TerminalMap {
	return &TerminalMap{w: w}
}

func (m *TerminalMap) ClearMarkers() {
	m.markers = nil
}

func (m *TerminalMap) AddMarker(mk coordinator.Marker) {
	m.markers = append(m.markers, mk)
}

func (m *TerminalMap) SetView(center models.Coordinates, zoom int) {
	fmt.Fprintf(m.w, "Map centred on %s at zoom %d (%d markers)\n", center, zoom, len(m.markers))
}

func (m *TerminalMap) ShowUser(position models.Coordinates) {
	m.user = &position
	fmt.Fprintf(m.w, "You are here: %s\n", position)
}

func (m *TerminalMap) OpenPopup(markerID string) {
	for _, mk := range m.markers {
		if mk.ID != markerID {
			continue
		}
		fmt.Fprintln(m.w, "  "+strings.ReplaceAll(mk.Popup, "\n", "\n  "))
		return
	}
}

// Markers returns the current station markers.
func (m *TerminalMap) Markers() []coordinator.Marker {
	return append([]coordinator.Marker(nil), m.markers...)
}

// User returns the user marker position, if one is shown.
func (m *TerminalMap) User() (models.Coordinates, bool) {
	if m.user == nil {
		return models.Coordinates{}, false
	}
	return *m.user, true
}
