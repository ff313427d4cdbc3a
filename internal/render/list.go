package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/riyashastri4/nh-fuel-finder/internal/coordinator"
	"github.com/riyashastri4/nh-fuel-finder/internal/models"
)

// TerminalList prints the station list as an aligned table.
type TerminalList struct {
	w io.Writer
}

var _ coordinator.ListSurface = (*TerminalList)(nil)

func NewTerminalList(w io.Writer) *TerminalList {
	return &TerminalList{w: w}
}

func (l *TerminalList) ShowStations(stations []models.Station, message string) {
	if len(stations) == 0 {
		fmt.Fprintln(l.w, message)
		return
	}

	tw := tabwriter.NewWriter(l.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tHIGHWAY\tDISTANCE\tHOURS\tSERVICES\tADDRESS")
	for i, s := range stations {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, s.Name, s.Highway, FormatDistance(s.DistanceKm), s.Hours, FormatServices(s.Services), s.Address)
	}
	_ = tw.Flush()
}

func (l *TerminalList) ShowNearest(s models.Station) {
	fmt.Fprintf(l.w, "Nearest station: %s, %s (%s)\n", s.Name, s.Highway, FormatDistance(s.DistanceKm))
}

func (l *TerminalList) ShowError(message string) {
	fmt.Fprintf(l.w, "Error: %s\n", message)
}

func (l *TerminalList) SetLoading(loading bool) {
	if loading {
		fmt.Fprintln(l.w, "Loading...")
	}
}

// FormatDistance renders a known distance as "12.3 km away" and an unknown one as "-".
func FormatDistance(km *float64) string {
	if km == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f km away", *km)
}

func FormatServices(services []models.Service) string {
	if len(services) == 0 {
		return "-"
	}
	names := make([]string, len(services))
	for i, s := range services {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
