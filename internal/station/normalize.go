package station

import (
	"github.com/riyashastri4/nh-fuel-finder/internal/models"
)

// Element is a single node from an Overpass JSON response. Coordinates are
// pointers so that a missing value can be told apart from zero.
type Element struct {
	Type string            `json:"type"`
	ID   int64             `json:"id"`
	Lat  *float64          `json:"lat"`
	Lon  *float64          `json:"lon"`
	Tags map[string]string `json:"tags"`
}

type serviceRule struct {
	service models.Service
	tags    []string
}

// serviceRules is evaluated in order; a service is emitted when any of its tags is "yes".
var serviceRules = []serviceRule{
	{service: models.ServiceDiesel, tags: []string{"fuel_diesel"}},
	{service: models.ServicePetrol, tags: []string{"fuel_petrol", "fuel_octane_95", "fuel_octane_98"}},
	{service: models.ServiceCNG, tags: []string{"fuel_cng"}},
	{service: models.ServiceLPG, tags: []string{"fuel_lpg"}},
	{service: models.ServiceEV, tags: []string{"charging_station"}},
	{service: models.ServiceATM, tags: []string{"atm"}},
	{service: models.ServiceRestroom, tags: []string{"toilets"}},
	{service: models.ServiceCarWash, tags: []string{"car_wash"}},
}

// DeriveServices maps boolean OSM tags to service labels. Only the literal
// value "yes" counts.
func DeriveServices(tags map[string]string) []models.Service {
	services := make([]models.Service, 0, len(serviceRules))
	for _, rule := range serviceRules {
		for _, tag := range rule.tags {
			if tags[tag] == "yes" {
				services = append(services, rule.service)
				break
			}
		}
	}
	return services
}

// NormalizeElement converts an Overpass node into a Station. The second
// return value is false when the node has no usable position.
func NormalizeElement(el Element) (models.Station, bool) {
	if el.Lat == nil || el.Lon == nil {
		return models.Station{}, false
	}

	return models.Station{
		ID:          el.ID,
		Name:        tagOrDefault(el.Tags, "name", models.DefaultStationName),
		Highway:     tagOrDefault(el.Tags, "highway", models.DefaultHighway),
		Address:     tagOrDefault(el.Tags, "addr:full", models.DefaultAddress),
		Hours:       tagOrDefault(el.Tags, "opening_hours", models.DefaultHours),
		Coordinates: models.Coordinates{Lat: *el.Lat, Lon: *el.Lon},
		Services:    DeriveServices(el.Tags),
	}, true
}

func tagOrDefault(tags map[string]string, key, def string) string {
	if v := tags[key]; v != "" {
		return v
	}
	return def
}
