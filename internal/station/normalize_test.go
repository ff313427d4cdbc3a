package station

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/riyashastri4/nh-fuel-finder/internal/models"
)

func ptr(v float64) *float64 {
	return &v
}

func TestDeriveServices(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want []models.Service
	}{
		{
			name: "no tags",
			tags: nil,
			want: []models.Service{},
		},
		{
			name: "every service",
			tags: map[string]string{
				"fuel_diesel":      "yes",
				"fuel_petrol":      "yes",
				"fuel_cng":         "yes",
				"fuel_lpg":         "yes",
				"charging_station": "yes",
				"atm":              "yes",
				"toilets":          "yes",
				"car_wash":         "yes",
			},
			want: []models.Service{
				models.ServiceDiesel, models.ServicePetrol, models.ServiceCNG, models.ServiceLPG,
				models.ServiceEV, models.ServiceATM, models.ServiceRestroom, models.ServiceCarWash,
			},
		},
		{
			name: "petrol from any octane flag appears once",
			tags: map[string]string{"fuel_petrol": "yes", "fuel_octane_95": "yes", "fuel_octane_98": "yes"},
			want: []models.Service{models.ServicePetrol},
		},
		{
			name: "octane 98 alone implies petrol",
			tags: map[string]string{"fuel_octane_98": "yes"},
			want: []models.Service{models.ServicePetrol},
		},
		{
			name: "only the literal yes counts",
			tags: map[string]string{"fuel_diesel": "Yes", "atm": "true", "toilets": "1", "car_wash": "no", "fuel_cng": ""},
			want: []models.Service{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveServices(tt.tags))
		})
	}
}

func TestDeriveServicesIsOrderIndependent(t *testing.T) {
	a := map[string]string{}
	a["atm"] = "yes"
	a["fuel_octane_95"] = "yes"
	a["fuel_diesel"] = "yes"

	b := map[string]string{}
	b["fuel_diesel"] = "yes"
	b["fuel_octane_95"] = "yes"
	b["atm"] = "yes"

	for i := 0; i < 20; i++ {
		assert.Equal(t, DeriveServices(a), DeriveServices(b))
	}
}

func TestNormalizeElement(t *testing.T) {
	tests := []struct {
		name   string
		el     Element
		want   models.Station
		wantOK bool
	}{
		{
			name: "defaults applied",
			el:   Element{ID: 7, Lat: ptr(12.5), Lon: ptr(77.1)},
			want: models.Station{
				ID:          7,
				Name:        models.DefaultStationName,
				Highway:     models.DefaultHighway,
				Address:     models.DefaultAddress,
				Hours:       models.DefaultHours,
				Coordinates: models.Coordinates{Lat: 12.5, Lon: 77.1},
				Services:    []models.Service{},
			},
			wantOK: true,
		},
		{
			name: "tags copied",
			el: Element{ID: 8, Lat: ptr(0), Lon: ptr(0), Tags: map[string]string{
				"name":          "HP Petrol Pump",
				"highway":       "NH44",
				"addr:full":     "Main Road",
				"opening_hours": "24/7",
				"fuel_lpg":      "yes",
			}},
			want: models.Station{
				ID:          8,
				Name:        "HP Petrol Pump",
				Highway:     "NH44",
				Address:     "Main Road",
				Hours:       "24/7",
				Coordinates: models.Coordinates{Lat: 0, Lon: 0},
				Services:    []models.Service{models.ServiceLPG},
			},
			wantOK: true,
		},
		{
			name:   "missing latitude dropped",
			el:     Element{ID: 9, Lon: ptr(77.1)},
			wantOK: false,
		},
		{
			name:   "missing longitude dropped",
			el:     Element{ID: 10, Lat: ptr(12.5)},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeElement(tt.el)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
