package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riyashastri4/nh-fuel-finder/internal/config"
	"github.com/riyashastri4/nh-fuel-finder/internal/coordinator"
	"github.com/riyashastri4/nh-fuel-finder/internal/models"
	"github.com/riyashastri4/nh-fuel-finder/internal/render"
	"github.com/riyashastri4/nh-fuel-finder/internal/search"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, name string) (*search.Result, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*search.Result), args.Error(1)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		wantCmd string
		wantArg string
	}{
		{line: "", wantCmd: "", wantArg: ""},
		{line: "   ", wantCmd: "", wantArg: ""},
		{line: "locate", wantCmd: "locate", wantArg: ""},
		{line: "SEARCH  New Delhi ", wantCmd: "search", wantArg: "New Delhi"},
		{line: "filter NH48", wantCmd: "filter", wantArg: "NH48"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, arg := parseCommand(tt.line)
			assert.Equal(t, tt.wantCmd, cmd)
			assert.Equal(t, tt.wantArg, arg)
		})
	}
}

func TestExecute(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, "Pune").Return(&search.Result{
		Place: models.Place{Name: "Pune", Center: models.Coordinates{Lat: 18.52, Lon: 73.85}},
		Stations: []models.Station{{
			ID:          1,
			Name:        "Bharat Petroleum",
			Highway:     "NH48",
			Coordinates: models.Coordinates{Lat: 18.53, Lon: 73.86},
		}},
		Outcome: search.OutcomeBoundingBox,
	}, nil).Once()

	var out bytes.Buffer
	a := &app{
		coord: coordinator.New(searcher, nil, render.NewTerminalMap(&out), render.NewTerminalList(&out)),
		out:   &out,
	}

	assert.False(t, a.execute(context.Background(), "search"))
	assert.Contains(t, out.String(), "usage: search <place>")

	assert.False(t, a.execute(context.Background(), "search Pune"))
	assert.Contains(t, out.String(), "Bharat Petroleum")

	assert.False(t, a.execute(context.Background(), "locate"))
	assert.Contains(t, out.String(), coordinator.MsgLocationUnsupported)

	assert.False(t, a.execute(context.Background(), "teleport"))
	assert.Contains(t, out.String(), `unknown command "teleport"`)

	assert.True(t, a.execute(context.Background(), "quit"))
	searcher.AssertExpectations(t)
}

func TestRunSession(t *testing.T) {
	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[{"lat":"28.61","lon":"77.20","display_name":"Delhi",
			"boundingbox":["28.40","28.90","76.80","77.40"]}]`))
	}))
	defer nominatim.Close()

	overpass := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"elements":[
			{"type":"node","id":1,"lat":28.70,"lon":77.10,"tags":{"name":"Indian Oil","highway":"NH48","fuel_diesel":"yes"}},
			{"type":"node","id":2,"lat":28.62,"lon":77.21,"tags":{"name":"HP","highway":"NH44"}}
		]}`))
	}))
	defer overpass.Close()

	cfg := config.New(
		config.WithNominatimBaseURL(nominatim.URL),
		config.WithOverpassBaseURL(overpass.URL),
		config.WithHTTPTimeout(5*time.Second),
		config.WithHomeLocation(28.60, 77.20),
	)
	require.NoError(t, cfg.Validate())

	cacheCfg := &config.CacheConfig{
		GeocodeLRUSize:       8,
		GeocodeLRUTTLMinutes: 5,
		EnableGeocodeCache:   true,
		LocateTimeout:        time.Second,
		LocateMaxAge:         time.Minute,
	}

	var out bytes.Buffer
	a, err := buildApp(cfg, cacheCfg, &out)
	require.NoError(t, err)

	input := strings.Join([]string{
		"help",
		"search Delhi",
		"search delhi",
		"filter NH48",
		"filter all",
		"locate",
		"stats",
		"quit",
		"search Never Reached",
	}, "\n")
	require.NoError(t, a.run(context.Background(), strings.NewReader(input)))

	got := out.String()
	assert.Contains(t, got, "Commands:")
	assert.Contains(t, got, "Indian Oil")
	assert.Contains(t, got, "Nearest station: HP, NH44")
	assert.Contains(t, got, "You are here: 28.6000,77.2000")
	assert.Contains(t, got, "place cache: 1 entries, 1 hits, 1 misses")
	assert.NotContains(t, got, "Error:")

	snap := a.coord.Snapshot()
	assert.Equal(t, coordinator.StateDisplaying, snap.State)
	assert.Len(t, snap.Displayed, 2)
	require.NotNil(t, snap.Nearest)
	assert.Equal(t, int64(2), snap.Nearest.ID)
}

func TestBuildAppWithoutCache(t *testing.T) {
	cfg := config.New(config.WithIPLocateURL(""))
	a, err := buildApp(cfg, &config.CacheConfig{EnableGeocodeCache: false, LocateTimeout: time.Second}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Nil(t, a.placeCache)

	a.coord.Locate(context.Background())
	assert.Equal(t, coordinator.MsgLocationUnsupported, a.coord.Snapshot().Message)
}
