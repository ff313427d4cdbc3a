package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/riyashastri4/nh-fuel-finder/internal/cache"
	"github.com/riyashastri4/nh-fuel-finder/internal/config"
	"github.com/riyashastri4/nh-fuel-finder/internal/coordinator"
	"github.com/riyashastri4/nh-fuel-finder/internal/geocode"
	"github.com/riyashastri4/nh-fuel-finder/internal/locate"
	"github.com/riyashastri4/nh-fuel-finder/internal/metrics"
	"github.com/riyashastri4/nh-fuel-finder/internal/models"
	"github.com/riyashastri4/nh-fuel-finder/internal/render"
	"github.com/riyashastri4/nh-fuel-finder/internal/search"
	"github.com/riyashastri4/nh-fuel-finder/internal/station"
	"github.com/riyashastri4/nh-fuel-finder/pkg/http/client"
)

const helpText = `Commands:
  search <place>         find fuel stations in or around a city
  locate                 use your location to rank stations and show the nearest
  filter <highway|all>   show only stations on one highway, or all of them
  stats                  show request counters
  help                   show this help
  quit                   exit
`

type app struct {
	coord      *coordinator.Coordinator
	placeCache *cache.LRUCache[string, models.Place]
	out        io.Writer
}

func buildApp(cfg *config.Config, cacheCfg *config.CacheConfig, out io.Writer) (*app, error) {
	httpOptions := func(baseURL string) client.Options {
		return client.Options{
			BaseURL:    baseURL,
			Timeout:    cfg.HTTPTimeout,
			UserAgent:  cfg.UserAgent,
			MaxRetries: cfg.MaxRetries,
		}
	}

	var placeCache *cache.LRUCache[string, models.Place]
	if cacheCfg.EnableGeocodeCache {
		var err error
		placeCache, err = cache.NewLRUCache[string, models.Place](cacheCfg.GeocodeLRUSize, cacheCfg.GetGeocodeLRUTTL())
		if err != nil {
			return nil, fmt.Errorf("creating place cache: %w", err)
		}
	}

	geocoder := geocode.NewNominatimGeocoder(client.New(httpOptions(cfg.NominatimBaseURL)), placeCache)
	finder := station.NewOverpassStationFinder(client.New(httpOptions(cfg.OverpassBaseURL)))
	pipeline := search.NewPipeline(geocoder, finder, search.Options{})

	var source models.Locator
	switch {
	case cfg.Home != nil:
		source = locate.NewStaticLocator(cfg.Home)
	case cfg.IPLocateURL != "":
		source = locate.NewIPLocator(client.New(httpOptions(cfg.IPLocateURL)))
	default:
		source = locate.NewStaticLocator(nil)
	}
	locator := locate.NewCachingLocator(source, cacheCfg.LocateTimeout, cacheCfg.LocateMaxAge)

	return &app{
		coord:      coordinator.New(pipeline, locator, render.NewTerminalMap(out), render.NewTerminalList(out)),
		placeCache: placeCache,
		out:        out,
	}, nil
}

// run reads commands from in until EOF, quit or cancellation.
func (a *app) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(a.out, "> ")
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		if quit := a.execute(ctx, scanner.Text()); quit {
			return nil
		}
		fmt.Fprint(a.out, "> ")
	}
	return scanner.Err()
}

// execute runs one command line and reports whether the session should end.
func (a *app) execute(ctx context.Context, line string) bool {
	cmd, arg := parseCommand(line)
	switch cmd {
	case "":
	case "search", "s":
		if arg == "" {
			fmt.Fprintln(a.out, "usage: search <place>")
			return false
		}
		a.coord.Search(ctx, arg)
	case "locate", "l":
		a.coord.Locate(ctx)
	case "filter", "f":
		a.coord.Filter(arg)
	case "stats":
		a.printStats()
	case "help", "?":
		fmt.Fprint(a.out, helpText)
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(a.out, "unknown command %q, type help for a list\n", cmd)
	}
	return false
}

func (a *app) printStats() {
	lines, err := metrics.Summary()
	if err != nil {
		log.Error().Err(err).Msg("Failed to gather metrics")
		return
	}
	for _, line := range lines {
		fmt.Fprintln(a.out, line)
	}
	if a.placeCache != nil {
		stats := a.placeCache.GetCacheStats()
		fmt.Fprintf(a.out, "place cache: %d entries, %d hits, %d misses\n",
			a.placeCache.Len(), stats["lru_hits"], stats["lru_misses"])
	}
}

func parseCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ""
	}
	cmd, arg, _ := strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

func main() {
	placeFlag := flag.String("search", "", "search a place once and exit")
	locateFlag := flag.Bool("locate", false, "locate once and exit (after -search when both are set)")
	filterFlag := flag.String("filter", "", "highway filter applied before displaying results")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Could not load .env file")
	}

	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log.Logger = log.With().Str("session_id", uuid.NewString()).Logger()

	metrics.Init(nil)

	a, err := buildApp(cfg, config.GetCacheConfig(), os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a.coord.Init()
	if *filterFlag != "" {
		a.coord.Filter(*filterFlag)
	}

	if *placeFlag != "" || *locateFlag {
		if *placeFlag != "" {
			a.coord.Search(ctx, *placeFlag)
		}
		if *locateFlag {
			a.coord.Locate(ctx)
		}
		return
	}

	fmt.Fprint(os.Stdout, helpText)
	if err := a.run(ctx, os.Stdin); err != nil {
		log.Error().Err(err).Msg("Reading input failed")
	}
}
