package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "fuelfinder_"

	ServiceNominatim = "nominatim"
	ServiceOverpass  = "overpass"
	ServiceIPLocate  = "ip_locate"

	ResultSuccess  = "success"
	ResultError    = "error"
	ResultNotFound = "not_found"
	ResultEmpty    = "empty"
)

var (
	registerOnce sync.Once
	gatherer     prometheus.Gatherer

	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	searchOutcomes   *prometheus.CounterVec
	radiusAttempts   prometheus.Histogram
	locateResults    *prometheus.CounterVec
)

// Init registers the collectors once. A nil registry uses the prometheus defaults.
func Init(reg *prometheus.Registry) {
	registerOnce.Do(func() {
		upstreamRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "upstream_requests_total",
				Help: "Upstream API calls by service and result",
			},
			[]string{"service", "result"},
		)
		upstreamLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "upstream_latency_seconds",
				Help:    "Upstream API latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service"},
		)
		searchOutcomes = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "search_outcomes_total",
				Help: "City searches by final outcome",
			},
			[]string{"outcome"},
		)
		radiusAttempts = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "search_radius_attempts",
				Help:    "Radius queries issued per city search",
				Buckets: []float64{0, 1, 2, 3, 4, 5},
			},
		)
		locateResults = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "locate_results_total",
				Help: "Device location requests by result",
			},
			[]string{"result"},
		)

		collectors := []prometheus.Collector{
			upstreamRequests,
			upstreamLatency,
			searchOutcomes,
			radiusAttempts,
			locateResults,
		}
		if reg == nil {
			prometheus.MustRegister(collectors...)
			gatherer = prometheus.DefaultGatherer
			return
		}
		reg.MustRegister(collectors...)
		gatherer = reg
	})
}

// ObserveUpstream records one upstream call.
func ObserveUpstream(service, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if upstreamRequests != nil {
		upstreamRequests.WithLabelValues(service, result).Inc()
	}
	if upstreamLatency != nil {
		upstreamLatency.WithLabelValues(service).Observe(duration.Seconds())
	}
}

// ObserveSearch records the outcome of a city search and how many radius queries it needed.
func ObserveSearch(outcome string, attempts int) {
	if searchOutcomes != nil {
		searchOutcomes.WithLabelValues(outcome).Inc()
	}
	if radiusAttempts != nil {
		radiusAttempts.Observe(float64(attempts))
	}
}

func IncLocate(result string) {
	if locateResults != nil {
		locateResults.WithLabelValues(result).Inc()
	}
}

// Summary flattens the fuelfinder counters into "name{labels} value" lines.
func Summary() ([]string, error) {
	if gatherer == nil {
		return nil, nil
	}
	families, err := gatherer.Gather()
	if err != nil {
		return nil, fmt.Errorf("gathering metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), metricPrefix) {
			continue
		}
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				lines = append(lines, fmt.Sprintf("%s count=%d sum=%g", name, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
	}
	sort.Strings(lines)
	return lines, nil
}
