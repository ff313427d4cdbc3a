package locate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/riyashastri4/nh-fuel-finder/internal/cache"
	"github.com/riyashastri4/nh-fuel-finder/internal/metrics"
	"github.com/riyashastri4/nh-fuel-finder/internal/models"
)

const (
	DefaultTimeout = 10 * time.Second
	DefaultMaxAge  = 10 * time.Minute
)

type fix struct {
	position models.Coordinates
	at       time.Time
}

// CachingLocator bounds each request by a timeout and reuses a previous
// fix while it is younger than maxAge.
type CachingLocator struct {
	inner   models.Locator
	timeout time.Duration
	maxAge  time.Duration
	clock   cache.Clock

	mu   sync.Mutex
	last *fix
}

var _ models.Locator = (*CachingLocator)(nil)

func NewCachingLocator(inner models.Locator, timeout, maxAge time.Duration) *CachingLocator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxAge < 0 {
		maxAge = 0
	}
	return &CachingLocator{
		inner:   inner,
		timeout: timeout,
		maxAge:  maxAge,
		clock:   cache.SystemClock(),
	}
}

// WithClock swaps the time source; intended for tests.
func (l *CachingLocator) WithClock(clock cache.Clock) *CachingLocator {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clock = clock
	return l
}

func (l *CachingLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	l.mu.Lock()
	if l.last != nil && l.clock.Now().Sub(l.last.at) <= l.maxAge {
		pos := l.last.position
		l.mu.Unlock()
		log.Debug().Str("position", pos.String()).Msg("Reusing recent location fix")
		metrics.IncLocate("cached")
		return pos, nil
	}
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	pos, err := l.inner.Locate(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrLocationTimeout
		}
		metrics.IncLocate(classify(err))
		return models.Coordinates{}, err
	}

	l.mu.Lock()
	l.last = &fix{position: pos, at: l.clock.Now()}
	l.mu.Unlock()

	metrics.IncLocate(metrics.ResultSuccess)
	return pos, nil
}

func classify(err error) string {
	switch {
	case errors.Is(err, ErrLocationUnsupported):
		return "unsupported"
	case errors.Is(err, ErrLocationDenied):
		return "denied"
	case errors.Is(err, ErrLocationTimeout):
		return "timeout"
	default:
		return metrics.ResultError
	}
}
