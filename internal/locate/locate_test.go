package locate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riyashastri4/nh-fuel-finder/internal/models"
	"github.com/riyashastri4/nh-fuel-finder/pkg/http/client"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type mockLocator struct {
	locateFunc func(ctx context.Context) (models.Coordinates, error)
	calls      int
}

func (m *mockLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	m.calls++
	return m.locateFunc(ctx)
}

func TestStaticLocator(t *testing.T) {
	home := &models.Coordinates{Lat: 12.97, Lon: 77.59}

	pos, err := NewStaticLocator(home).Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, *home, pos)

	_, err = NewStaticLocator(nil).Locate(context.Background())
	assert.ErrorIs(t, err, ErrLocationUnsupported)
}

func TestIPLocator(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    models.Coordinates
		wantErr error
		anyErr  bool
	}{
		{
			name:   "ipapi shape",
			status: http.StatusOK,
			body:   `{"ip":"1.2.3.4","latitude":19.07,"longitude":72.87}`,
			want:   models.Coordinates{Lat: 19.07, Lon: 72.87},
		},
		{
			name:   "ip-api shape",
			status: http.StatusOK,
			body:   `{"status":"success","lat":13.08,"lon":80.27}`,
			want:   models.Coordinates{Lat: 13.08, Lon: 80.27},
		},
		{
			name:    "forbidden",
			status:  http.StatusForbidden,
			body:    `{}`,
			wantErr: ErrLocationDenied,
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"error":true,"reason":"RateLimited"}`,
			anyErr: true,
		},
		{
			name:   "reserved address",
			status: http.StatusOK,
			body:   `{"error":true,"reason":"Reserved IP Address"}`,
			anyErr: true,
		},
		{
			name:   "missing coordinates",
			status: http.StatusOK,
			body:   `{"ip":"1.2.3.4"}`,
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			locator := NewIPLocator(client.New(client.Options{BaseURL: srv.URL, Timeout: 5 * time.Second}))
			got, err := locator.Locate(context.Background())

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrLocationDenied)
				assert.NotErrorIs(t, err, ErrLocationTimeout)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestIPLocatorTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	locator := NewIPLocator(client.New(client.Options{BaseURL: srv.URL, Timeout: 5 * time.Second}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := locator.Locate(ctx)
	assert.ErrorIs(t, err, ErrLocationTimeout)
}

func TestCachingLocatorReusesRecentFix(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	inner := &mockLocator{
		locateFunc: func(ctx context.Context) (models.Coordinates, error) {
			return models.Coordinates{Lat: 1, Lon: 2}, nil
		},
	}
	locator := NewCachingLocator(inner, time.Second, 10*time.Minute).WithClock(clock)

	for i := 0; i < 3; i++ {
		pos, err := locator.Locate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, models.Coordinates{Lat: 1, Lon: 2}, pos)
		clock.Advance(time.Minute)
	}
	assert.Equal(t, 1, inner.calls)

	clock.Advance(10 * time.Minute)
	_, err := locator.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachingLocatorErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "unsupported", err: ErrLocationUnsupported, wantErr: ErrLocationUnsupported},
		{name: "denied", err: ErrLocationDenied, wantErr: ErrLocationDenied},
		{name: "deadline becomes timeout", err: context.DeadlineExceeded, wantErr: ErrLocationTimeout},
		{name: "other", err: errors.New("gps offline"), wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &mockLocator{
				locateFunc: func(ctx context.Context) (models.Coordinates, error) {
					return models.Coordinates{}, tt.err
				},
			}
			locator := NewCachingLocator(inner, time.Second, time.Minute)

			_, err := locator.Locate(context.Background())
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			// failures are never cached
			_, _ = locator.Locate(context.Background())
			assert.Equal(t, 2, inner.calls)
		})
	}
}

func TestCachingLocatorAppliesTimeout(t *testing.T) {
	inner := &mockLocator{
		locateFunc: func(ctx context.Context) (models.Coordinates, error) {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			<-ctx.Done()
			return models.Coordinates{}, ctx.Err()
		},
	}
	locator := NewCachingLocator(inner, 20*time.Millisecond, DefaultMaxAge)

	start := time.Now()
	_, err := locator.Locate(context.Background())
	assert.ErrorIs(t, err, ErrLocationTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewCachingLocatorDefaults(t *testing.T) {
	locator := NewCachingLocator(&mockLocator{}, 0, -time.Minute)

	assert.Equal(t, DefaultTimeout, locator.timeout)
	assert.Equal(t, time.Duration(0), locator.maxAge)
}
