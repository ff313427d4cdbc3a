package locate

import (
	"context"

	"github.com/riyashastri4/nh-fuel-finder/internal/models"
)

// StaticLocator reports a fixed, configured position.
type StaticLocator struct {
	position *models.Coordinates
}

var _ models.Locator = (*StaticLocator)(nil)

// NewStaticLocator returns a locator for position; a nil position makes
// every call fail with ErrLocationUnsupported.
func NewStaticLocator(position *models.Coordinates) *StaticLocator {
	return &StaticLocator{position: position}
}

func (l *StaticLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	if l.position == nil {
		return models.Coordinates{}, ErrLocationUnsupported
	}
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, err
	}
	return *l.position, nil
}
