package locate

import "errors"

var (
	// ErrLocationUnsupported means no location source is available at all.
	ErrLocationUnsupported = errors.New("location is not supported")
	ErrLocationDenied      = errors.New("location permission denied")
	ErrLocationTimeout     = errors.New("location request timed out")
)
