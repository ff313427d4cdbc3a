package geocode

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPlaceName = errors.New("place name cannot be empty")
	ErrPlaceNotFound  = errors.New("place not found")
)

// TransportError represents a failed call to the geocoding service: network,
// non-2xx status or an undecodable body.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geocoding API error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("geocoding API error: %s", e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func NewTransportError(message string, err error) *TransportError {
	return &TransportError{
		Message: message,
		Err:     err,
	}
}
