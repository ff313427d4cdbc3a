package station

import "fmt"

// TransportError represents a failed call to the Overpass interpreter.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("overpass API error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("overpass API error: %s", e.Message)
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
