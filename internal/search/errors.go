package search

import "errors"

// ErrSearchExhausted means the place resolved but no stations were found
// even after every radius expansion.
var ErrSearchExhausted = errors.New("no stations found after expanding search radius")
