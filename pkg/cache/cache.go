package cache

import "errors"

// ErrIllegalMode is returned when the configured redis mode is unknown.
var ErrIllegalMode = errors.New("cache: illegal redis mode")
