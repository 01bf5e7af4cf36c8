package domain

import "errors"

// ErrNotFound means a dive index, trip or trip hint does not exist.
// Handlers map it to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation means input broke a dive or list rule: a missing time, a
// rating above five stars, an unknown column or sort order.
// Handlers map it to HTTP 422.
var ErrValidation = errors.New("validation error")
