package application

import "errors"

var ErrNotFound = errors.New("not found")
var ErrBadRequest = errors.New("bad request")
var ErrConflict = errors.New("state changed concurrently")

var errNoProvider = errors.New("provider not configured")
