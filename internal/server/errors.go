package server

import "errors"

// errNothingToServe is returned by NewServer without a listen address or
// a handler.
var errNothingToServe = errors.New("server: no listen address or handler")
