package tools

import "errors"

// ErrToolNotFound indicates an external tool could not be located through
// the environment, the configuration, or $PATH.
var ErrToolNotFound = errors.New("external tool not found")
