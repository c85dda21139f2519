package database

import "errors"

// ErrNotReady is returned by Check until the startup ping has succeeded.
var ErrNotReady = errors.New("database not ready")
