package app

import "errors"

// Sentinel kinds for service errors.
var (
	ErrUnknownMetric = errors.New("unknown metric")
	ErrNoRecords     = errors.New("no records match the selection")
)
