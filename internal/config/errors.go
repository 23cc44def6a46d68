package config

import "errors"

// Sentinel kinds for configuration errors.
var (
	ErrLoadFile      = errors.New("config file load failed")
	ErrLoadEnv       = errors.New("config env load failed")
	ErrUnmarshal     = errors.New("config unmarshal failed")
	ErrInvalidConfig = errors.New("invalid config")
)
