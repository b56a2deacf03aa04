package config

import "errors"

var (
	ErrParsingConfig   = errors.New("config.errors.parsing_failed")
	ErrInvalidConfig   = errors.New("config.errors.invalid")
	ErrNilPointer      = errors.New("config.errors.nil_pointer")
	ErrConfigNotLoaded = errors.New("config.errors.not_loaded")
)
