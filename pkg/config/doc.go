// Package config loads environment-driven configuration structs.
//
// Structs describe their variables with caarlos0/env tags. The first call to
// Load reads a .env file when present, then parses the environment into the
// struct. Results are cached per type, so every package can call Load for its
// own Config without re-parsing.
//
// A struct that implements Validator is validated right after parsing. A
// validation failure is reported as ErrInvalidConfig; the service is expected
// to exit rather than start with a half-configured payment path.
package config
