// Package config loads and validates replayer configuration from YAML.
//
// Loading is split into three steps that callers compose as needed:
// Load (parse + env expansion), LoadWithDefaults (fill optional fields),
// and LoadAndValidate (reject incomplete configs).
package config
