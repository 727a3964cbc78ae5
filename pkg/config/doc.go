// Package config provides configuration management for linkgate.
//
// This package handles loading, validating, and watching configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("linkgate.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("linkgate.yaml")
//
// Passing an empty path to LoadConfigWithEnvOverrides starts from defaults.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention LINKGATE_SECTION_FIELD.
// For example:
//
//   - LINKGATE_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - LINKGATE_RATE_LIMIT_RATE_LIMIT overrides rate_limit.rate_limit
//   - LINKGATE_STORE_BACKEND overrides store.backend
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Live Reload
//
// Watcher observes the configuration file with fsnotify and hands each
// valid reloaded Config to a callback. Only settings that are safe to
// change at runtime are applied by the caller.
package config
