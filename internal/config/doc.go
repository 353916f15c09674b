// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > environment
// variables > YAML config > defaults. It exposes strongly typed settings for
// the catalog source, solver limits, and the HTTP server.
package config
