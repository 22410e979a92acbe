// Package config loads EduPlan runtime configuration from defaults, an
// optional YAML file, environment variables (a .env file is loaded by main)
// and CLI flags, in increasing order of precedence.
package config
