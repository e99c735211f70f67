// Package config loads tenantctl configuration once at startup, from an
// optional YAML file with environment variables taking precedence, and hands
// commands an explicit Config value. Credentials are validated before any
// external call and are never logged.
package config
