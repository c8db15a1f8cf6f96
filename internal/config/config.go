// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"

	"github.com/spf13/pflag"
)

// StructuredConfig is the top-level configuration container of the
// go-farrier-sync client. It is populated by merging values from environment
// variables, command-line flags, and an optional JSON or YAML file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env      : direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds the bearer token and request signing settings.
	App App `envPrefix:"APP_"`

	// Storage holds the local database settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Adapter holds the remote server address and request timeouts.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds configuration for background worker processes.
	Workers Workers `envPrefix:"WORKERS_"`

	// Log holds the rotating log file settings.
	Log Log `envPrefix:"LOG_"`

	// Offline holds the offline request cache and its local HTTP listener.
	Offline Offline `envPrefix:"OFFLINE_"`

	// ConfigFilePath is the optional path to a JSON or YAML configuration
	// file. When non-empty, the file is parsed and merged on top of the
	// values already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the --config flag.
	ConfigFilePath string `env:"CONFIG"`
}

// App holds application-level values.
type App struct {
	// Token is the bearer token sent with push and pull requests.
	// Env: APP_TOKEN
	Token string `env:"TOKEN"`

	// HashKey is the HMAC key used to sign pushed batches
	// (the HashSHA256 header). Signing is skipped when empty.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// Version is reported by the local status endpoint.
	// Env: APP_VERSION
	Version string `env:"VERSION" envDefault:"dev"`
}

// Storage groups the local persistence settings.
type Storage struct {
	DB DB `envPrefix:"DB_"`
}

// DB holds the local SQLite database settings.
type DB struct {
	// DSN is the SQLite file path or URI.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN" envDefault:"farrier.db"`
}

// Adapter holds the settings of the remote server connection.
type Adapter struct {
	// HTTPAddress is the base URL of the remote server
	// (e.g. "https://farrier.example.com").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds telemetry and other unauthenticated calls.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	// AuthRequestTimeout bounds bearer-authenticated push and pull calls.
	// Env: ADAPTER_AUTH_REQUEST_TIMEOUT
	AuthRequestTimeout time.Duration `env:"AUTH_REQUEST_TIMEOUT" envDefault:"30s"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// SyncInterval is how often pending queues are pushed and queued
	// telemetry is flushed.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL" envDefault:"5m"`
}

// Log holds the rotating client log settings.
type Log struct {
	// Path is the log file. Logs go to stdout when empty.
	// Env: LOG_PATH
	Path string `env:"PATH"`

	// Env: LOG_MAX_SIZE_MB
	MaxSizeMB int `env:"MAX_SIZE_MB" envDefault:"10"`

	// Env: LOG_MAX_BACKUPS
	MaxBackups int `env:"MAX_BACKUPS" envDefault:"3"`

	// Env: LOG_MAX_AGE_DAYS
	MaxAgeDays int `env:"MAX_AGE_DAYS" envDefault:"28"`
}

// Offline holds the offline request cache settings.
type Offline struct {
	// Address is the local listener serving the cached application,
	// in "host:port" format.
	// Env: OFFLINE_ADDRESS
	Address string `env:"ADDRESS" envDefault:"127.0.0.1:8765"`

	// Origin is the upstream the cache fetches from. Defaults to the
	// adapter address.
	// Env: OFFLINE_ORIGIN
	Origin string `env:"ORIGIN"`

	// StaticCache and PagesCache are the current cache generation names.
	// Bumping them on deploy invalidates every older generation.
	// Env: OFFLINE_STATIC_CACHE, OFFLINE_PAGES_CACHE
	StaticCache string `env:"STATIC_CACHE" envDefault:"static-v1"`
	PagesCache  string `env:"PAGES_CACHE" envDefault:"pages-v1"`

	// Manifest lists the assets precached on install.
	// Env: OFFLINE_MANIFEST (comma separated)
	Manifest []string `env:"MANIFEST" envSeparator:","`

	// NoIntercept lists path prefixes always passed straight to the network.
	// Env: OFFLINE_NO_INTERCEPT
	NoIntercept []string `env:"NO_INTERCEPT" envDefault:"/login,/logout" envSeparator:","`

	// DoNotCache lists path prefixes whose responses are never stored.
	// Env: OFFLINE_DO_NOT_CACHE
	DoNotCache []string `env:"DO_NOT_CACHE" envDefault:"/login,/logout,/api/" envSeparator:","`

	// OfflinePage is the static page served to navigations when both the
	// network and the cache fail.
	// Env: OFFLINE_PAGE
	OfflinePage string `env:"PAGE" envDefault:"/offline.html"`

	// StaticExtensions marks requests served cache-first.
	// Env: OFFLINE_STATIC_EXTENSIONS
	StaticExtensions []string `env:"STATIC_EXTENSIONS" envDefault:".js,.css,.png,.jpg,.svg,.ico,.woff2,.webmanifest" envSeparator:","`
}

// GetStructuredConfig loads and merges the configuration from all available
// sources in the following priority order (last source wins for non-zero
// fields):
//  1. Environment variables
//  2. Command-line flags set on fs
//  3. JSON or YAML file (path resolved from sources 1 and 2)
func GetStructuredConfig(fs *pflag.FlagSet) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(fs).
		withFile().
		build()
}
