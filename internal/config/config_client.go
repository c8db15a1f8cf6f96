package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// Token is the bearer token used for push and pull.
	Token string
	// HashKey is the HMAC key used by the client for payload integrity checks.
	HashKey string
	// Version is the client build version.
	Version string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the base URL of the remote server.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
	// AuthRequestTimeout is the timeout of bearer-authenticated requests.
	AuthRequestTimeout time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite connection string used by the client.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often client sync workers should run.
	SyncInterval time.Duration
}

// ClientLog contains the rotating log file settings.
type ClientLog struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ClientOffline contains the offline request cache settings.
type ClientOffline struct {
	Address          string
	Origin           string
	StaticCache      string
	PagesCache       string
	Manifest         []string
	NoIntercept      []string
	DoNotCache       []string
	OfflinePage      string
	StaticExtensions []string

	// RequestTimeout bounds every upstream fetch; it follows the adapter's
	// default request timeout.
	RequestTimeout time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Adapter contains the remote server address and timeouts.
	Adapter ClientAdapter
	// Storage contains client storage settings.
	Storage ClientStorage
	// Workers contains background job settings.
	Workers ClientWorkers
	// Log contains log output settings.
	Log ClientLog
	// Offline contains the offline request cache settings.
	Offline ClientOffline
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, and validates the resulting [ClientConfig].
func GetClientConfig(fs *pflag.FlagSet) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(fs)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := newClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

func newClientConfig(cfg *StructuredConfig) *ClientConfig {
	origin := cfg.Offline.Origin
	if origin == "" {
		origin = cfg.Adapter.HTTPAddress
	}

	return &ClientConfig{
		App: ClientApp{
			Token:   cfg.App.Token,
			HashKey: cfg.App.HashKey,
			Version: cfg.App.Version,
		},
		Adapter: ClientAdapter{
			HTTPAddress:        cfg.Adapter.HTTPAddress,
			RequestTimeout:     cfg.Adapter.RequestTimeout,
			AuthRequestTimeout: cfg.Adapter.AuthRequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Workers: ClientWorkers{SyncInterval: cfg.Workers.SyncInterval},
		Log: ClientLog{
			Path:       cfg.Log.Path,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		},
		Offline: ClientOffline{
			Address:          cfg.Offline.Address,
			Origin:           origin,
			StaticCache:      cfg.Offline.StaticCache,
			PagesCache:       cfg.Offline.PagesCache,
			Manifest:         cfg.Offline.Manifest,
			NoIntercept:      cfg.Offline.NoIntercept,
			DoNotCache:       cfg.Offline.DoNotCache,
			OfflinePage:      cfg.Offline.OfflinePage,
			StaticExtensions: cfg.Offline.StaticExtensions,
			RequestTimeout:   cfg.Adapter.RequestTimeout,
		},
	}
}
