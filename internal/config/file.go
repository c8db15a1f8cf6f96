package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// StructuredFileConfig is the on-disk layout of the configuration file. The
// same structure is read from JSON and YAML.
type StructuredFileConfig struct {
	App struct {
		Token   string `json:"token" yaml:"token"`
		HashKey string `json:"hash_key" yaml:"hash_key"`
		Version string `json:"version" yaml:"version"`
	} `json:"app,omitempty" yaml:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn" yaml:"dsn"`
		} `json:"db,omitempty" yaml:"db,omitempty"`
	} `json:"storage,omitempty" yaml:"storage,omitempty"`

	Adapter struct {
		HTTPAddress        string   `json:"http_address" yaml:"http_address"`
		RequestTimeout     Duration `json:"request_timeout" yaml:"request_timeout"`
		AuthRequestTimeout Duration `json:"auth_request_timeout" yaml:"auth_request_timeout"`
	} `json:"adapter,omitempty" yaml:"adapter,omitempty"`

	Workers struct {
		SyncInterval Duration `json:"sync_interval" yaml:"sync_interval"`
	} `json:"workers,omitempty" yaml:"workers,omitempty"`

	Log struct {
		Path       string `json:"path" yaml:"path"`
		MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
		MaxBackups int    `json:"max_backups" yaml:"max_backups"`
		MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
	} `json:"log,omitempty" yaml:"log,omitempty"`

	Offline struct {
		Address          string   `json:"address" yaml:"address"`
		Origin           string   `json:"origin" yaml:"origin"`
		StaticCache      string   `json:"static_cache" yaml:"static_cache"`
		PagesCache       string   `json:"pages_cache" yaml:"pages_cache"`
		Manifest         []string `json:"manifest" yaml:"manifest"`
		NoIntercept      []string `json:"no_intercept" yaml:"no_intercept"`
		DoNotCache       []string `json:"do_not_cache" yaml:"do_not_cache"`
		OfflinePage      string   `json:"offline_page" yaml:"offline_page"`
		StaticExtensions []string `json:"static_extensions" yaml:"static_extensions"`
	} `json:"offline,omitempty" yaml:"offline,omitempty"`
}

// parseFile reads a JSON or YAML configuration file. The format is chosen by
// extension: .yaml and .yml are YAML, everything else is JSON.
func parseFile(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading a config file: %w", err)
	}

	var fileCfg StructuredFileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err = yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("error decoding yaml configs: %w", err)
		}
	default:
		if err = json.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("error decoding json configs: %w", err)
		}
	}

	cfg := &StructuredConfig{
		App: App{
			Token:   fileCfg.App.Token,
			HashKey: fileCfg.App.HashKey,
			Version: fileCfg.App.Version,
		},
		Storage: Storage{
			DB: DB{DSN: fileCfg.Storage.DB.DSN},
		},
		Adapter: Adapter{
			HTTPAddress:        fileCfg.Adapter.HTTPAddress,
			RequestTimeout:     time.Duration(fileCfg.Adapter.RequestTimeout),
			AuthRequestTimeout: time.Duration(fileCfg.Adapter.AuthRequestTimeout),
		},
		Workers: Workers{
			SyncInterval: time.Duration(fileCfg.Workers.SyncInterval),
		},
		Log: Log{
			Path:       fileCfg.Log.Path,
			MaxSizeMB:  fileCfg.Log.MaxSizeMB,
			MaxBackups: fileCfg.Log.MaxBackups,
			MaxAgeDays: fileCfg.Log.MaxAgeDays,
		},
		Offline: Offline{
			Address:          fileCfg.Offline.Address,
			Origin:           fileCfg.Offline.Origin,
			StaticCache:      fileCfg.Offline.StaticCache,
			PagesCache:       fileCfg.Offline.PagesCache,
			Manifest:         fileCfg.Offline.Manifest,
			NoIntercept:      fileCfg.Offline.NoIntercept,
			DoNotCache:       fileCfg.Offline.DoNotCache,
			OfflinePage:      fileCfg.Offline.OfflinePage,
			StaticExtensions: fileCfg.Offline.StaticExtensions,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON and YAML
// unmarshaling from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalYAML accepts either a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		if tmp, parseErr := time.ParseDuration(s); parseErr == nil {
			*d = Duration(tmp)
			return nil
		}
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	*d = Duration(time.Duration(n))
	return nil
}
