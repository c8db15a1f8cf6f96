package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Flag names registered by [AddFlags].
const (
	flagConfig             = "config"
	flagDSN                = "dsn"
	flagServer             = "server"
	flagToken              = "token"
	flagHashKey            = "hash-key"
	flagRequestTimeout     = "request-timeout"
	flagAuthRequestTimeout = "auth-request-timeout"
	flagSyncInterval       = "sync-interval"
	flagLogPath            = "log-path"
	flagListen             = "listen"
	flagOrigin             = "origin"
	flagStaticCache        = "static-cache"
	flagPagesCache         = "pages-cache"
	flagManifest           = "manifest"
	flagOfflinePage        = "offline-page"
)

// NetAddress holds structured network address data for host and port.
// It implements the pflag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// AddFlags registers every configuration flag on fs. Only flags the user
// actually sets take part in the merge, so defaults never shadow env values.
//
// Flags:
//
//	-c/--config               json or yaml file path with configs
//	-d/--dsn                  local database DSN
//	-s/--server               remote server base URL
//	--token                   bearer token
//	--hash-key                request signing key
//	--request-timeout         default request timeout (e.g. "10s")
//	--auth-request-timeout    push/pull request timeout (e.g. "30s")
//	--sync-interval           background sync period (e.g. "5m")
//	--log-path                rotating log file
//	-a/--listen               offline cache listener host:port
//	--origin                  upstream origin of the cached application
//	--static-cache            current static cache generation
//	--pages-cache             current pages cache generation
//	--manifest                assets precached on install
//	--offline-page            fallback page for offline navigations
func AddFlags(fs *pflag.FlagSet) {
	fs.StringP(flagConfig, "c", "", "JSON or YAML config file path")
	fs.StringP(flagDSN, "d", "", "Local database DSN")
	fs.StringP(flagServer, "s", "", "Remote server base URL")
	fs.String(flagToken, "", "Bearer token")
	fs.String(flagHashKey, "", "Request signing key")
	fs.Duration(flagRequestTimeout, 0, "Request timeout (e.g., 10s)")
	fs.Duration(flagAuthRequestTimeout, 0, "Authenticated request timeout (e.g., 30s)")
	fs.Duration(flagSyncInterval, 0, "Background sync interval (e.g., 5m)")
	fs.String(flagLogPath, "", "Log file path")
	fs.VarP(&NetAddress{}, flagListen, "a", "Offline cache listener host:port")
	fs.String(flagOrigin, "", "Upstream origin of the cached application")
	fs.String(flagStaticCache, "", "Static cache generation name")
	fs.String(flagPagesCache, "", "Pages cache generation name")
	fs.StringSlice(flagManifest, nil, "Assets precached on install")
	fs.String(flagOfflinePage, "", "Offline fallback page")
}

func parseFlags(fs *pflag.FlagSet) (*StructuredConfig, error) {
	cfg := &StructuredConfig{}
	var errs []error

	str := func(name string, dst *string) {
		if fs.Lookup(name) == nil || !fs.Changed(name) {
			return
		}
		v, err := fs.GetString(name)
		errs = append(errs, err)
		*dst = v
	}
	dur := func(name string, dst *time.Duration) {
		if fs.Lookup(name) == nil || !fs.Changed(name) {
			return
		}
		v, err := fs.GetDuration(name)
		errs = append(errs, err)
		*dst = v
	}

	str(flagConfig, &cfg.ConfigFilePath)
	str(flagDSN, &cfg.Storage.DB.DSN)
	str(flagServer, &cfg.Adapter.HTTPAddress)
	str(flagToken, &cfg.App.Token)
	str(flagHashKey, &cfg.App.HashKey)
	dur(flagRequestTimeout, &cfg.Adapter.RequestTimeout)
	dur(flagAuthRequestTimeout, &cfg.Adapter.AuthRequestTimeout)
	dur(flagSyncInterval, &cfg.Workers.SyncInterval)
	str(flagLogPath, &cfg.Log.Path)
	str(flagOrigin, &cfg.Offline.Origin)
	str(flagStaticCache, &cfg.Offline.StaticCache)
	str(flagPagesCache, &cfg.Offline.PagesCache)
	str(flagOfflinePage, &cfg.Offline.OfflinePage)

	if f := fs.Lookup(flagListen); f != nil && f.Changed {
		cfg.Offline.Address = f.Value.String()
	}
	if fs.Lookup(flagManifest) != nil && fs.Changed(flagManifest) {
		v, err := fs.GetStringSlice(flagManifest)
		errs = append(errs, err)
		cfg.Offline.Manifest = v
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("error reading flags: %w", err)
	}
	return cfg, nil
}

// String returns a canonical host:port string for a NetAddress.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in 1..65535")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(host)
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}

// Type implements pflag.Value.
func (a *NetAddress) Type() string {
	return "host:port"
}
