// Package server runs the local HTTP listener that fronts the offline
// request cache and the sync API, including graceful shutdown.
package server
