// Package http implements the local HTTP surface of the farrier client.
//
// The router serves two things. Under /_sync it exposes a small JSON API
// the web app uses to trigger a push or pull, read pending queues and
// indicator states, and flush queued telemetry. Every other path is handed
// to the offline request cache, which proxies the application origin and
// keeps it usable without a network. Tracing, access logging, compression
// and bearer-token forwarding are handled here before requests reach the
// service layer.
package http
