// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the farrier client application runtime.
//
// It opens the local database, wires the sync services, the offline request
// cache and the background sync job, and exposes the operations driven by
// the command line: push, pull, status, flush and serve.
package client
