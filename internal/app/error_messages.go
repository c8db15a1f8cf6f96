// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// go-farrier-sync services, the local HTTP API and the end-of-run report.
//
// Msg* constants are the human-readable strings written into report entries
// and local API responses.
package app

const (
	// MsgChangesNotSaved is shown when the local database cannot be opened or
	// a write fails; the user keeps working but the change is lost.
	MsgChangesNotSaved = "local database unavailable, changes will not be saved"

	// MsgAuthRequired is shown when a push or pull was rejected because the
	// bearer token is missing, expired or refused by the server.
	MsgAuthRequired = "please log in again to sync"

	// MsgOffline is shown when the server could not be reached; queued changes
	// stay on this device until the next attempt.
	MsgOffline = "you appear to be offline, changes are queued for later"

	// MsgTimeout is shown when the server did not answer in time.
	MsgTimeout = "the server took too long to respond, try again later"

	// MsgUnexpectedResponse is shown when the server answer could not be
	// understood.
	MsgUnexpectedResponse = "unexpected response from server"

	// MsgServerError is used when the server reported a failure without a
	// message of its own.
	MsgServerError = "server error"

	// MsgSkippedDependency is shown for a queue that was not sent because a
	// store it depends on failed earlier in the same push.
	MsgSkippedDependency = "skipped, waiting for %s to sync"

	// MsgBackedUp reports a queue that was fully acknowledged.
	MsgBackedUp = "%d change(s) backed up"

	// MsgNothingToUpdate reports a queue the server had nothing to apply for.
	MsgNothingToUpdate = "no changes needed"

	// MsgTransferred reports a pulled table.
	MsgTransferred = "%d record(s) downloaded"

	// MsgNoData reports a pulled table the server holds no data for.
	MsgNoData = "no data on server"

	// MsgInvalidDataProvided is returned by the local API when a request body
	// cannot be decoded.
	MsgInvalidDataProvided = "invalid data provided"

	// MsgInternalServerError is returned by the local API on unexpected
	// failures.
	MsgInternalServerError = "internal server error"

	// MsgOfflinePage is the body of the last-resort 503 served by the offline
	// cache.
	MsgOfflinePage = "You are offline and this page has not been saved yet."
)
