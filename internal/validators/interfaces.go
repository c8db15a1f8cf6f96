// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks local mutations and sync requests before they
// reach the local store or the network. A mutation must name a known entity
// class and carry a record; a pull must name known tables.
package validators

import "context"

// Validator checks a mutation, a settings change or a table list. Fields,
// when given, limit the check to the named record fields.
type Validator interface {
	Validate(ctx context.Context, obj any, fields ...string) error
}
