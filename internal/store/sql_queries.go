// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	eventsTable = "events"

	columnSeq     = "seq"
	columnID      = "id"
	columnType    = "type"
	columnTS      = "ts"
	columnPayload = "payload"

	// defaultHistoryLimit applies when a request carries no limit.
	defaultHistoryLimit uint64 = 100
	// maxHistoryLimit caps a single history page.
	maxHistoryLimit uint64 = 1000
)
