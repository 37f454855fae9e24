// Package store defines the persistence interfaces for vocabulary items,
// review states, sessions, session summaries, and the review activity log.
// Services depend on these interfaces rather than on a concrete database,
// so the SQL implementations and the in-memory test fakes are
// interchangeable.
package store
