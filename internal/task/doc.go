// Package task owns the to-do collection: creation defaults, mutations,
// filtered and sorted views, stats, and persistence to a key-value entry.
//
// The collection is stored under a single key (default "tasks") as a JSON
// array, rewritten wholesale after every mutation:
//
//	[
//	  {
//	    "id": "3f0c1c9e-2a57-4c1e-9a0e-5f1f0d2b8c11",
//	    "text": "Buy milk",
//	    "completed": false,
//	    "dueDate": "2024-05-01",
//	    "priority": "medium",
//	    "tags": ["errand", "home"],
//	    "addedDate": "2024-04-29T08:15:00.000Z"
//	  }
//	]
//
// Records that predate the richer fields (only "text" and "completed") load
// with defaults: a fresh id, today's due date, medium priority, no tags, and
// the load time as addedDate. Content that cannot be decoded is treated as
// an empty collection.
//
// # Views
//
// FilterAndSort never mutates the collection. Status filters are "all",
// "completed" and "active". The tag filter is a comma-separated list matched
// case-insensitively; a task is kept when any filter tag equals any of its
// tags. Sort keys are "dueDate" (ascending), "priority" (high, medium, low)
// and "added" (ascending); an empty key keeps insertion order.
//
// # Validation
//
// Validate checks a raw snapshot against the embedded JSON Schema (draft
// 2020-12), or a schema file when one is configured, and falls back to
// minimal structural checks when no schema can be compiled. Load never
// rejects data on schema grounds.
//
// A Store is not safe for concurrent use.
package task
