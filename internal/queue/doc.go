// Package queue persists per-carrier run state and segment registrations in
// SQLite so interrupted batches resume without repeating completed work.
package queue
