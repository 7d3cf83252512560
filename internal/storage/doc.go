package storage

// Package storage provides the launch audit trail.
//
// The progress record (internal/state) is the source of truth for
// resumability; this store is the operator-facing history of every terminal
// outcome, including failures, which the progress record never carries.
