// Package imgdoc2err defines the typed error kinds the storage engine
// surfaces to its callers (see spec §7). Each kind is a distinct exported
// type so callers can tell them apart with errors.As instead of string
// matching, which is the one place this module departs from the teacher's
// plain fmt.Errorf("...: %w", err) wrapping — the spec requires callers to
// distinguish error kinds, not just read a message.
package imgdoc2err

import "fmt"

// InvalidArgumentError reports a malformed caller input (bad metadata
// type/value combination, empty or slash-containing metadata node name,
// dimension unknown to the document in a min/max query, …). An invalid
// dimension character is reported by model.ParseDimension and
// TileCoordinate.Set as a plain error, not as this type, and an invalid
// tile-info-query comparison or logical operator makes the query builder
// panic.
type InvalidArgumentError struct {
	Msg string
}

func (e *InvalidArgumentError) Error() string { return "invalid argument: " + e.Msg }

func NewInvalidArgument(format string, args ...any) error {
	return &InvalidArgumentError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidPathError reports a malformed or unresolved metadata path.
type InvalidPathError struct {
	Msg string
}

func (e *InvalidPathError) Error() string { return "invalid path: " + e.Msg }

func NewInvalidPath(format string, args ...any) error {
	return &InvalidPathError{Msg: fmt.Sprintf(format, args...)}
}

// NonExistingTileError reports a lookup by primary key that found no tile.
type NonExistingTileError struct {
	Pk int64
}

func (e *NonExistingTileError) Error() string {
	return fmt.Sprintf("tile with pk=%d does not exist", e.Pk)
}

// NonExistingItemError reports a metadata lookup by primary key that found
// no item.
type NonExistingItemError struct {
	Pk int64
}

func (e *NonExistingItemError) Error() string {
	return fmt.Sprintf("metadata item with pk=%d does not exist", e.Pk)
}

// InvalidOperationError reports an operation that is well-formed but not
// supported by the current document's schema (e.g. blob-in-database storage
// requested on a document without a blob table).
type InvalidOperationError struct {
	Msg string
}

func (e *InvalidOperationError) Error() string { return "invalid operation: " + e.Msg }

func NewInvalidOperation(format string, args ...any) error {
	return &InvalidOperationError{Msg: fmt.Sprintf(format, args...)}
}

// DiscoveryError reports a file that could not be opened as an imgdoc2
// document: a malformed or absent DocType, a missing well-known table, or a
// missing expected column.
type DiscoveryError struct {
	Msg string
}

func (e *DiscoveryError) Error() string { return "discovery failed: " + e.Msg }

func NewDiscovery(format string, args ...any) error {
	return &DiscoveryError{Msg: fmt.Sprintf(format, args...)}
}

// DatabaseError wraps an underlying database/sql or driver error.
type DatabaseError struct {
	Code string // driver-reported code, if available
	Err  error
}

func (e *DatabaseError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("database error (%s): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("database error: %v", e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

func NewDatabase(err error) error {
	if err == nil {
		return nil
	}
	return &DatabaseError{Err: err}
}

// InternalError reports an invariant breach within the engine itself, e.g.
// a tile-data row whose blob join produced more than one result row.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string { return "internal error: " + e.Msg }

func NewInternal(format string, args ...any) error {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}
