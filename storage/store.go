// Package storage defines the keyed record store that backs syncauth's
// in-process caches.
//
// Models are represented as structs and should have a `PK() string` method.
// Records are grouped by model name, so different models never collide even
// if their primary keys do.
package storage

import (
	"github.com/dpup/syncauth/errors"
	"google.golang.org/grpc/codes"
)

var (
	// Returned when a record does not exist.
	ErrNotFound = errors.NewC("record not found", codes.NotFound)

	// Returned when a store can not marshal/unmarshal a model.
	ErrInvalidModel = errors.NewC("invalid model", codes.InvalidArgument)

	// Returned when a store is passed an uninitialized pointer.
	ErrNilModel = errors.NewC("uninitialized pointer passed as model", codes.InvalidArgument)
)

// Store offers the minimal read/write interface needed by syncauth caches.
// Implementations must be safe for concurrent use: a Read racing an Upsert of
// the same key observes either the old or the new record, never a partial one.
type Store interface {
	// Read a record with the given id into model.
	Read(id string, model Model) error

	// Update or insert multiple entities.
	Upsert(models ...Model) error

	// Exists returns true if a record with the given id exists.
	Exists(id string, model Model) (bool, error)
}
