// Package generrors defines the sentinel and typed errors the generator's
// pipeline stages return, mirroring flareon's MigrationSorterError enum and
// the panics cot-cli reserves for invariant violations — except none of
// these panic here; every one is a plain error satisfying errors.Is/As.
package generrors

import (
	"errors"
	"fmt"
)

// ErrCycleDetected is returned when a migration or operation dependency
// graph contains a cycle that could not be (or was not expected to be)
// broken.
var ErrCycleDetected = errors.New("generrors: cycle detected")

// ErrNotImplemented is returned for schema transitions this generator does
// not support: altering a field's type, removing a field, or removing a
// model. The original recognized these transitions and panicked with
// todo!(); this implementation treats them as an ordinary, typed error
// instead, since none of them are invariant violations.
var ErrNotImplemented = errors.New("generrors: unsupported schema transition")

// ErrCompositePrimaryKey is returned when a model declares more than one
// primary-key field.
var ErrCompositePrimaryKey = errors.New("generrors: composite primary keys are not supported")

// ErrNoPrimaryKey is returned when a model declares zero primary-key
// fields and has no field named "id" to default to.
var ErrNoPrimaryKey = errors.New("generrors: model has no primary key field")

// ErrMalformedMigrationName is returned when a migration file's name does
// not conform to the m_NNNN_description numbering scheme.
var ErrMalformedMigrationName = errors.New("generrors: malformed migration name")

// DuplicateMigrationError reports two migrations sharing an
// (app name, migration name) pair.
type DuplicateMigrationError struct {
	AppName string
	Name    string
}

func (e *DuplicateMigrationError) Error() string {
	return fmt.Sprintf("generrors: duplicate migration %s.%s", e.AppName, e.Name)
}

// DuplicateModelError reports two CreateModel operations, across the
// migration corpus, for the same (app name, table name) pair.
type DuplicateModelError struct {
	AppName   string
	TableName string
}

func (e *DuplicateModelError) Error() string {
	return fmt.Sprintf("generrors: duplicate model %s.%s", e.AppName, e.TableName)
}

// InvalidDependencyError reports a dependency that names a migration or
// model the index has no record of.
type InvalidDependencyError struct {
	AppName string
	Name    string
}

func (e *InvalidDependencyError) Error() string {
	return fmt.Sprintf("generrors: invalid dependency on %s.%s", e.AppName, e.Name)
}
