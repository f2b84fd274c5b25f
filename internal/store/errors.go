package store

import "errors"

// ErrNotFound is returned by lookups that match no row. It is a normal
// "absent" result, not a failure: the importer uses it as its create trigger.
var ErrNotFound = errors.New("not found")
