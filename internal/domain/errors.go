package domain

import "errors"

// ErrConflict reports that an insert hit a uniqueness constraint. Callers
// treat it as "the row already exists, fetch it" rather than a failure.
var ErrConflict = errors.New("conflict: row already exists")
