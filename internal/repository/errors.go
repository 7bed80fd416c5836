package repository

import "errors"

// ErrNotFound is returned when a key has no stored value.
//
// Services translate it into a default value or into `app_errors.ErrNotFound`,
// so nothing above this package depends on `sql.ErrNoRows`.
var ErrNotFound = errors.New("repository: not found")
