package repository

import "errors"

// ErrNotFound reports that no document matched the requested key. Callers
// treat it as an expected outcome, distinct from a storage outage.
var ErrNotFound = errors.New("document not found")
