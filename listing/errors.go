package listing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Muga-ai/findahome/store"
)

var (
	// ErrAuth blocks any submission attempted without an authenticated user,
	// before any network call is made.
	ErrAuth = errors.New("authentication required")

	// ErrForbidden terminates an edit or delete on a listing the current user
	// does not own.
	ErrForbidden = errors.New("listing not owned by current user")

	// ErrNotFound mirrors the store sentinel so callers only depend on this
	// package.
	ErrNotFound = store.ErrNotFound

	// ErrSubmissionInFlight rejects a second Submit or Save while one is
	// already running for the same session, so a double-fired form cannot
	// create two listings.
	ErrSubmissionInFlight = errors.New("submission already in progress")
)

// ValidationError names the missing or invalid form fields. It is always
// recoverable by user edit and never carries nested cause detail.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid or missing fields: " + strings.Join(e.Fields, ", ")
}

// PersistenceError wraps a record store failure during a submission. Uploaded
// images are not cleaned up on this path; see the orphan note logged at the
// submission boundary.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s listing: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
