// Package imageset models the ordered set of images attached to a listing
// while it is being composed or edited. Existing images are URLs already
// persisted on the listing; pending images are local files that have not been
// uploaded yet. The set enforces the count, type and size limits up front so
// a submission never starts with an invalid batch.
package imageset

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// MaxImages matches the persisted-listing invariant of at most six images.
	MaxImages = 6

	// MaxFileSize is the per-file upload limit (5 MiB).
	MaxFileSize = 5 << 20
)

var (
	ErrTooManyImages = fmt.Errorf("maximum %d images allowed", MaxImages)
	ErrNotAnImage    = errors.New("only image files allowed")
	ErrFileTooLarge  = errors.New("each image must be under 5MB")
)

// File is a candidate image selected for upload. multipart.FileHeader values
// are adapted to this interface at the HTTP boundary; tests use in-memory
// implementations.
type File interface {
	Name() string
	ContentType() string
	Size() int64
	Open() (io.ReadCloser, error)
}

type pendingItem struct {
	file File
	// preview is the handle opened when the file was accepted. It backs the
	// client-facing preview and must be closed when the item is removed or
	// the set is torn down.
	preview io.ReadCloser
}

// Set is the existing/pending partition for one composition session. It is
// not safe for concurrent use; a session has a single flow of control.
type Set struct {
	existing []string
	pending  []pendingItem
}

// NewSet seeds a set with the URLs already persisted on the listing being
// edited. Pass nil for a create-flow session.
func NewSet(existing []string) *Set {
	s := &Set{}
	if len(existing) > 0 {
		s.existing = append(s.existing, existing...)
	}
	return s
}

// Add validates and appends a batch of candidates. The batch is all-or-nothing:
// if any candidate fails a check, no candidate is added and no preview is
// opened. Candidates are appended in input order.
func (s *Set) Add(files ...File) error {
	if s.Count()+len(files) > MaxImages {
		return ErrTooManyImages
	}
	for _, f := range files {
		if !strings.HasPrefix(f.ContentType(), "image/") {
			return fmt.Errorf("%s: %w", f.Name(), ErrNotAnImage)
		}
		if f.Size() > MaxFileSize {
			return fmt.Errorf("%s: %w", f.Name(), ErrFileTooLarge)
		}
	}

	opened := make([]pendingItem, 0, len(files))
	for _, f := range files {
		preview, err := f.Open()
		if err != nil {
			for _, item := range opened {
				item.preview.Close()
			}
			return fmt.Errorf("open %s: %w", f.Name(), err)
		}
		opened = append(opened, pendingItem{file: f, preview: preview})
	}
	s.pending = append(s.pending, opened...)
	return nil
}

// RemoveExisting drops the existing image at index i, preserving the relative
// order of the remainder. An out-of-range index is a programming error and
// panics.
func (s *Set) RemoveExisting(i int) {
	s.existing = append(s.existing[:i], s.existing[i+1:]...)
}

// RemovePending drops the pending file at index i and releases its preview
// handle. An out-of-range index panics.
func (s *Set) RemovePending(i int) {
	s.pending[i].preview.Close()
	s.pending = append(s.pending[:i], s.pending[i+1:]...)
}

func (s *Set) Count() int {
	return len(s.existing) + len(s.pending)
}

// Snapshot returns the retained existing URLs and the pending files, each in
// current order, for submission. The set remains usable afterwards.
func (s *Set) Snapshot() ([]string, []File) {
	existing := make([]string, len(s.existing))
	copy(existing, s.existing)

	pending := make([]File, len(s.pending))
	for i, item := range s.pending {
		pending[i] = item.file
	}
	return existing, pending
}

// Close releases every remaining preview handle. Call it when the session
// ends, whether or not the submission succeeded.
func (s *Set) Close() {
	for _, item := range s.pending {
		item.preview.Close()
	}
	s.pending = nil
}
