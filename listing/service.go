// Package listing orchestrates the listing lifecycle: composing a new listing
// (validate, upload images in order, persist), editing an existing one
// (ownership-gated load, delta upload, merged update), browsing, and deleting.
// The create and edit flows share one submission path so their validation and
// upload semantics cannot drift apart.
package listing

import (
	"context"
	"log"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Muga-ai/findahome/imageset"
	"github.com/Muga-ai/findahome/media"
	"github.com/Muga-ai/findahome/models"
	"github.com/Muga-ai/findahome/store"
)

type Service struct {
	store    store.ListingStore
	uploader media.Uploader
}

func NewService(st store.ListingStore, up media.Uploader) *Service {
	return &Service{store: st, uploader: up}
}

// submit is the shared image-set-backed submission path. It validates the
// form and the image invariant, uploads the pending files strictly in order,
// and hands existing-then-new image URLs to persist. The first upload failure
// aborts the whole submission; persist is never called with a partial list.
// On success the set's preview handles are released.
func (s *Service) submit(ctx context.Context, form Form, set *imageset.Set, persist func(ctx context.Context, images []string) error) error {
	fields := form.invalidFields()
	existing, pending := set.Snapshot()
	// The set enforces its limits on Add, but the persisted invariant
	// (1..MaxImages) is re-checked here since a mid-composition set may be
	// empty.
	if n := len(existing) + len(pending); n == 0 || n > imageset.MaxImages {
		fields = append(fields, "images")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	uploaded, err := s.uploadAll(ctx, pending)
	if err != nil {
		return err
	}

	images := make([]string, 0, len(existing)+len(uploaded))
	images = append(images, existing...)
	images = append(images, uploaded...)

	if err := persist(ctx, images); err != nil {
		if len(uploaded) > 0 {
			// Known limitation: no compensating delete on the media host.
			log.Printf("listing: persist failed, %d uploaded images orphaned: %v", len(uploaded), uploaded)
		}
		return err
	}

	set.Close()
	return nil
}

// uploadAll sends the files one at a time, in caller order. Image order is
// semantically meaningful (index 0 is the cover), and the store has no
// separate ordering field, so the URL slice must match the input order.
func (s *Service) uploadAll(ctx context.Context, files []imageset.File) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.uploader.Upload(ctx, f)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// Composer is one create-flow session for one user.
type Composer struct {
	svc      *Service
	userID   primitive.ObjectID
	inFlight atomic.Bool
}

func (s *Service) NewComposer(userID primitive.ObjectID) *Composer {
	return &Composer{svc: s, userID: userID}
}

// Submit validates the form and image set, uploads every pending file and
// creates the listing. Status and the featured flag always start at their
// defaults on create; the owner and creation time are assigned here and never
// change afterwards. Returns the new listing's id.
func (c *Composer) Submit(ctx context.Context, form Form, set *imageset.Set) (primitive.ObjectID, error) {
	if c.userID.IsZero() {
		return primitive.NilObjectID, ErrAuth
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return primitive.NilObjectID, ErrSubmissionInFlight
	}
	defer c.inFlight.Store(false)

	var id primitive.ObjectID
	err := c.svc.submit(ctx, form, set, func(ctx context.Context, images []string) error {
		l := &models.Listing{
			Title:       form.Title,
			Description: form.Description,
			Price:       *form.Price,
			Location:    form.Location,
			Beds:        *form.Beds,
			Baths:       *form.Baths,
			Size:        *form.Size,
			Images:      images,
			VirtualTour: form.virtualTourValue(),
			IsFeatured:  false,
			Status:      models.StatusActive,
			CreatedBy:   c.userID,
		}
		created, err := c.svc.store.Create(ctx, l)
		if err != nil {
			return &PersistenceError{Op: "create", Err: err}
		}
		id = created
		return nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return id, nil
}

// Editor is one edit-flow session. Load must succeed before Save; ownership
// is checked at load time against the record's createdBy.
type Editor struct {
	svc      *Service
	userID   primitive.ObjectID
	loaded   *models.Listing
	inFlight atomic.Bool
}

func (s *Service) NewEditor(userID primitive.ObjectID) *Editor {
	return &Editor{svc: s, userID: userID}
}

// Load fetches the listing and confirms the current user owns it. On
// ErrNotFound or ErrForbidden the session is terminal: Save will refuse to
// run.
func (e *Editor) Load(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	if e.userID.IsZero() {
		return nil, ErrAuth
	}

	l, err := e.svc.store.GetByID(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	if l.CreatedBy != e.userID {
		return nil, ErrForbidden
	}

	e.loaded = l
	return l, nil
}

// Save uploads only the pending files and updates the listing with the
// retained existing images followed by the newly uploaded URLs, in that
// order. Immutable fields (id, createdBy, createdAt) are never part of the
// update.
func (e *Editor) Save(ctx context.Context, form Form, set *imageset.Set) error {
	if e.userID.IsZero() {
		return ErrAuth
	}
	if e.loaded == nil {
		return ErrNotFound
	}
	if !e.inFlight.CompareAndSwap(false, true) {
		return ErrSubmissionInFlight
	}
	defer e.inFlight.Store(false)

	return e.svc.submit(ctx, form, set, func(ctx context.Context, images []string) error {
		status := form.Status
		if status == "" {
			status = e.loaded.Status
		}
		u := models.ListingUpdate{
			Title:       form.Title,
			Description: form.Description,
			Price:       *form.Price,
			Location:    form.Location,
			Beds:        *form.Beds,
			Baths:       *form.Baths,
			Size:        *form.Size,
			Images:      images,
			VirtualTour: form.virtualTourValue(),
			IsFeatured:  form.IsFeatured,
			Status:      status,
		}
		if err := e.svc.store.Update(ctx, e.loaded.ID, e.userID, u); err != nil {
			if err == store.ErrNotFound {
				return ErrNotFound
			}
			return &PersistenceError{Op: "update", Err: err}
		}
		return nil
	})
}

// Delete removes a listing after confirming ownership. Deletion is immediate
// and irreversible from the application's perspective.
func (s *Service) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	if userID.IsZero() {
		return ErrAuth
	}

	l, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return ErrNotFound
		}
		return &PersistenceError{Op: "load", Err: err}
	}
	if l.CreatedBy != userID {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, id, userID); err != nil {
		if err == store.ErrNotFound {
			return ErrNotFound
		}
		return &PersistenceError{Op: "delete", Err: err}
	}
	return nil
}
