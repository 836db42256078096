package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Muga-ai/findahome/listing"
	"github.com/Muga-ai/findahome/media"
	"github.com/Muga-ai/findahome/models"
	"github.com/Muga-ai/findahome/store"
)

type fakeStore struct {
	listings map[primitive.ObjectID]*models.Listing
	created  []*models.Listing
	updates  []models.ListingUpdate
	queryOut []models.Listing
}

func newFakeStore() *fakeStore {
	return &fakeStore{listings: make(map[primitive.ObjectID]*models.Listing)}
}

func (f *fakeStore) Create(ctx context.Context, l *models.Listing) (primitive.ObjectID, error) {
	l.ID = primitive.NewObjectID()
	f.created = append(f.created, l)
	f.listings[l.ID] = l
	return l.ID, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *l
	return &copied, nil
}

func (f *fakeStore) Update(ctx context.Context, id, ownerID primitive.ObjectID, u models.ListingUpdate) error {
	f.updates = append(f.updates, u)
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	delete(f.listings, id)
	return nil
}

func (f *fakeStore) Query(ctx context.Context, filter store.Filter) ([]models.Listing, error) {
	return f.queryOut, nil
}

type fakeUploader struct {
	calls []string
}

func (u *fakeUploader) Upload(ctx context.Context, f media.File) (string, error) {
	u.calls = append(u.calls, f.Name())
	return "https://cdn.test/" + f.Name(), nil
}

type formField struct {
	name, value string
}

type formImage struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, fields []formField, images []formImage) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, img := range images {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, img.name))
		h.Set("Content-Type", "image/jpeg")
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(img.data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, w.FormDataContentType()
}

func validFields() []formField {
	return []formField{
		{"title", "A"},
		{"location", "B"},
		{"price", "100"},
		{"beds", "2"},
		{"baths", "1"},
		{"size", "50"},
	}
}

func TestCreateListingReturnsCreated(t *testing.T) {
	st := newFakeStore()
	up := &fakeUploader{}
	lc := NewListingController(listing.NewService(st, up))

	body, contentType := multipartBody(t, validFields(), []formImage{{name: "house.jpg", data: []byte("jpeg")}})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/listings", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", primitive.NewObjectID())

	if err := lc.CreateListing(c); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body)
	}

	var res map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res["id"] == "" {
		t.Fatal("response missing listing id")
	}
	if len(up.calls) != 1 || up.calls[0] != "house.jpg" {
		t.Fatalf("upload calls = %v, want [house.jpg]", up.calls)
	}
	if len(st.created) != 1 {
		t.Fatalf("created = %d listings, want 1", len(st.created))
	}
}

func TestCreateListingMissingNumericFieldIsBadRequest(t *testing.T) {
	st := newFakeStore()
	up := &fakeUploader{}
	lc := NewListingController(listing.NewService(st, up))

	fields := []formField{
		{"title", "A"},
		{"location", "B"},
		{"price", "100"},
		{"baths", "1"},
		{"size", "50"},
	}
	body, contentType := multipartBody(t, fields, []formImage{{name: "house.jpg"}})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/listings", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", primitive.NewObjectID())

	if err := lc.CreateListing(c); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if len(up.calls) != 0 {
		t.Fatalf("upload calls = %v, want none", up.calls)
	}
	if len(st.created) != 0 {
		t.Fatalf("created = %d listings, want 0", len(st.created))
	}
}

func TestCreateListingRejectsOversizedBatch(t *testing.T) {
	lc := NewListingController(listing.NewService(newFakeStore(), &fakeUploader{}))

	images := make([]formImage, 7)
	for i := range images {
		images[i] = formImage{name: fmt.Sprintf("%d.jpg", i)}
	}
	body, contentType := multipartBody(t, validFields(), images)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/listings", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", primitive.NewObjectID())

	if err := lc.CreateListing(c); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUpdateListingForbiddenForNonOwner(t *testing.T) {
	st := newFakeStore()
	lc := NewListingController(listing.NewService(st, &fakeUploader{}))

	id := primitive.NewObjectID()
	st.listings[id] = &models.Listing{ID: id, CreatedBy: primitive.NewObjectID(), Images: []string{"a"}}

	body, contentType := multipartBody(t, validFields(), nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/listings/"+id.Hex(), body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.Hex())
	c.Set("user_id", primitive.NewObjectID())

	if err := lc.UpdateListing(c); err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if len(st.updates) != 0 {
		t.Fatalf("updates = %d, want 0", len(st.updates))
	}
}

func TestUpdateListingKeepsAndAppendsImages(t *testing.T) {
	st := newFakeStore()
	up := &fakeUploader{}
	lc := NewListingController(listing.NewService(st, up))

	owner := primitive.NewObjectID()
	id := primitive.NewObjectID()
	st.listings[id] = &models.Listing{
		ID:        id,
		CreatedBy: owner,
		Status:    models.StatusActive,
		Images:    []string{"a", "b"},
	}

	fields := append(validFields(), formField{"keepImages", "b"})
	body, contentType := multipartBody(t, fields, []formImage{{name: "c.jpg"}})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/listings/"+id.Hex(), body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.Hex())
	c.Set("user_id", owner)

	if err := lc.UpdateListing(c); err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body)
	}

	want := []string{"b", "https://cdn.test/c.jpg"}
	got := st.updates[0].Images
	if len(got) != len(want) {
		t.Fatalf("images = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("images[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestListListingsReturnsArray(t *testing.T) {
	st := newFakeStore()
	st.queryOut = []models.Listing{{Title: "Sunny Villa", Location: "Nairobi"}}
	lc := NewListingController(listing.NewService(st, &fakeUploader{}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := lc.ListListings(c); err != nil {
		t.Fatalf("ListListings: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var listings []models.Listing
	if err := json.Unmarshal(rec.Body.Bytes(), &listings); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(listings) != 1 || listings[0].Title != "Sunny Villa" {
		t.Fatalf("listings = %v, want the seeded listing", listings)
	}
}
