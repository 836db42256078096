package handlers

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Muga-ai/findahome/imageset"
	"github.com/Muga-ai/findahome/listing"
	"github.com/Muga-ai/findahome/media"
	"github.com/Muga-ai/findahome/models"
	"github.com/Muga-ai/findahome/utils"
)

const browseCacheTTL = 60 * time.Second

type ListingController struct {
	svc *listing.Service
}

func NewListingController(svc *listing.Service) *ListingController {
	return &ListingController{svc: svc}
}

// formFile adapts a multipart file header to the image set's candidate
// interface.
type formFile struct {
	header *multipart.FileHeader
}

func (f formFile) Name() string        { return f.header.Filename }
func (f formFile) ContentType() string { return f.header.Header.Get("Content-Type") }
func (f formFile) Size() int64         { return f.header.Size }

func (f formFile) Open() (io.ReadCloser, error) { return f.header.Open() }

func formToListingForm(c echo.Context) listing.Form {
	return listing.Form{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Location:    c.FormValue("location"),
		Price:       utils.ParseOptionalNumber(c.FormValue("price")),
		Beds:        utils.ParseOptionalNumber(c.FormValue("beds")),
		Baths:       utils.ParseOptionalNumber(c.FormValue("baths")),
		Size:        utils.ParseOptionalNumber(c.FormValue("size")),
		VirtualTour: c.FormValue("virtualTour"),
		IsFeatured:  c.FormValue("isFeatured") == "true",
		Status:      models.ListingStatus(c.FormValue("status")),
	}
}

// ListListings serves the public browse view: all listings newest-first,
// optionally filtered by free-text query or the featured flag. Results are
// cached briefly; the cache key is namespaced by a version bumped on every
// mutation.
func (lc *ListingController) ListListings(c echo.Context) error {
	ctx := c.Request().Context()

	params := map[string]string{
		"q":        c.QueryParam("q"),
		"featured": c.QueryParam("featured"),
		"limit":    c.QueryParam("limit"),
	}

	var cacheKey string
	if utils.RedisClient != nil {
		cacheKey = utils.ListingCacheKey(ctx, params)
		var cached []models.Listing
		if hit, err := utils.GetCached(ctx, cacheKey, &cached); err == nil && hit {
			return c.JSON(http.StatusOK, cached)
		}
	}

	var (
		listings []models.Listing
		err      error
	)
	if params["featured"] == "true" {
		var limit int64
		if n, convErr := strconv.ParseInt(params["limit"], 10, 64); convErr == nil && n > 0 {
			limit = n
		}
		listings, err = lc.svc.Featured(ctx, limit)
	} else {
		listings, err = lc.svc.Browse(ctx, params["q"])
	}
	if err != nil {
		log.Printf("listing browse: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch listings"})
	}
	if listings == nil {
		listings = []models.Listing{}
	}

	if utils.RedisClient != nil {
		if err := utils.SetCached(ctx, cacheKey, listings, browseCacheTTL); err != nil {
			log.Printf("listing cache set: %v", err)
		}
	}
	return c.JSON(http.StatusOK, listings)
}

func (lc *ListingController) GetListing(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid listing ID"})
	}

	l, err := lc.svc.Get(c.Request().Context(), id)
	if err != nil {
		return listingErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

// MyListings serves the authenticated dashboard: the caller's own listings,
// newest-first.
func (lc *ListingController) MyListings(c echo.Context) error {
	userID := c.Get("user_id").(primitive.ObjectID)

	listings, err := lc.svc.Dashboard(c.Request().Context(), userID)
	if err != nil {
		return listingErrorResponse(c, err)
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	return c.JSON(http.StatusOK, listings)
}

// CreateListing handles the create flow: multipart form fields plus up to six
// image files under the "images" key. Images are validated as a batch,
// uploaded in order, and the listing is only persisted after every upload
// succeeds.
func (lc *ListingController) CreateListing(c echo.Context) error {
	userID := c.Get("user_id").(primitive.ObjectID)

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid multipart form"})
	}

	set := imageset.NewSet(nil)
	defer set.Close()

	files := make([]imageset.File, 0, len(form.File["images"]))
	for _, h := range form.File["images"] {
		files = append(files, formFile{header: h})
	}
	if len(files) > 0 {
		if err := set.Add(files...); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}

	composer := lc.svc.NewComposer(userID)
	id, err := composer.Submit(c.Request().Context(), formToListingForm(c), set)
	if err != nil {
		return listingErrorResponse(c, err)
	}

	if utils.RedisClient != nil {
		utils.BumpListingVersion(c.Request().Context())
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id.Hex()})
}

// UpdateListing handles the edit flow. The client sends the existing image
// URLs it kept under repeated "keepImages" fields and any new files under
// "images"; existing images it omitted are removed, and new uploads are
// appended after the retained ones.
func (lc *ListingController) UpdateListing(c echo.Context) error {
	userID := c.Get("user_id").(primitive.ObjectID)

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid listing ID"})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid multipart form"})
	}

	editor := lc.svc.NewEditor(userID)
	loaded, err := editor.Load(c.Request().Context(), id)
	if err != nil {
		return listingErrorResponse(c, err)
	}

	kept := make(map[string]bool, len(form.Value["keepImages"]))
	for _, url := range form.Value["keepImages"] {
		kept[url] = true
	}

	set := imageset.NewSet(loaded.Images)
	defer set.Close()
	for i := len(loaded.Images) - 1; i >= 0; i-- {
		if !kept[loaded.Images[i]] {
			set.RemoveExisting(i)
		}
	}

	files := make([]imageset.File, 0, len(form.File["images"]))
	for _, h := range form.File["images"] {
		files = append(files, formFile{header: h})
	}
	if len(files) > 0 {
		if err := set.Add(files...); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}

	if err := editor.Save(c.Request().Context(), formToListingForm(c), set); err != nil {
		return listingErrorResponse(c, err)
	}

	if utils.RedisClient != nil {
		utils.BumpListingVersion(c.Request().Context())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Listing updated successfully"})
}

func (lc *ListingController) DeleteListing(c echo.Context) error {
	userID := c.Get("user_id").(primitive.ObjectID)

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid listing ID"})
	}

	if err := lc.svc.Delete(c.Request().Context(), userID, id); err != nil {
		return listingErrorResponse(c, err)
	}

	if utils.RedisClient != nil {
		utils.BumpListingVersion(c.Request().Context())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Listing deleted successfully"})
}

// listingErrorResponse maps the submission error taxonomy to one
// user-visible message per class, logging the diagnostic detail.
func listingErrorResponse(c echo.Context, err error) error {
	var vErr *listing.ValidationError
	var upErr *media.UploadFailedError

	switch {
	case errors.As(err, &vErr):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": vErr.Error()})
	case errors.Is(err, listing.ErrAuth):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Please login first"})
	case errors.Is(err, listing.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "You are not authorized to modify this listing"})
	case errors.Is(err, listing.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Listing not found"})
	case errors.Is(err, listing.ErrSubmissionInFlight):
		return c.JSON(http.StatusConflict, map[string]string{"error": "A submission is already in progress"})
	case errors.As(err, &upErr):
		log.Printf("listing upload: %v", upErr)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Image upload failed. Try again."})
	default:
		log.Printf("listing: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Something went wrong. Try again."})
	}
}
