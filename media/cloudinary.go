// Package media uploads listing images to the external media host and hands
// back their public URLs. The host speaks the Cloudinary unsigned-upload
// protocol: multipart POST with the file bytes and a preset identifier,
// JSON response carrying the secure URL.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"time"

	"github.com/google/uuid"
)

// File is the slice of a candidate upload this package needs. imageset.File
// satisfies it.
type File interface {
	Name() string
	ContentType() string
	Open() (io.ReadCloser, error)
}

// Uploader sends one file to the media host and returns its public URL.
// Callers that need a specific URL order must call Upload sequentially: the
// record store has no ordering field, so image order is carried entirely by
// the order URLs are appended.
type Uploader interface {
	Upload(ctx context.Context, f File) (string, error)
}

// UploadFailedError identifies which file the host or transport rejected. A
// submission treats it as fatal: no partial image list is ever persisted.
type UploadFailedError struct {
	FileName string
	Err      error
}

func (e *UploadFailedError) Error() string {
	return fmt.Sprintf("upload failed for %s: %v", e.FileName, e.Err)
}

func (e *UploadFailedError) Unwrap() error { return e.Err }

type Config struct {
	CloudName string
	Preset    string
	// UploadURL overrides the endpoint derived from CloudName. Used by tests
	// and self-hosted compatible stores.
	UploadURL string
	Timeout   time.Duration
}

// NewConfigFromEnv reads CLOUDINARY_CLOUD_NAME, CLOUDINARY_UPLOAD_PRESET and
// the optional CLOUDINARY_UPLOAD_URL override.
func NewConfigFromEnv() (Config, error) {
	cfg := Config{
		CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		Preset:    os.Getenv("CLOUDINARY_UPLOAD_PRESET"),
		UploadURL: os.Getenv("CLOUDINARY_UPLOAD_URL"),
	}
	if cfg.UploadURL == "" && (cfg.CloudName == "" || cfg.Preset == "") {
		return Config{}, fmt.Errorf("media host not configured: set CLOUDINARY_CLOUD_NAME and CLOUDINARY_UPLOAD_PRESET")
	}
	return cfg, nil
}

type Cloudinary struct {
	endpoint string
	preset   string
	client   *http.Client
}

func NewCloudinary(cfg Config) *Cloudinary {
	endpoint := cfg.UploadURL
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", cfg.CloudName)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Cloudinary{
		endpoint: endpoint,
		preset:   cfg.Preset,
		client:   &http.Client{Timeout: timeout},
	}
}

type uploadResponse struct {
	SecureURL    string `json:"secure_url"`
	ResourceType string `json:"resource_type"`
}

func (c *Cloudinary) Upload(ctx context.Context, f File) (string, error) {
	src, err := f.Open()
	if err != nil {
		return "", &UploadFailedError{FileName: f.Name(), Err: err}
	}
	defer src.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := createFilePart(w, f)
	if err != nil {
		return "", &UploadFailedError{FileName: f.Name(), Err: err}
	}
	if _, err := io.Copy(part, src); err != nil {
		return "", &UploadFailedError{FileName: f.Name(), Err: err}
	}
	if err := w.WriteField("upload_preset", c.preset); err != nil {
		return "", &UploadFailedError{FileName: f.Name(), Err: err}
	}
	if err := w.WriteField("public_id", uuid.NewString()); err != nil {
		return "", &UploadFailedError{FileName: f.Name(), Err: err}
	}
	if err := w.Close(); err != nil {
		return "", &UploadFailedError{FileName: f.Name(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", &UploadFailedError{FileName: f.Name(), Err: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	res, err := c.client.Do(req)
	if err != nil {
		return "", &UploadFailedError{FileName: f.Name(), Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &UploadFailedError{
			FileName: f.Name(),
			Err:      fmt.Errorf("media host returned %s", res.Status),
		}
	}

	var parsed uploadResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", &UploadFailedError{FileName: f.Name(), Err: err}
	}
	if parsed.SecureURL == "" {
		return "", &UploadFailedError{
			FileName: f.Name(),
			Err:      fmt.Errorf("media host response missing secure_url"),
		}
	}
	return parsed.SecureURL, nil
}

func createFilePart(w *multipart.Writer, f File) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, f.Name()))
	h.Set("Content-Type", f.ContentType())
	return w.CreatePart(h)
}
