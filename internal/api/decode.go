package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/YogindraChaudhari/plantationDrive/internal/core"
	"github.com/YogindraChaudhari/plantationDrive/internal/models"
)

// multipart field names for plant uploads.
const (
	formFieldPlant = "plant"
	formFieldImage = "image"
)

// ImageChecker rejects unusable photos before they reach the plant service.
type ImageChecker interface {
	Check(data []byte) (string, error)
}

// decodeStrict decodes a single JSON value into dst, rejecting unknown fields, then runs
// the binding validator over it.
func decodeStrict(r io.Reader, dst interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", core.ErrInvalidInput)
		}
		return fmt.Errorf("%w: %w", core.ErrInvalidInput, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON body", core.ErrInvalidInput)
	}
	return binding.Validator.ValidateStruct(dst)
}

func isMultipart(c *gin.Context) bool {
	mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// plantUploadReader reads plant requests, either a JSON body or a multipart form with a
// JSON "plant" part and an optional "image" file.
type plantUploadReader struct {
	maxUploadBytes int64
	images         ImageChecker
}

// read decodes the plant payload into dst and returns the uploaded photo, if any. When
// requirePayload is false a multipart form may carry only an image.
func (u plantUploadReader) read(c *gin.Context, dst interface{}, requirePayload bool) (*models.ImageUpload, error) {
	if u.maxUploadBytes > 0 {
		// Leave room for the JSON part and multipart framing.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, u.maxUploadBytes+1<<20)
	}

	if !isMultipart(c) {
		return nil, decodeStrict(c.Request.Body, dst)
	}

	if _, err := c.MultipartForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: upload exceeds %d bytes", core.ErrInvalidImage, u.maxUploadBytes)
		}
		return nil, fmt.Errorf("%w: malformed multipart form: %w", core.ErrInvalidInput, err)
	}

	payload := c.PostForm(formFieldPlant)
	switch {
	case payload != "":
		if err := decodeStrict(bytes.NewReader([]byte(payload)), dst); err != nil {
			return nil, err
		}
	case requirePayload:
		return nil, fmt.Errorf("%w: missing %q form field", core.ErrInvalidInput, formFieldPlant)
	}

	header, err := c.FormFile(formFieldImage)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidImage, err)
	}
	if u.maxUploadBytes > 0 && header.Size > u.maxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d byte limit", core.ErrInvalidImage, header.Size, u.maxUploadBytes)
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidImage, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidImage, err)
	}

	contentType := header.Header.Get("Content-Type")
	if u.images != nil {
		format, err := u.images.Check(data)
		if err != nil {
			return nil, err
		}
		contentType = "image/" + format
	}
	return &models.ImageUpload{Data: data, ContentType: contentType}, nil
}
