// Package upload reads image files from multipart requests.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/misionesarrienda/api/internal/media"
	"github.com/misionesarrienda/api/internal/response"
)

var (
	// ErrMissingFile is returned when the form has no file under the field.
	ErrMissingFile = errors.New("file is required")
	// ErrTooLarge is returned when the body exceeds media.MaxImageSize.
	ErrTooLarge = errors.New("file too large")
	// ErrUnsupportedType is returned for content other than JPEG, PNG or WebP.
	ErrUnsupportedType = errors.New("unsupported image type")
)

// formOverhead leaves room for multipart boundaries and other fields.
const formOverhead = 1 << 20

// Image is an uploaded image buffered in memory.
type Image struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Reader returns a fresh reader over the image bytes.
func (img *Image) Reader() io.Reader {
	return bytes.NewReader(img.Data)
}

// Size returns the image length in bytes.
func (img *Image) Size() int64 {
	return int64(len(img.Data))
}

// Extension returns the stored file extension for the detected type.
func (img *Image) Extension() string {
	return media.ExtensionFor(img.ContentType)
}

// ReadImage reads the file in form field and checks its size and sniffed
// content type.
func ReadImage(w http.ResponseWriter, r *http.Request, field string) (*Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxImageSize+formOverhead)
	if err := r.ParseMultipartForm(media.MaxImageSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, ErrTooLarge
		}
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, ErrMissingFile
		}
		return nil, fmt.Errorf("read form file: %w", err)
	}
	defer file.Close()

	if header.Size > media.MaxImageSize {
		return nil, ErrTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, media.MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > media.MaxImageSize {
		return nil, ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	if !media.IsAllowedImageType(contentType) {
		return nil, ErrUnsupportedType
	}

	return &Image{Data: data, ContentType: contentType, Filename: header.Filename}, nil
}

// WriteError writes the client error matching a ReadImage failure.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTooLarge):
		response.RequestEntityTooLarge(w, "file exceeds 10 MB")
	case errors.Is(err, ErrUnsupportedType):
		response.BadRequest(w, "only JPEG, PNG and WebP images are accepted")
	case errors.Is(err, ErrMissingFile):
		response.BadRequest(w, "file is required")
	default:
		response.BadRequest(w, "invalid multipart form")
	}
}
