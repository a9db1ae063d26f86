package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database/books"
)

// Multipart field names of the book forms.
const (
	FieldCoverImage = "cover_image"
	FieldPDFFile    = "pdf_file"
)

const (
	formOverheadBytes = 1 << 20
	maxMemoryBytes    = 8 << 20
)

// BookForm is the body of POST /api/books.
type BookForm struct {
	Title       string `form:"title" json:"title"`
	Author      string `form:"author" json:"author"`
	Description string `form:"description" json:"description"`
	PublishDate string `form:"publish_date" json:"publish_date"`
}

// BookPatchForm is the body of PATCH /api/books/:id. Absent fields keep
// their stored value.
type BookPatchForm struct {
	Title       *string `form:"title" json:"title"`
	Author      *string `form:"author" json:"author"`
	Description *string `form:"description" json:"description"`
	PublishDate *string `form:"publish_date" json:"publish_date"`
}

// uploadReader bounds and reads the multipart book forms.
type uploadReader struct {
	limits config.Upload
}

// bodyLimit is the largest request body a book form may carry.
func (u uploadReader) bodyLimit() int64 {
	return u.limits.MaxCoverBytes + u.limits.MaxPDFBytes + formOverheadBytes
}

// prepare caps the request body and parses multipart forms up front so that
// an oversized body surfaces as one error.
func (u uploadReader) prepare(c *gin.Context) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, u.bodyLimit())

	if strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm) {
		if err := c.Request.ParseMultipartForm(maxMemoryBytes); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				return err
			}
			return apperr.Validation("request body is not a valid multipart form")
		}
	}
	return nil
}

// bindingError keeps body-size failures distinguishable from bad input.
func bindingError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return err
	}
	return apperr.FromBinding(err)
}

// readFile returns the bytes of an uploaded file. A missing field yields nil;
// an empty file yields an empty non-nil slice so validation can reject it.
// At most limit+1 bytes are read so oversized files still fail validation.
func (u uploadReader) readFile(c *gin.Context, field string, limit int64) ([]byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperr.Validation(fmt.Sprintf("%s could not be read", strings.ReplaceAll(field, "_", " ")))
	}

	f, err := header.Open()
	if err != nil {
		return nil, apperr.Storage("open upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, apperr.Storage("read upload", err)
	}
	return data, nil
}

// readFiles reads the cover and PDF fields of a book form.
func (u uploadReader) readFiles(c *gin.Context) (cover, pdf []byte, err error) {
	if cover, err = u.readFile(c, FieldCoverImage, u.limits.MaxCoverBytes); err != nil {
		return nil, nil, err
	}
	if pdf, err = u.readFile(c, FieldPDFFile, u.limits.MaxPDFBytes); err != nil {
		return nil, nil, err
	}
	return cover, pdf, nil
}

// bindBookInput reads a complete book form.
func (u uploadReader) bindBookInput(c *gin.Context) (books.BookInput, error) {
	if err := u.prepare(c); err != nil {
		return books.BookInput{}, err
	}

	var form BookForm
	if err := c.ShouldBind(&form); err != nil {
		return books.BookInput{}, bindingError(err)
	}

	cover, pdf, err := u.readFiles(c)
	if err != nil {
		return books.BookInput{}, err
	}

	return books.BookInput{
		Title:       form.Title,
		Author:      form.Author,
		Description: form.Description,
		PublishDate: form.PublishDate,
		CoverImage:  cover,
		PDF:         pdf,
	}, nil
}

// bindBookPatch reads a partial book form.
func (u uploadReader) bindBookPatch(c *gin.Context) (books.BookPatch, error) {
	if err := u.prepare(c); err != nil {
		return books.BookPatch{}, err
	}

	var form BookPatchForm
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&form); err != nil {
			return books.BookPatch{}, bindingError(err)
		}
	}

	cover, pdf, err := u.readFiles(c)
	if err != nil {
		return books.BookPatch{}, err
	}

	return books.BookPatch{
		Title:       form.Title,
		Author:      form.Author,
		Description: form.Description,
		PublishDate: form.PublishDate,
		CoverImage:  cover,
		PDF:         pdf,
	}, nil
}
