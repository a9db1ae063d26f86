package books

import (
	"log"
	"strings"
	"unicode/utf8"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/content"
	"github.com/mrlokans/bookshelf/internal/entities"
)

const (
	maxTitleLength  = 512
	maxAuthorLength = 256
)

// Limits bounds uploaded blobs.
type Limits struct {
	MaxCoverBytes int64
	MaxPDFBytes   int64
}

// BookInput carries every field of a new book. Nil blobs mean "no file".
type BookInput struct {
	Title       string
	Author      string
	Description string
	PublishDate string
	CoverImage  []byte
	PDF         []byte
}

// BookPatch is a partial update: nil pointers and nil blobs leave the stored
// value untouched.
type BookPatch struct {
	Title       *string
	Author      *string
	Description *string
	PublishDate *string
	CoverImage  []byte
	PDF         []byte
}

// IsEmpty reports whether the patch changes nothing.
func (p BookPatch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Description == nil &&
		p.PublishDate == nil && p.CoverImage == nil && p.PDF == nil
}

type coverUpload struct {
	data []byte
	mime string
}

type pdfUpload struct {
	data  []byte
	pages int
}

func validateText(ve *apperr.ValidationError, field, value string, maxLen int) string {
	value = strings.TrimSpace(value)
	if value == "" {
		ve.Add("%s is required", field)
		return ""
	}
	if maxLen > 0 && utf8.RuneCountInString(value) > maxLen {
		ve.Add("%s must not exceed %d characters", field, maxLen)
	}
	return value
}

func validateDate(ve *apperr.ValidationError, value string) entities.Date {
	value = strings.TrimSpace(value)
	if value == "" {
		ve.Add("publish date is required")
		return entities.Date{}
	}
	d, err := entities.ParseDate(value)
	if err != nil {
		ve.Add("publish date must be a valid date in YYYY-MM-DD format")
		return entities.Date{}
	}
	return d
}

func validateCover(ve *apperr.ValidationError, data []byte, limit int64) *coverUpload {
	if len(data) == 0 {
		ve.Add("cover image is empty")
		return nil
	}
	if limit > 0 && int64(len(data)) > limit {
		ve.Add("cover image must not exceed %d bytes", limit)
		return nil
	}
	kind := content.Classify(data)
	if !kind.IsImage() {
		ve.Add("cover image must be a JPEG, PNG or GIF file")
		return nil
	}
	return &coverUpload{data: data, mime: kind.MIME()}
}

func validatePDF(ve *apperr.ValidationError, data []byte, limit int64) *pdfUpload {
	if len(data) == 0 {
		ve.Add("pdf file is empty")
		return nil
	}
	if limit > 0 && int64(len(data)) > limit {
		ve.Add("pdf file must not exceed %d bytes", limit)
		return nil
	}
	if content.Classify(data) != content.KindPDF {
		ve.Add("pdf file must be a PDF document")
		return nil
	}
	pages, err := content.PDFPageCount(data)
	if err != nil {
		log.Printf("Could not read PDF page count: %v", err)
		pages = 0
	}
	return &pdfUpload{data: data, pages: pages}
}

// buildBook validates a complete input and returns the row to insert.
func (r *Repository) buildBook(ownerID uint, in BookInput) (*entities.Book, error) {
	ve := &apperr.ValidationError{}

	book := &entities.Book{
		Title:       validateText(ve, "title", in.Title, maxTitleLength),
		Author:      validateText(ve, "author", in.Author, maxAuthorLength),
		Description: validateText(ve, "description", in.Description, 0),
		PublishDate: validateDate(ve, in.PublishDate),
		OwnerID:     ownerID,
	}
	book.TitleFolded = entities.FoldTitle(book.Title)

	if in.CoverImage != nil {
		if cover := validateCover(ve, in.CoverImage, r.limits.MaxCoverBytes); cover != nil {
			book.CoverImage = cover.data
			book.CoverMIME = cover.mime
		}
	}
	if in.PDF != nil {
		if pdf := validatePDF(ve, in.PDF, r.limits.MaxPDFBytes); pdf != nil {
			book.PDF = pdf.data
			book.PDFPages = pdf.pages
		}
	}

	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	return book, nil
}

// buildUpdates validates the supplied fields of a patch and maps them to
// columns for a single UPDATE statement.
func (r *Repository) buildUpdates(p BookPatch) (map[string]any, error) {
	ve := &apperr.ValidationError{}
	updates := make(map[string]any)

	if p.Title != nil {
		title := validateText(ve, "title", *p.Title, maxTitleLength)
		updates["title"] = title
		updates["title_folded"] = entities.FoldTitle(title)
	}
	if p.Author != nil {
		updates["author"] = validateText(ve, "author", *p.Author, maxAuthorLength)
	}
	if p.Description != nil {
		updates["description"] = validateText(ve, "description", *p.Description, 0)
	}
	if p.PublishDate != nil {
		updates["publish_date"] = validateDate(ve, *p.PublishDate)
	}
	if p.CoverImage != nil {
		if cover := validateCover(ve, p.CoverImage, r.limits.MaxCoverBytes); cover != nil {
			updates["cover_image"] = cover.data
			updates["cover_mime"] = cover.mime
		}
	}
	if p.PDF != nil {
		if pdf := validatePDF(ve, p.PDF, r.limits.MaxPDFBytes); pdf != nil {
			updates["pdf"] = pdf.data
			updates["pdf_pages"] = pdf.pages
		}
	}

	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	return updates, nil
}
