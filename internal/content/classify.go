// Package content inspects uploaded bytes to decide what they really are,
// independent of the file name or the Content-Type the client claimed.
package content

import (
	"bytes"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

type FileKind string

const (
	KindJPEG    FileKind = "jpeg"
	KindPNG     FileKind = "png"
	KindGIF     FileKind = "gif"
	KindPDF     FileKind = "pdf"
	KindUnknown FileKind = "unknown"
)

var kindsByMIME = map[string]FileKind{
	"image/jpeg":      KindJPEG,
	"image/png":       KindPNG,
	"image/gif":       KindGIF,
	"application/pdf": KindPDF,
}

var mimeByKind = map[FileKind]string{
	KindJPEG: "image/jpeg",
	KindPNG:  "image/png",
	KindGIF:  "image/gif",
	KindPDF:  "application/pdf",
}

// Classify sniffs b and reports its kind.
func Classify(b []byte) FileKind {
	if len(b) == 0 {
		return KindUnknown
	}
	detected := mimetype.Detect(b)
	for m := detected; m != nil; m = m.Parent() {
		if kind, ok := kindsByMIME[m.String()]; ok {
			return kind
		}
	}
	return KindUnknown
}

// IsImage reports whether kind is an accepted cover format.
func (k FileKind) IsImage() bool {
	return k == KindJPEG || k == KindPNG || k == KindGIF
}

// MIME returns the canonical media type for kind.
func (k FileKind) MIME() string {
	if m, ok := mimeByKind[k]; ok {
		return m
	}
	return "application/octet-stream"
}

// PDFPageCount returns the number of pages in a PDF document.
func PDFPageCount(b []byte) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	return reader.NumPage(), nil
}
