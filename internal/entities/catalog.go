package entities

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Book struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"index;size:512;not null" json:"title"`
	TitleFolded string    `gorm:"column:title_folded;index;not null;default:''" json:"-"`
	Author      string    `gorm:"size:256;not null" json:"author"`
	Description string    `gorm:"type:text;not null" json:"description"`
	PublishDate Date      `gorm:"index;not null" json:"publish_date"`
	CoverImage  []byte    `json:"-"`
	CoverMIME   string    `gorm:"column:cover_mime;size:50" json:"cover_mime,omitempty"`
	PDF         []byte    `gorm:"column:pdf" json:"-"`
	PDFPages    int       `gorm:"column:pdf_pages" json:"pdf_pages,omitempty"`
	OwnerID     uint      `gorm:"index;not null" json:"owner_id"`
	Owner       User      `gorm:"foreignKey:OwnerID" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasCover reports whether a cover image is stored.
func (b *Book) HasCover() bool { return len(b.CoverImage) > 0 }

// HasPDF reports whether a PDF is stored.
func (b *Book) HasPDF() bool { return len(b.PDF) > 0 }

// Summary drops the blobs.
func (b *Book) Summary() BookSummary {
	return BookSummary{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		PublishDate: b.PublishDate,
		OwnerID:     b.OwnerID,
		HasCover:    b.HasCover(),
		HasPDF:      b.HasPDF(),
		PDFPages:    b.PDFPages,
		CreatedAt:   b.CreatedAt,
	}
}

// BookSummary is a book row without blob payloads, used by every listing.
type BookSummary struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	PublishDate Date      `json:"publish_date"`
	OwnerID     uint      `json:"owner_id"`
	HasCover    bool      `json:"has_cover"`
	HasPDF      bool      `json:"has_pdf"`
	PDFPages    int       `json:"pdf_pages,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Favorite struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	BookID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"book_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Book      Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}
