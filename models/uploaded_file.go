package models

import "time"

// UploadedFile records a stored attachment. Rows with no NoteID past ExpireAt are swept.
type UploadedFile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserName    string    `gorm:"size:64;not null;index" json:"user"`
	FilePath    string    `gorm:"size:1024;not null" json:"-"`
	URL         string    `gorm:"size:1024;not null;uniqueIndex" json:"url"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	ContentType string    `gorm:"size:128;not null" json:"type"`
	Size        int64     `gorm:"not null" json:"size"`
	NoteID      *uint     `gorm:"index" json:"noteId,omitempty"`
	ExpireAt    time.Time `gorm:"index" json:"-"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// Attachment converts the upload into the shape notes embed.
func (f UploadedFile) Attachment() Attachment {
	return Attachment{Name: f.Name, Type: f.ContentType, Size: f.Size, URL: f.URL}
}
