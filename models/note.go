package models

import "gorm.io/datatypes"

// Attachment describes one file referenced by a note.
type Attachment struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// Note is a daily journal entry. Timestamp is unix milliseconds.
type Note struct {
	ID          uint                            `gorm:"primaryKey" json:"id"`
	UserName    string                          `gorm:"column:user_name;size:64;not null;index:idx_notes_user_date,priority:1" json:"user"`
	Timestamp   int64                           `gorm:"column:timestamp;not null;index:idx_notes_timestamp,sort:desc" json:"timestamp"`
	DateKey     string                          `gorm:"size:10;not null;index:idx_notes_date_key;index:idx_notes_user_date,priority:2" json:"dateKey"`
	Text        string                          `gorm:"column:text;type:text;not null" json:"text"`
	Attachments datatypes.JSONSlice[Attachment] `gorm:"not null" json:"attachments"`
	SyncKey     *string                         `gorm:"size:128" json:"-"`
}
