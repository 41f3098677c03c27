package models

import "time"

// Answer binds an answerer to one prompt from the other user's set for one day,
// with the prompt text copied in and the answerer's response.
type Answer struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	AnswererName  string    `gorm:"size:64;not null;uniqueIndex:idx_answers_answerer_date,priority:1;uniqueIndex:idx_answers_unique,priority:1" json:"answerer"`
	PromptOwner   string    `gorm:"size:64;not null" json:"owner"`
	PromptIndex   int       `gorm:"not null;uniqueIndex:idx_answers_unique,priority:3" json:"index"`
	SourceDateKey string    `gorm:"size:10;not null;uniqueIndex:idx_answers_unique,priority:2" json:"sourceDateKey"`
	DateKey       string    `gorm:"size:10;not null;uniqueIndex:idx_answers_answerer_date,priority:2" json:"dateKey"`
	PromptText    string    `gorm:"type:text;not null;default:''" json:"promptText"`
	AnswerText    string    `gorm:"type:text;not null;default:''" json:"answerText"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
