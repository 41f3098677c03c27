package models

import "time"

// Prompt is one of the fixed-size set of prompts an owner writes for the other user on a day.
type Prompt struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	UserName    string    `gorm:"column:user_name;size:64;not null;uniqueIndex:idx_prompts_user_date_index,priority:1" json:"-"`
	PromptIndex int       `gorm:"not null;uniqueIndex:idx_prompts_user_date_index,priority:3" json:"index"`
	Text        string    `gorm:"column:text;type:text;not null;default:''" json:"text"`
	DateKey     string    `gorm:"size:10;not null;index:idx_prompts_date_key;uniqueIndex:idx_prompts_user_date_index,priority:2" json:"dateKey"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}
