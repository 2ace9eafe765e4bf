package models

import "time"

// FeedbackEntry represents a single rated, commented record owned by one account.
type FeedbackEntry struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	AccountID  string    `json:"-" gorm:"index;type:varchar(36)"`
	CourseName string    `json:"courseName" validate:"required"`
	Rating     int       `json:"rating" validate:"gte=1,lte=5"`
	Comments   string    `json:"comments" validate:"required"`
	CreatedAt  time.Time `json:"-"`
}

// FeedbackResponse is the wire representation of a feedback entry.
type FeedbackResponse struct {
	ID         string `json:"id"`
	CourseName string `json:"courseName"`
	Rating     int    `json:"rating"`
	Comments   string `json:"comments"`
	Date       string `json:"date"`
}

// ToResponse converts an entry to its wire form. The date is always
// rendered in UTC as "YYYY-MM-DD HH:MM:SS".
func (f *FeedbackEntry) ToResponse() FeedbackResponse {
	return FeedbackResponse{
		ID:         f.ID,
		CourseName: f.CourseName,
		Rating:     f.Rating,
		Comments:   f.Comments,
		Date:       f.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}
