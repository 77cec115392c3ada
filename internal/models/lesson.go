// internal/models/lesson.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Lesson struct {
	BaseModel
	Title       string      `json:"title" gorm:"size:255;not null"`
	Description string      `json:"description" gorm:"type:text"`
	Price       float64     `json:"price" gorm:"type:decimal(10,6);not null"`
	ContentType ContentType `json:"content_type" gorm:"type:varchar(20);not null;default:'text'"`
	ContentData string      `json:"content_data" gorm:"type:text;not null"`

	// Relationships
	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:LessonID"`
}

// LessonSummary is the public view of a lesson. It never carries the content payload.
type LessonSummary struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	ContentType ContentType `json:"content_type"`
	CreatedAt   time.Time   `json:"created_at"`
	Unlocked    bool        `json:"unlocked"`
}

func (l *Lesson) Summary() LessonSummary {
	return LessonSummary{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		ContentType: l.ContentType,
		CreatedAt:   l.CreatedAt,
	}
}

// LessonContent is returned once access has been granted.
type LessonContent struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	ContentType ContentType `json:"content_type"`
	ContentData string      `json:"content_data"`
	ContentURL  string      `json:"content_url,omitempty"`
	Unlocked    bool        `json:"unlocked"`
}
