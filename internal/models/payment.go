// internal/models/payment.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment records a client-submitted claim that a ledger transaction paid for a lesson.
// Rows are never updated; a confirmed row is the access grant.
type Payment struct {
	BaseModel
	LessonID    uuid.UUID     `json:"lesson_id" gorm:"type:uuid;not null;index"`
	TxSignature string        `json:"tx_signature" gorm:"size:128;not null;uniqueIndex"`
	Amount      float64       `json:"amount" gorm:"type:decimal(10,6);not null"`
	FromAddress string        `json:"from_address" gorm:"size:64;index"`
	Status      PaymentStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaidAt      time.Time     `json:"timestamp"`

	// Relationships
	Lesson *Lesson `json:"lesson,omitempty" gorm:"foreignKey:LessonID"`
}
