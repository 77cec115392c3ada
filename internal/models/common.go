// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns the primary key on the client so sqlite and postgres behave the same.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return nil
	}
}

// Enums
type ContentType string

const (
	ContentTypeText        ContentType = "text"
	ContentTypeVideo       ContentType = "video"
	ContentTypePDF         ContentType = "pdf"
	ContentTypeExternalURL ContentType = "external_url"
)

func (t ContentType) IsValid() bool {
	switch t {
	case ContentTypeText, ContentTypeVideo, ContentTypePDF, ContentTypeExternalURL:
		return true
	}
	return false
}

// HasObjectPayload reports whether content_data names a stored file rather than inline content.
func (t ContentType) HasObjectPayload() bool {
	return t == ContentTypeVideo || t == ContentTypePDF
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
)
