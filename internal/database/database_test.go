package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/uni402-backend/internal/config"
	"github.com/javajoker/uni402-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Initialize(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db))

	t.Cleanup(func() { Close(db) })
	return db
}

func TestInitializeRejectsUnknownDriver(t *testing.T) {
	_, err := Initialize(config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestDuplicateSignatureIsUniqueViolation(t *testing.T) {
	db := newTestDB(t)

	lesson := &models.Lesson{Title: "Solana Basics", Price: 0.03, ContentData: "body"}
	require.NoError(t, db.Create(lesson).Error)

	payment := func() *models.Payment {
		return &models.Payment{
			LessonID:    lesson.ID,
			TxSignature: "duplicate-signature",
			Amount:      0.03,
			FromAddress: "wallet",
			Status:      models.PaymentStatusConfirmed,
		}
	}

	require.NoError(t, db.Create(payment()).Error)

	err := db.Create(payment()).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
}

func TestSeedLessonsOnlyFillsEmptyCatalog(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, SeedLessons(db))
	require.NoError(t, SeedLessons(db))

	var lessons []models.Lesson
	require.NoError(t, db.Order("price asc").Find(&lessons).Error)
	require.Len(t, lessons, len(demoLessons))

	assert.Equal(t, "x402 Protocol", lessons[0].Title)
	assert.InDelta(t, 0.01, lessons[0].Price, 1e-9)
	for _, lesson := range lessons {
		assert.Equal(t, models.ContentTypeText, lesson.ContentType)
		assert.NotEqual(t, uuid.Nil, lesson.ID)
	}
}

func TestWithTransactionRollsBack(t *testing.T) {
	db := newTestDB(t)

	err := WithTransaction(db, func(tx *gorm.DB) error {
		if err := tx.Create(&models.Lesson{Title: "Draft", Price: 0.02, ContentData: "body"}).Error; err != nil {
			return err
		}
		return errors.New("abort")
	})
	assert.Error(t, err)

	var count int64
	db.Model(&models.Lesson{}).Count(&count)
	assert.Zero(t, count)
}
