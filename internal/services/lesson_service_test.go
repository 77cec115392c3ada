package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/uni402-backend/internal/models"
	"github.com/javajoker/uni402-backend/internal/utils"
)

func TestCreateLesson(t *testing.T) {
	db := newTestDB(t)
	service := NewLessonService(db, newTestConfig(), nil)

	response, err := service.CreateLesson(context.Background(), &CreateLessonRequest{
		Title:       "  x402 Protocol ",
		Description: "Micro-payment protocol for content access",
		Price:       0.01,
		ContentData: "# x402 Protocol",
	})
	require.NoError(t, err)

	assert.True(t, response.Success)
	assert.Equal(t, "/lesson.html?id="+response.LessonID.String(), response.LessonURL)

	var stored models.Lesson
	require.NoError(t, db.First(&stored, "id = ?", response.LessonID).Error)
	assert.Equal(t, "x402 Protocol", stored.Title)
	assert.Equal(t, models.ContentTypeText, stored.ContentType)
	assert.InDelta(t, 0.01, stored.Price, 1e-9)
}

func TestCreateLessonPriceBounds(t *testing.T) {
	db := newTestDB(t)
	service := NewLessonService(db, newTestConfig(), nil)

	tests := []struct {
		name  string
		price float64
		err   error
	}{
		{"below minimum", 0.005, ErrPriceOutOfRange},
		{"minimum", 0.01, nil},
		{"maximum", 0.05, nil},
		{"above maximum", 0.06, ErrPriceOutOfRange},
		{"missing", 0, ErrPriceOutOfRange},
		{"not a number", math.NaN(), ErrPriceOutOfRange},
		{"infinite", math.Inf(1), ErrPriceOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateLesson(context.Background(), &CreateLessonRequest{
				Title:       "Priced lesson",
				Price:       utils.FlexibleFloat(tt.price),
				ContentData: "content",
			})
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCreateLessonMissingFields(t *testing.T) {
	db := newTestDB(t)
	service := NewLessonService(db, newTestConfig(), nil)

	_, err := service.CreateLesson(context.Background(), &CreateLessonRequest{Title: "   ", Price: 0.02, ContentData: "body"})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = service.CreateLesson(context.Background(), &CreateLessonRequest{Title: "Title", Price: 0.02})
	assert.ErrorIs(t, err, ErrMissingFields)

	var count int64
	db.Model(&models.Lesson{}).Count(&count)
	assert.Zero(t, count)
}

func TestGetLessonWithholdsContent(t *testing.T) {
	db := newTestDB(t)
	lesson := createTestLesson(t, db, 0.02)
	service := NewLessonService(db, newTestConfig(), nil)

	summary, err := service.GetLesson(context.Background(), lesson.ID.String())
	require.NoError(t, err)
	assert.Equal(t, lesson.Title, summary.Title)
	assert.False(t, summary.Unlocked)

	_, err = service.GetLesson(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrLessonNotFound)
}

func TestListLessonsMarksUnlocked(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	paid := createTestLesson(t, db, 0.02)
	unpaid := createTestLesson(t, db, 0.03)

	accessService := NewAccessService(db, cfg, nil, nil)
	service := NewLessonService(db, cfg, accessService)

	wallet := newWallet()
	require.NoError(t, db.Create(&models.Payment{
		LessonID:    paid.ID,
		TxSignature: newSignature(51),
		Amount:      0.02,
		FromAddress: wallet,
		Status:      models.PaymentStatusConfirmed,
	}).Error)

	params := LessonSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"},
		Wallet:           wallet,
	}

	lessons, total, err := service.ListLessons(context.Background(), params)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, lessons, 2)

	unlocked := map[string]bool{}
	for _, lesson := range lessons {
		unlocked[lesson.ID.String()] = lesson.Unlocked
	}
	assert.True(t, unlocked[paid.ID.String()])
	assert.False(t, unlocked[unpaid.ID.String()])

	// without a wallet nothing is unlocked
	params.Wallet = ""
	lessons, _, err = service.ListLessons(context.Background(), params)
	require.NoError(t, err)
	for _, lesson := range lessons {
		assert.False(t, lesson.Unlocked)
	}
}

func TestListLessonsSearch(t *testing.T) {
	db := newTestDB(t)
	createTestLesson(t, db, 0.02)
	require.NoError(t, db.Create(&models.Lesson{
		Title:       "Smart Contracts with Rust",
		Description: "Creating smart contracts on Solana",
		Price:       0.05,
		ContentData: "rust",
	}).Error)

	service := NewLessonService(db, newTestConfig(), nil)

	lessons, total, err := service.ListLessons(context.Background(), LessonSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 20, Order: "desc", Search: "RUST"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, lessons, 1)
	assert.Equal(t, "Smart Contracts with Rust", lessons[0].Title)
}
