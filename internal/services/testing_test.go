package services

import (
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/uni402-backend/internal/config"
	"github.com/javajoker/uni402-backend/internal/database"
	"github.com/javajoker/uni402-backend/internal/models"
)

func newTestConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{BaseURL: "http://localhost:3000"},
		JWT: config.JWTConfig{
			SecretKey:      "test-secret",
			AccessPassTTL:  1,
			AccessPassName: "uni402-test",
		},
		Redis: config.RedisConfig{TTL: 60},
		AWS:   config.AWSConfig{PresignTTL: 15},
		Payment: config.PaymentConfig{
			RecipientAddress:  "Hx402UniPayCreatorAddress123456789",
			AssetSymbol:       "USDC",
			AssetMint:         "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			AssetDecimals:     6,
			Network:           "solana",
			AmountTolerance:   0.001,
			MinLessonPrice:    0.01,
			MaxLessonPrice:    0.05,
			MaxTimeoutSeconds: 300,
		},
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Initialize(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		LogLevel:   "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))

	t.Cleanup(func() { database.Close(db) })
	return db
}

func createTestLesson(t *testing.T, db *gorm.DB, price float64) *models.Lesson {
	t.Helper()

	lesson := &models.Lesson{
		Title:       "Solana Basics",
		Description: "Learn about Solana network architecture",
		Price:       price,
		ContentType: models.ContentTypeText,
		ContentData: "# Solana Basics\n\nProof of History.",
	}
	require.NoError(t, db.Create(lesson).Error)
	return lesson
}

// newSignature returns a base58 transaction signature unique to seed.
func newSignature(seed byte) string {
	var sig solana.Signature
	for i := range sig {
		sig[i] = seed + byte(i)
	}
	return sig.String()
}

func newWallet() string {
	return solana.NewWallet().PublicKey().String()
}
