// internal/database/seeds.go
package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/uni402-backend/internal/models"
)

var demoLessons = []models.Lesson{
	{
		Title:       "Introduction to Blockchain",
		Description: "Fundamentals of blockchain technology",
		Price:       0.02,
		ContentType: models.ContentTypeText,
		ContentData: "# Introduction to Blockchain\n\nBlockchain is a distributed ledger technology that allows data to be stored globally on thousands of servers.\n\n## Key Concepts:\n- Decentralization\n- Immutability\n- Transparency\n- Security\n\n## Real-world Applications:\n- Cryptocurrencies\n- Supply Chain Tracking\n- Smart Contracts\n- Digital Identity",
	},
	{
		Title:       "Solana Basics",
		Description: "Learn about Solana network architecture",
		Price:       0.03,
		ContentType: models.ContentTypeText,
		ContentData: "# Solana Basics\n\nSolana is a high-performance blockchain supporting smart contracts and decentralized applications.\n\n## Features:\n- High throughput (65,000 TPS)\n- Low transaction fees\n- Proof of History consensus\n- Rust programming language\n\n## Getting Started:\n1. Install Phantom Wallet\n2. Get SOL from an exchange\n3. Connect to Solana dApps",
	},
	{
		Title:       "Smart Contracts with Rust",
		Description: "Creating smart contracts on Solana",
		Price:       0.05,
		ContentType: models.ContentTypeText,
		ContentData: "# Smart Contracts with Rust\n\nLearn how to write secure smart contracts using Rust programming language.\n\n## Topics:\n- Rust basics for blockchain\n- Solana Program Library (SPL)\n- Testing smart contracts\n- Security best practices\n\n## Code Example:\n```rust\npub fn process_instruction(\n    program_id: &Pubkey,\n    accounts: &[AccountInfo],\n    instruction_data: &[u8]\n) -> ProgramResult {\n    // Your contract logic here\n    Ok(())\n}```",
	},
	{
		Title:       "x402 Protocol",
		Description: "Micro-payment protocol for content access",
		Price:       0.01,
		ContentType: models.ContentTypeText,
		ContentData: "# x402 Protocol\n\nThe x402 protocol enables instant micro-payments without registration or login.\n\n## How it works:\n1. Client requests content\n2. Server responds with 402 Payment Required\n3. User pays via Phantom wallet\n4. Content is unlocked instantly\n\n## Benefits:\n- No user accounts needed\n- Instant access\n- Low fees (micro-payments)\n- Works on any website",
	},
}

// SeedLessons inserts the demo catalog when the lessons table is empty.
func SeedLessons(db *gorm.DB) error {
	seeded := 0

	err := WithTransaction(db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Lesson{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count lessons: %w", err)
		}

		if count > 0 {
			logrus.WithField("lessons", count).Info("Catalog already populated, skipping seed")
			return nil
		}

		lessons := make([]models.Lesson, len(demoLessons))
		copy(lessons, demoLessons)

		if err := tx.Create(&lessons).Error; err != nil {
			return fmt.Errorf("failed to seed lessons: %w", err)
		}
		seeded = len(lessons)
		return nil
	})
	if err != nil {
		return err
	}

	if seeded > 0 {
		logrus.WithField("lessons", seeded).Info("Test lessons added to database")
	}
	return nil
}
