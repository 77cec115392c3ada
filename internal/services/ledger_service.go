// internal/services/ledger_service.go
package services

import (
	"context"
	"fmt"
	"regexp"

	"github.com/gagliardetto/solana-go"

	"github.com/javajoker/uni402-backend/internal/utils"
)

// signaturePattern is the shape of a base58-encoded ed25519 transaction signature.
var signaturePattern = regexp.MustCompile(`^[A-Za-z0-9]{87,88}$`)

// PaymentClaim is what a client asserts about an off-band ledger transaction.
type PaymentClaim struct {
	LessonID    string
	TxSignature string
	Amount      float64
	FromAddress string
}

// LedgerVerifier decides whether a payment claim is acceptable proof of payment.
//
// Trust boundary: no implementation in this repository contacts the ledger.
// A claim that passes VerifyClaim is recorded as confirmed without any check
// that the transaction exists, moved the right asset, or paid the recipient.
type LedgerVerifier interface {
	VerifyClaim(ctx context.Context, claim PaymentClaim) error
}

// FormatVerifier checks only the encoding of the claim.
type FormatVerifier struct {
	// Strict additionally requires the signature and payer to decode as Solana values.
	Strict bool
}

func NewFormatVerifier(strict bool) *FormatVerifier {
	return &FormatVerifier{Strict: strict}
}

func (v *FormatVerifier) VerifyClaim(ctx context.Context, claim PaymentClaim) error {
	if !IsWellFormedSignature(claim.TxSignature) {
		return ErrInvalidSignature
	}

	if !utils.IsWalletAddress(claim.FromAddress) {
		return ErrInvalidPayer
	}

	if !v.Strict {
		return nil
	}

	if _, err := solana.SignatureFromBase58(claim.TxSignature); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if _, err := solana.PublicKeyFromBase58(claim.FromAddress); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayer, err)
	}

	return nil
}

func IsWellFormedSignature(signature string) bool {
	return signaturePattern.MatchString(signature)
}
