// internal/utils/jwt.go
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// AccessPassClaims carries the (lesson, wallet, signature) triple of an accepted payment claim.
type AccessPassClaims struct {
	LessonID    string `json:"lesson_id"`
	Wallet      string `json:"wallet"`
	TxSignature string `json:"tx_signature"`
	jwt.RegisteredClaims
}

var (
	jwtSecret = []byte("your-secret-key-change-in-production")
	jwtIssuer = "uni402"
)

func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

func SetJWTIssuer(issuer string) {
	if issuer != "" {
		jwtIssuer = issuer
	}
}

func GenerateAccessPass(lessonID, wallet, txSignature string, ttlHours int) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(ttlHours) * time.Hour)

	claims := AccessPassClaims{
		LessonID:    lessonID,
		Wallet:      wallet,
		TxSignature: txSignature,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    jwtIssuer,
			Subject:   wallet,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func ValidateAccessPass(tokenString string) (*AccessPassClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessPassClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*AccessPassClaims); ok && token.Valid {
		if claims.LessonID == "" || claims.Wallet == "" || claims.TxSignature == "" {
			return nil, errors.New("incomplete access pass")
		}
		return claims, nil
	}

	return nil, errors.New("invalid access pass")
}

// FileClaims authorizes a download of one locally stored lesson file.
type FileClaims struct {
	Key string `json:"key"`
	jwt.RegisteredClaims
}

func GenerateFileToken(key string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := FileClaims{
		Key: key,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    jwtIssuer,
			Subject:   "file",
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateFileToken checks that tokenString is unexpired and was issued for key.
func ValidateFileToken(tokenString, key string) error {
	token, err := jwt.ParseWithClaims(tokenString, &FileClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil {
		return err
	}

	claims, ok := token.Claims.(*FileClaims)
	if !ok || !token.Valid || claims.Subject != "file" {
		return errors.New("invalid file token")
	}
	if claims.Key != key {
		return errors.New("file token issued for another file")
	}
	return nil
}
