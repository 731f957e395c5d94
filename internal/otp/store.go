// Package otp issues and verifies one-time passcodes for withdrawal
// authorization, backed by Redis with a hard TTL.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/revenue-collection-core/internal/config"
	"github.com/revenue-collection-core/internal/domain/shared"
)

const keyPrefix = "withdrawal:otp:"

// Challenge binds a code to the withdrawal it authorizes. Verification
// replays nothing: the whole challenge is consumed on first success.
type Challenge struct {
	WalletID    uuid.UUID `json:"wallet_id"`
	Amount      int64     `json:"amount"`
	Destination string    `json:"destination"`
	Actor       string    `json:"actor"`
}

type storedChallenge struct {
	Code      string    `json:"code"`
	Challenge Challenge `json:"challenge"`
}

// Store issues and consumes OTP challenges
type Store struct {
	client *redis.Client
	ttl    time.Duration
	length int
	logger *slog.Logger
}

// NewStore creates the Redis-backed OTP store
func NewStore(logger *slog.Logger, client *redis.Client, cfg *config.OTPConfig) *Store {
	return &Store{
		client: client,
		ttl:    cfg.TTL,
		length: cfg.Length,
		logger: logger,
	}
}

// Issue generates a fresh numeric code for the withdrawal reference and
// stores it with the configured TTL. Reissuing replaces any earlier code.
func (s *Store) Issue(ctx context.Context, reference string, ch Challenge) (string, error) {
	code, err := generateCode(s.length)
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP code: %w", err)
	}

	raw, err := json.Marshal(storedChallenge{Code: code, Challenge: ch})
	if err != nil {
		return "", fmt.Errorf("failed to encode OTP challenge: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+reference, raw, s.ttl).Err(); err != nil {
		s.logger.Error("Failed to store OTP challenge", "reference", reference, "error", err)
		return "", fmt.Errorf("failed to store OTP challenge: %w", err)
	}

	s.logger.Info("OTP issued", "reference", reference, "ttl", s.ttl.String())
	return code, nil
}

// VerifyAndConsume checks the code for the reference and deletes the
// challenge on success. An expired, missing or mismatched code fails with a
// validation error and leaves nothing behind to brute-force beyond the TTL.
func (s *Store) VerifyAndConsume(ctx context.Context, reference, code string) (*Challenge, error) {
	key := keyPrefix + reference

	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.Ef(shared.KindValidation, "no pending authorization for withdrawal %s", reference)
		}
		s.logger.Error("Failed to load OTP challenge", "reference", reference, "error", err)
		return nil, fmt.Errorf("failed to load OTP challenge: %w", err)
	}

	var stored storedChallenge
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode OTP challenge: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored.Code), []byte(code)) != 1 {
		return nil, shared.Ef(shared.KindValidation, "invalid authorization code for withdrawal %s", reference)
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Error("Failed to consume OTP challenge", "reference", reference, "error", err)
		return nil, fmt.Errorf("failed to consume OTP challenge: %w", err)
	}

	return &stored.Challenge, nil
}

func generateCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0') + byte(n.Int64())
	}
	return string(digits), nil
}
