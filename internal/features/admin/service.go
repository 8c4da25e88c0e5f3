// Package admin: service.go verifies the admin password and applies grants.
package admin

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"github.com/sunusimusa/scratch-app/internal/common"
	"github.com/sunusimusa/scratch-app/internal/features/game"
)

// Service guards admin grants.
type Service struct {
	passwordHash string
	attempts     *AttemptLog
	game         *game.Service
	now          common.Clock
}

// NewService creates the admin service. An empty hash disables it.
func NewService(passwordHash string, gameService *game.Service, clock common.Clock) *Service {
	if clock == nil {
		clock = common.SystemClock
	}
	return &Service{
		passwordHash: passwordHash,
		attempts:     NewAttemptLog(),
		game:         gameService,
		now:          clock,
	}
}

// Enabled reports whether a password hash is configured.
func (s *Service) Enabled() bool {
	return s.passwordHash != ""
}

// VerifyPassword checks password for client.
// Brute-force protection: MaxFailedAttempts failures lock the client out for AttemptWindow.
func (s *Service) VerifyPassword(client, password string) error {
	if !s.Enabled() {
		return common.ErrUnauthorized
	}

	now := s.now()
	if s.attempts.RecentFailures(client, now) >= MaxFailedAttempts {
		return common.ErrTooManyAttempts
	}

	match := verifyArgon2id(password, s.passwordHash)
	s.attempts.Log(client, match, now)

	if !match {
		log.WithField("client", client).Warn("Wrong admin password")
		return common.ErrUnauthorized
	}
	return nil
}

// Grant authenticates the caller and credits the request's grant.
func (s *Service) Grant(ctx context.Context, client, password string, req GrantRequest) (*game.ActionResult, error) {
	if err := s.VerifyPassword(client, password); err != nil {
		return nil, err
	}
	return s.game.Credit(ctx, req.SessionID, req.Grant)
}

// verifyArgon2id checks password against an Argon2id hash.
// Hash format: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func verifyArgon2id(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		log.Error("Malformed Argon2id hash")
		return false
	}

	var memory uint32
	var iterations uint32
	var parallelism uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		log.WithError(err).Error("Failed to parse Argon2id parameters")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Failed to decode salt")
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Failed to decode hash")
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Constant-time comparison.
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}

// HashPassword encodes password as an Argon2id hash accepted by verifyArgon2id.
func HashPassword(password string, salt []byte) string {
	const (
		memory      uint32 = 64 * 1024
		iterations  uint32 = 3
		parallelism uint8  = 2
		keyLength   uint32 = 32
	)
	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, keyLength)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
}
