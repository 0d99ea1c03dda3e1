// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// # Password Hashing

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16

	argon2Algorithm = "argon2id"
)

var (
	// ErrInvalidHash is returned when a stored hash cannot be parsed.
	ErrInvalidHash = errors.New("sec: invalid password hash")
)

// HashConfig holds the argon2id cost parameters.
type HashConfig struct {
	MemoryKB    uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultHashConfig returns the production cost parameters.
func DefaultHashConfig() HashConfig {
	return HashConfig{
		MemoryKB:    64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// PasswordHasher hashes new passwords with argon2id and verifies both argon2id
// hashes and legacy bcrypt hashes imported from earlier deployments.
type PasswordHasher struct {
	config HashConfig
}

// NewPasswordHasher validates cfg and returns a [PasswordHasher].
func NewPasswordHasher(cfg HashConfig) (*PasswordHasher, error) {
	switch {
	case cfg.MemoryKB < minMemoryKB:
		return nil, fmt.Errorf("sec: argon2 memory must be >= %d KB", minMemoryKB)
	case cfg.Time < minTimeCost:
		return nil, errors.New("sec: argon2 time must be >= 1")
	case cfg.Parallelism < minParallelism:
		return nil, errors.New("sec: argon2 parallelism must be >= 1")
	case cfg.SaltLength < minSaltLength:
		return nil, fmt.Errorf("sec: salt length must be >= %d", minSaltLength)
	case cfg.KeyLength < minKeyLength:
		return nil, fmt.Errorf("sec: key length must be >= %d", minKeyLength)
	}
	return &PasswordHasher{config: cfg}, nil
}

// Hash returns the PHC-encoded argon2id hash of plainTextPassword.
func (h *PasswordHasher) Hash(plainTextPassword string) (string, error) {
	salt := make([]byte, h.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("sec: failed to read salt: %w", err)
	}

	key := argon2.IDKey([]byte(plainTextPassword), salt,
		h.config.Time, h.config.MemoryKB, h.config.Parallelism, h.config.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Algorithm,
		argon2.Version,
		h.config.MemoryKB,
		h.config.Time,
		h.config.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify compares plainTextPassword with encodedHash in constant time.
// A malformed hash returns [ErrInvalidHash].
func (h *PasswordHasher) Verify(plainTextPassword, encodedHash string) (bool, error) {
	if isBcrypt(encodedHash) {
		err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(plainTextPassword))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
		}
		return true, nil
	}

	parsed, err := parseArgon2(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(plainTextPassword), parsed.salt,
		parsed.time, parsed.memory, parsed.parallelism, uint32(len(parsed.key)))

	return subtle.ConstantTimeCompare(computed, parsed.key) == 1, nil
}

// NeedsUpgrade reports whether encodedHash was produced by bcrypt or with
// weaker argon2id parameters than the current configuration.
func (h *PasswordHasher) NeedsUpgrade(encodedHash string) bool {
	if isBcrypt(encodedHash) {
		return true
	}

	parsed, err := parseArgon2(encodedHash)
	if err != nil {
		return true
	}

	return parsed.memory < h.config.MemoryKB ||
		parsed.time < h.config.Time ||
		parsed.parallelism < h.config.Parallelism ||
		uint32(len(parsed.key)) != h.config.KeyLength
}

func isBcrypt(encodedHash string) bool {
	return strings.HasPrefix(encodedHash, "$2a$") ||
		strings.HasPrefix(encodedHash, "$2b$") ||
		strings.HasPrefix(encodedHash, "$2y$")
}

type argon2Hash struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

// parseArgon2 decodes "$argon2id$v=19$m=...,t=...,p=...$salt$key".
func parseArgon2(encodedHash string) (*argon2Hash, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != argon2Algorithm {
		return nil, ErrInvalidHash
	}

	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidHash, parts[2])
	}

	parsed := &argon2Hash{}
	var parallelism uint64
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &parsed.memory, &parsed.time, &parallelism); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	if parsed.memory < minMemoryKB || parsed.time < minTimeCost || parallelism < 1 || parallelism > 255 {
		return nil, fmt.Errorf("%w: parameters out of range", ErrInvalidHash)
	}
	parsed.parallelism = uint8(parallelism)

	var err error
	if parsed.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(parsed.salt) < int(minSaltLength) {
		return nil, fmt.Errorf("%w: bad salt", ErrInvalidHash)
	}
	if parsed.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(parsed.key) == 0 {
		return nil, fmt.Errorf("%w: bad key", ErrInvalidHash)
	}

	return parsed, nil
}
