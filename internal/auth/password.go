// Package auth hashes staff credentials and guards the credential check with
// the per-account lockout policy.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	defaultMemoryKiB   uint32 = 64 * 1024
	defaultIterations  uint32 = 3
	defaultParallelism uint8  = 2
	defaultSaltLen            = 16
	defaultKeyLen      uint32 = 32

	minMemoryKiB uint32 = 8 * 1024
)

var ErrInvalidParams = errors.New("auth: invalid argon2 parameters")

type Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLen     int
	KeyLen      uint32
}

func DefaultParams() Params {
	return Params{
		Memory:      defaultMemoryKiB,
		Iterations:  defaultIterations,
		Parallelism: defaultParallelism,
		SaltLen:     defaultSaltLen,
		KeyLen:      defaultKeyLen,
	}
}

func (p Params) Validate() error {
	switch {
	case p.Memory < minMemoryKiB:
		return fmt.Errorf("%w: memory must be >= %d KiB", ErrInvalidParams, minMemoryKiB)
	case p.Iterations == 0:
		return fmt.Errorf("%w: iterations must be > 0", ErrInvalidParams)
	case p.Parallelism == 0:
		return fmt.Errorf("%w: parallelism must be > 0", ErrInvalidParams)
	case p.SaltLen < 8:
		return fmt.Errorf("%w: salt length must be >= 8", ErrInvalidParams)
	case p.KeyLen == 0:
		return fmt.Errorf("%w: key length must be > 0", ErrInvalidParams)
	default:
		return nil
	}
}

// Hasher derives argon2id digests with an explicit random salt; hash and salt
// are stored hex-encoded in separate columns.
type Hasher struct {
	params Params
}

func NewHasher(params Params) (*Hasher, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Hasher{params: params}, nil
}

func (h *Hasher) Generate(password string) (hashHex, saltHex string, err error) {
	if password == "" {
		return "", "", fmt.Errorf("%w: password must not be empty", ErrInvalidParams)
	}

	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLen)
	return hex.EncodeToString(key), hex.EncodeToString(salt), nil
}

func (h *Hasher) Verify(password, saltHex, hashHex string) (bool, error) {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}
	expected, err := hex.DecodeString(hashHex)
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}
