package password

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/sync/semaphore"
)

const (
	minMemoryKB     uint32 = 8 * 1024
	minTimeCost     uint32 = 1
	minParallelism  uint8  = 1
	minIterations   uint32 = 10000
	minSaltLength          = 16
	minKeyLength    uint32 = 16
	minMaxInFlight  int64  = 1
	defaultInFlight int64  = 4
)

// ErrHashingFailure wraps failures of the underlying primitives (salt
// generation, key derivation). Callers must treat it as internal and never
// surface the wrapped detail.
var ErrHashingFailure = errors.New("password hashing failed")

// Argon2Params are the fixed argon2id parameters applied to new credentials.
type Argon2Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	KeyLength   uint32
}

// PBKDF2Params are the fixed parameters used when a caller explicitly asks
// for the legacy algorithm.
type PBKDF2Params struct {
	Iterations uint32
	KeyLength  uint32
}

// Config carries the per-algorithm parameters and the concurrency bound.
// Instances are configured once and treated as immutable afterwards.
type Config struct {
	Argon2     Argon2Params
	PBKDF2     PBKDF2Params
	SaltLength int

	// MaxInFlight bounds concurrent key derivations. Hashing is CPU- and
	// memory-bound; without a bound a burst of logins can stall every
	// unrelated request on the host.
	MaxInFlight int64
}

// DefaultConfig returns the reference parameter policy: argon2id with
// time-cost 40, 128000 KiB memory and parallelism 4, pbkdf2-sha256 with
// 40000 iterations and a 32-byte key, both over 32-byte salts.
func DefaultConfig() Config {
	return Config{
		Argon2: Argon2Params{
			Memory:      128000,
			Time:        40,
			Parallelism: 4,
			KeyLength:   32,
		},
		PBKDF2: PBKDF2Params{
			Iterations: 40000,
			KeyLength:  32,
		},
		SaltLength:  32,
		MaxInFlight: defaultInFlight,
	}
}

// Hasher computes and verifies password digests. It is safe for concurrent
// use; derivations share one weighted semaphore sized by Config.MaxInFlight.
type Hasher struct {
	config Config
	sem    *semaphore.Weighted
}

// NewHasher validates cfg and returns a ready Hasher.
func NewHasher(cfg Config) (*Hasher, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return &Hasher{
		config: cfg,
		sem:    semaphore.NewWeighted(cfg.MaxInFlight),
	}, nil
}

// Hash derives a digest for password with the requested algorithm and a
// fresh random salt, and returns it serialized as a PHC string. The
// parameters are the fixed ones from Config; callers cannot weaken them per
// call.
func (h *Hasher) Hash(ctx context.Context, alg Algorithm, password string) (string, error) {
	if alg != AlgArgon2id && alg != AlgPBKDF2 {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}
	defer h.sem.Release(1)

	salt := make([]byte, h.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}

	record := &Record{Algorithm: alg, Salt: salt}
	switch alg {
	case AlgArgon2id:
		p := h.config.Argon2
		record.Version = argon2.Version
		record.Memory = p.Memory
		record.Time = p.Time
		record.Parallelism = p.Parallelism
		record.KeyLength = p.KeyLength
		record.Hash = argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, p.KeyLength)
	case AlgPBKDF2:
		p := h.config.PBKDF2
		record.Iterations = p.Iterations
		record.KeyLength = p.KeyLength
		record.Hash = pbkdf2.Key([]byte(password), salt, int(p.Iterations), int(p.KeyLength), sha256.New)
	}

	return Serialize(record)
}

// Verify recomputes the digest for password using the algorithm and
// parameters embedded in encoded and reports whether it matches. The
// comparison is constant-time in the digest content.
func (h *Hasher) Verify(ctx context.Context, password, encoded string) (bool, error) {
	record, err := Parse(encoded)
	if err != nil {
		return false, err
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}
	defer h.sem.Release(1)

	var computed []byte
	switch record.Algorithm {
	case AlgArgon2id:
		computed = argon2.IDKey([]byte(password), record.Salt, record.Time, record.Memory, record.Parallelism, record.KeyLength)
	case AlgPBKDF2:
		computed = pbkdf2.Key([]byte(password), record.Salt, int(record.Iterations), int(record.KeyLength), sha256.New)
	default:
		return false, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, record.Algorithm)
	}

	return subtle.ConstantTimeCompare(computed, record.Hash) == 1, nil
}

func validateConfig(cfg Config) error {
	if cfg.Argon2.Memory < minMemoryKB {
		return errors.New("password: argon2 memory must be >= 8192 KiB")
	}
	if cfg.Argon2.Time < minTimeCost {
		return errors.New("password: argon2 time must be >= 1")
	}
	if cfg.Argon2.Parallelism < minParallelism {
		return errors.New("password: argon2 parallelism must be >= 1")
	}
	if cfg.Argon2.KeyLength < minKeyLength {
		return errors.New("password: argon2 key length must be >= 16")
	}
	if cfg.PBKDF2.Iterations < minIterations {
		return errors.New("password: pbkdf2 iterations must be >= 10000")
	}
	if cfg.PBKDF2.KeyLength < minKeyLength {
		return errors.New("password: pbkdf2 key length must be >= 16")
	}
	if cfg.SaltLength < minSaltLength {
		return errors.New("password: salt length must be >= 16")
	}
	if cfg.MaxInFlight < minMaxInFlight {
		return errors.New("password: max in-flight derivations must be >= 1")
	}
	return nil
}
