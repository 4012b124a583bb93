package password

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func fastConfig() Config {
	return Config{
		Argon2: Argon2Params{
			Memory:      8192,
			Time:        1,
			Parallelism: 1,
			KeyLength:   32,
		},
		PBKDF2: PBKDF2Params{
			Iterations: 10000,
			KeyLength:  32,
		},
		SaltLength:  16,
		MaxInFlight: 2,
	}
}

func TestHashAndVerifyArgon2id(t *testing.T) {
	hasher, err := NewHasher(fastConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	encoded, err := hasher.Hash(context.Background(), AlgArgon2id, "Str0ng!Pass1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", encoded)
	}

	ok, err := hasher.Verify(context.Background(), "Str0ng!Pass1", encoded)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected verification to succeed")
	}

	ok, err = hasher.Verify(context.Background(), "not-the-password", encoded)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password verification to fail")
	}
}

func TestHashAndVerifyPBKDF2(t *testing.T) {
	hasher, err := NewHasher(fastConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	encoded, err := hasher.Hash(context.Background(), AlgPBKDF2, "legacy-password-1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(encoded, "$pbkdf2-sha256$i=10000,k=32$") {
		t.Fatalf("unexpected PHC prefix: %s", encoded)
	}

	ok, err := hasher.Verify(context.Background(), "legacy-password-1", encoded)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected legacy verification to succeed")
	}
}

func TestHashSaltsDiffer(t *testing.T) {
	hasher, err := NewHasher(fastConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	first, err := hasher.Hash(context.Background(), AlgArgon2id, "same-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	second, err := hasher.Hash(context.Background(), AlgArgon2id, "same-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if first == second {
		t.Fatal("two digests of the same password must not collide")
	}
}

func TestHashUnknownAlgorithm(t *testing.T) {
	hasher, err := NewHasher(fastConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	_, err = hasher.Hash(context.Background(), Algorithm("bcrypt"), "whatever-password")
	if !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("expected ErrUnsupportedAlgorithm, got %v", err)
	}
}

func TestVerifyDispatchesOnEmbeddedAlgorithm(t *testing.T) {
	hasher, err := NewHasher(fastConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	// A digest hashed with the legacy algorithm must verify even though the
	// hasher's default for new credentials is argon2id.
	encoded, err := hasher.Hash(context.Background(), AlgPBKDF2, "old-credentials-1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := hasher.Verify(context.Background(), "old-credentials-1", encoded)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected legacy digest to stay verifiable")
	}
}

func TestVerifyCanceledContext(t *testing.T) {
	hasher, err := NewHasher(fastConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	encoded, err := hasher.Hash(context.Background(), AlgArgon2id, "cancel-me-please")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = hasher.Verify(ctx, "cancel-me-please", encoded)
	if !errors.Is(err, ErrHashingFailure) {
		t.Fatalf("expected ErrHashingFailure on canceled context, got %v", err)
	}
}
