package password

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Algorithm identifies a supported hashing algorithm inside a PHC string.
type Algorithm string

const (
	// AlgArgon2id is the memory-hard default for all new credentials.
	AlgArgon2id Algorithm = "argon2id"
	// AlgPBKDF2 verifies legacy digests; it is never selected for new
	// credentials unless a caller asks for it explicitly.
	AlgPBKDF2 Algorithm = "pbkdf2-sha256"
)

var (
	// ErrMalformedDigest is returned when a stored digest string cannot be parsed.
	ErrMalformedDigest = errors.New("malformed password digest")
	// ErrUnsupportedAlgorithm is returned for algorithm ids this build does not know.
	ErrUnsupportedAlgorithm = errors.New("unsupported hashing algorithm")
)

// Record is the decoded form of a self-describing digest string. Every
// parameter needed to recompute the digest travels inside the string, so
// verification never consults live configuration and old digests stay
// verifiable after default-parameter changes.
type Record struct {
	Algorithm Algorithm

	// argon2id parameters.
	Version     int
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8

	// pbkdf2-sha256 parameters.
	Iterations uint32

	KeyLength uint32
	Salt      []byte
	Hash      []byte
}

// Serialize encodes a record as one PHC-style string:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//	$pbkdf2-sha256$i=<iterations>,k=<keylen>$<salt>$<hash>
func Serialize(r *Record) (string, error) {
	if len(r.Salt) == 0 || len(r.Hash) == 0 {
		return "", fmt.Errorf("%w: empty salt or hash", ErrMalformedDigest)
	}

	saltEncoded := base64.RawStdEncoding.EncodeToString(r.Salt)
	hashEncoded := base64.RawStdEncoding.EncodeToString(r.Hash)

	switch r.Algorithm {
	case AlgArgon2id:
		return fmt.Sprintf(
			"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
			AlgArgon2id,
			r.Version,
			r.Memory,
			r.Time,
			r.Parallelism,
			saltEncoded,
			hashEncoded,
		), nil
	case AlgPBKDF2:
		return fmt.Sprintf(
			"$%s$i=%d,k=%d$%s$%s",
			AlgPBKDF2,
			r.Iterations,
			r.KeyLength,
			saltEncoded,
			hashEncoded,
		), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, r.Algorithm)
	}
}

// Parse decodes a PHC-style string produced by Serialize. The algorithm id
// embedded in the string decides the dispatch; callers must never pick the
// algorithm themselves.
func Parse(encoded string) (*Record, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) < 2 || parts[0] != "" {
		return nil, fmt.Errorf("%w: wrong section count", ErrMalformedDigest)
	}

	switch Algorithm(parts[1]) {
	case AlgArgon2id:
		return parseArgon2id(parts)
	case AlgPBKDF2:
		return parsePBKDF2(parts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, parts[1])
	}
}

func parseArgon2id(parts []string) (*Record, error) {
	if len(parts) != 6 {
		return nil, fmt.Errorf("%w: wrong section count", ErrMalformedDigest)
	}

	if !strings.HasPrefix(parts[2], "v=") {
		return nil, fmt.Errorf("%w: missing argon2 version", ErrMalformedDigest)
	}
	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid argon2 version", ErrMalformedDigest)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("%w: argon2 version %d", ErrUnsupportedAlgorithm, version)
	}

	record := &Record{Algorithm: AlgArgon2id, Version: version}

	var memorySet, timeSet, parallelismSet bool
	for _, pair := range strings.Split(parts[3], ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("%w: invalid parameter entry", ErrMalformedDigest)
		}
		switch kv[0] {
		case "m":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || v == 0 {
				return nil, fmt.Errorf("%w: invalid memory parameter", ErrMalformedDigest)
			}
			record.Memory = uint32(v)
			memorySet = true
		case "t":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || v == 0 {
				return nil, fmt.Errorf("%w: invalid time parameter", ErrMalformedDigest)
			}
			record.Time = uint32(v)
			timeSet = true
		case "p":
			v, err := strconv.ParseUint(kv[1], 10, 8)
			if err != nil || v == 0 {
				return nil, fmt.Errorf("%w: invalid parallelism parameter", ErrMalformedDigest)
			}
			record.Parallelism = uint8(v)
			parallelismSet = true
		default:
			return nil, fmt.Errorf("%w: unknown parameter %q", ErrMalformedDigest, kv[0])
		}
	}
	if !memorySet || !timeSet || !parallelismSet {
		return nil, fmt.Errorf("%w: missing argon2 parameters", ErrMalformedDigest)
	}

	if err := decodeSaltAndHash(record, parts[4], parts[5]); err != nil {
		return nil, err
	}
	record.KeyLength = uint32(len(record.Hash))
	return record, nil
}

func parsePBKDF2(parts []string) (*Record, error) {
	if len(parts) != 5 {
		return nil, fmt.Errorf("%w: wrong section count", ErrMalformedDigest)
	}

	record := &Record{Algorithm: AlgPBKDF2}

	var iterationsSet, keyLengthSet bool
	for _, pair := range strings.Split(parts[2], ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("%w: invalid parameter entry", ErrMalformedDigest)
		}
		switch kv[0] {
		case "i":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || v == 0 {
				return nil, fmt.Errorf("%w: invalid iteration parameter", ErrMalformedDigest)
			}
			record.Iterations = uint32(v)
			iterationsSet = true
		case "k":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || v == 0 {
				return nil, fmt.Errorf("%w: invalid key length parameter", ErrMalformedDigest)
			}
			record.KeyLength = uint32(v)
			keyLengthSet = true
		default:
			return nil, fmt.Errorf("%w: unknown parameter %q", ErrMalformedDigest, kv[0])
		}
	}
	if !iterationsSet || !keyLengthSet {
		return nil, fmt.Errorf("%w: missing pbkdf2 parameters", ErrMalformedDigest)
	}

	if err := decodeSaltAndHash(record, parts[3], parts[4]); err != nil {
		return nil, err
	}
	if uint32(len(record.Hash)) != record.KeyLength {
		return nil, fmt.Errorf("%w: key length mismatch", ErrMalformedDigest)
	}
	return record, nil
}

func decodeSaltAndHash(record *Record, saltPart, hashPart string) error {
	salt, err := base64.RawStdEncoding.DecodeString(saltPart)
	if err != nil {
		return fmt.Errorf("%w: invalid salt encoding", ErrMalformedDigest)
	}
	if len(salt) < minSaltLength {
		return fmt.Errorf("%w: salt too short", ErrMalformedDigest)
	}

	hash, err := base64.RawStdEncoding.DecodeString(hashPart)
	if err != nil {
		return fmt.Errorf("%w: invalid hash encoding", ErrMalformedDigest)
	}
	if len(hash) == 0 {
		return fmt.Errorf("%w: empty hash", ErrMalformedDigest)
	}

	record.Salt = salt
	record.Hash = hash
	return nil
}
