package password

import (
	"errors"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	record := &Record{
		Algorithm:   AlgArgon2id,
		Version:     19,
		Memory:      8192,
		Time:        2,
		Parallelism: 1,
		KeyLength:   32,
		Salt:        make([]byte, 16),
		Hash:        make([]byte, 32),
	}

	encoded, err := Serialize(record)
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}

	parsed, err := Parse(encoded)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if parsed.Memory != record.Memory || parsed.Time != record.Time || parsed.Parallelism != record.Parallelism {
		t.Fatalf("parameters did not survive the round trip: %+v", parsed)
	}
}

func TestParseRejectsUnknownAlgorithm(t *testing.T) {
	_, err := Parse("$scrypt$n=16384,r=8,p=1$c2FsdA$aGFzaA")
	if !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("expected ErrUnsupportedAlgorithm, got %v", err)
	}
}

func TestParseMalformed(t *testing.T) {
	cases := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"no leading separator", "argon2id$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA"},
		{"missing sections", "$argon2id$v=19$m=8192,t=1,p=1"},
		{"missing version", "$argon2id$m=8192,t=1,p=1$c2FsdA$aGFzaA"},
		{"zero memory", "$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA"},
		{"missing parameter", "$argon2id$v=19$m=8192,t=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA"},
		{"bad salt encoding", "$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA"},
		{"pbkdf2 missing keylen", "$pbkdf2-sha256$i=40000$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.encoded); !errors.Is(err, ErrMalformedDigest) {
				t.Fatalf("expected ErrMalformedDigest, got %v", err)
			}
		})
	}
}
