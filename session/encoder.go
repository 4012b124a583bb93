package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const sessionFormatVersionV1 = 1

// Encode serializes a session into the versioned binary blob stored in
// Redis. The session id is deliberately not encoded; it lives in the key.
func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(sessionFormatVersionV1)

	if err := writeString(&buf, s.PrincipalID); err != nil {
		return nil, err
	}
	if err := writeString(&buf, s.Email); err != nil {
		return nil, err
	}
	if err := writeString(&buf, s.CSRFToken); err != nil {
		return nil, err
	}

	if len(s.Data) > 255 {
		return nil, errors.New("too many session data entries")
	}
	buf.WriteByte(byte(len(s.Data)))
	for k, v := range s.Data {
		if err := writeString(&buf, k); err != nil {
			return nil, err
		}
		if err := writeString(&buf, v); err != nil {
			return nil, err
		}
	}

	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a blob produced by Encode.
func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, ErrSessionCorrupt
	}
	if version != sessionFormatVersionV1 {
		return nil, ErrSessionCorrupt
	}

	s := &Session{}

	if s.PrincipalID, err = readString(reader); err != nil {
		return nil, ErrSessionCorrupt
	}
	if s.Email, err = readString(reader); err != nil {
		return nil, ErrSessionCorrupt
	}
	if s.CSRFToken, err = readString(reader); err != nil {
		return nil, ErrSessionCorrupt
	}

	count, err := reader.ReadByte()
	if err != nil {
		return nil, ErrSessionCorrupt
	}
	s.Data = make(map[string]string, count)
	if count > 0 {
		for i := 0; i < int(count); i++ {
			k, err := readString(reader)
			if err != nil {
				return nil, ErrSessionCorrupt
			}
			v, err := readString(reader)
			if err != nil {
				return nil, ErrSessionCorrupt
			}
			s.Data[k] = v
		}
	}

	if err := binary.Read(reader, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, ErrSessionCorrupt
	}
	if err := binary.Read(reader, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, ErrSessionCorrupt
	}
	if reader.Len() != 0 {
		return nil, ErrSessionCorrupt
	}

	return s, nil
}

func writeString(buf *bytes.Buffer, value string) error {
	if len(value) > 65535 {
		return errors.New("session string too long")
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(value))); err != nil {
		return err
	}
	buf.WriteString(value)
	return nil
}

func readString(reader *bytes.Reader) (string, error) {
	var length uint16
	if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
		return "", err
	}

	raw := make([]byte, length)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", err
	}
	return string(raw), nil
}
