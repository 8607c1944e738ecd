package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrProfileMalformed is returned by [DecodeProfile] for values that are not a
// JSON object or null.
var ErrProfileMalformed = errors.New("profile value malformed")

// ErrProfileEncode is returned when a profile holds values JSON cannot represent.
var ErrProfileEncode = errors.New("profile encode failed")

var jsonNull = []byte("null")

// EncodeProfile serializes p for the profile key. A nil profile encodes as
// JSON null.
func EncodeProfile(p Profile) ([]byte, error) {
	if p == nil {
		return append([]byte(nil), jsonNull...), nil
	}
	data, err := json.Marshal(map[string]any(p))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileEncode, err)
	}
	return data, nil
}

// DecodeProfile parses a stored profile value. Empty input and JSON null
// decode to a nil profile without error.
func DecodeProfile(data []byte) (Profile, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) {
		return nil, nil
	}
	if trimmed[0] != '{' {
		return nil, ErrProfileMalformed
	}

	var out map[string]any
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileMalformed, err)
	}
	if out == nil {
		return nil, ErrProfileMalformed
	}
	return Profile(out), nil
}
