package proto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidID is returned by ID.Int64 for values that are not base-10 integers.
var ErrInvalidID = errors.New("invalid user id")

// ID keeps the textual form of a user id field exactly as the client sent it.
// Numbers keep their literal text, strings their contents; any other JSON
// value keeps its raw text and fails to coerce later.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	*id = ID(data)
	return nil
}

// MarshalJSON writes integer ids as numbers and anything else as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := id.Int64(); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

// Int64 coerces the id to an integer.
func (id ID) Int64() (int64, error) {
	s := strings.TrimSpace(string(id))
	if s == "" {
		return 0, ErrInvalidID
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidID
	}
	return n, nil
}

// IDFrom builds an ID from an integer.
func IDFrom(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}
