package domain

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/bytedance/sonic"
)

// Task represents a single entry on the board.
type Task struct {
	ID       ID       `json:"id"`
	Title    string   `json:"title"`
	Category Category `json:"category"`
}

// Collection is the ordered list of tasks, oldest first.
type Collection []Task

// Titles returns the task titles in collection order.
func (c Collection) Titles() []string {
	out := make([]string, len(c))
	for i, t := range c {
		out[i] = t.Title
	}
	return out
}

// ID is an opaque task identifier. Documents carry it either as a JSON
// number or as a JSON string and the original form is kept, so ids survive
// an import/export round trip unchanged.
type ID struct {
	raw     string
	numeric bool
}

var errBadID = errors.New("task id must be a number or a string")

// NumericID returns an id that encodes as a JSON number.
func NumericID(n int64) ID {
	return ID{raw: strconv.FormatInt(n, 10), numeric: true}
}

// StringID returns an id that encodes as a JSON string.
func StringID(s string) ID {
	return ID{raw: s}
}

// IsZero reports whether the id was never set.
func (id ID) IsZero() bool { return id.raw == "" && !id.numeric }

// Numeric reports whether the id encodes as a JSON number.
func (id ID) Numeric() bool { return id.numeric }

// String returns the id text without JSON quoting.
func (id ID) String() string { return id.raw }

// MarshalJSON writes the id in its original form, or null when unset.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	if id.numeric {
		return []byte(id.raw), nil
	}
	return sonic.Marshal(id.raw)
}

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errBadID
	}
	switch c := data[0]; {
	case c == '"':
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	case c == '-' || (c >= '0' && c <= '9'):
		if _, err := strconv.ParseFloat(string(data), 64); err != nil {
			return errBadID
		}
		*id = ID{raw: string(data), numeric: true}
		return nil
	default:
		return errBadID
	}
}
