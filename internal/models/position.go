package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PositionKind is the normalized form of an entry's positionType.
type PositionKind int

const (
	PositionNormal PositionKind = iota
	PositionLinked
	PositionLast
	PositionFixed
)

// Position is a positional lock. Slot is the 1-based target slot and is only
// meaningful for PositionFixed. Raw keeps the source string so the validator
// can report values that were coerced to normal.
type Position struct {
	Kind PositionKind
	Slot int
	Raw  string
}

// ParsePosition normalizes "normal", "linked", "last" and positive integer
// strings. Anything else becomes PositionNormal.
func ParsePosition(s string) Position {
	raw := s
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "normal":
		return Position{Kind: PositionNormal, Raw: raw}
	case "linked":
		return Position{Kind: PositionLinked, Raw: raw}
	case "last":
		return Position{Kind: PositionLast, Raw: raw}
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return Position{Kind: PositionFixed, Slot: n, Raw: raw}
	}
	return Position{Kind: PositionNormal, Raw: raw}
}

// Valid reports whether the raw value was a recognized position string.
func (p Position) Valid() bool {
	s := strings.TrimSpace(strings.ToLower(p.Raw))
	switch s {
	case "", "normal", "linked", "last":
		return true
	}
	n, err := strconv.Atoi(s)
	return err == nil && n > 0
}

// String returns the canonical string form.
func (p Position) String() string {
	switch p.Kind {
	case PositionLinked:
		return "linked"
	case PositionLast:
		return "last"
	case PositionFixed:
		return strconv.Itoa(p.Slot)
	default:
		return "normal"
	}
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts the string forms plus a bare positive integer.
func (p *Position) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Position{Kind: PositionNormal}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = ParsePosition(s)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*p = ParsePosition(strconv.Itoa(n))
		return nil
	}
	return fmt.Errorf("positionType: unsupported value %s", data)
}
